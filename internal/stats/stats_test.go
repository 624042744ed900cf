package stats

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsMissing(t *testing.T) {
	if !IsMissing(math.NaN()) {
		t.Error("NaN should be missing")
	}
	for _, x := range []float64{0, -1, math.Inf(1), math.Inf(-1), 5e-324} {
		if IsMissing(x) {
			t.Errorf("%v should not be missing", x)
		}
	}
}

func TestFilterMissing(t *testing.T) {
	got := FilterMissing([]float64{1, math.NaN(), math.Inf(1), math.NaN(), 3})
	want := []float64{1, math.Inf(1), 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FilterMissing mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_Empty(t *testing.T) {
	for name, in := range map[string][]float64{
		"nil":     nil,
		"all-nan": {math.NaN(), math.NaN()},
	} {
		t.Run(name, func(t *testing.T) {
			s := Compute(in)
			if !s.Empty() {
				t.Fatalf("want empty, got %+v", s)
			}
			if diff := cmp.Diff(map[string]any{"n": 0}, s.Fields()); diff != "" {
				t.Errorf("Fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompute_Odd(t *testing.T) {
	got := Compute([]float64{3, 1, 2})
	want := Summary{N: 3, Min: 1, Max: 3, Mean: 2, Std: math.Sqrt(2.0 / 3.0), Median: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compute mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_EvenMedian(t *testing.T) {
	got := Compute([]float64{4, 1, 3, 2})
	if got.Median != 2.5 {
		t.Errorf("Median = %v, want 2.5", got.Median)
	}
	// Population variance of 1..4 is 1.25.
	if got.Std != math.Sqrt(1.25) {
		t.Errorf("Std = %v, want %v", got.Std, math.Sqrt(1.25))
	}
}

func TestCompute_NaNExcluded(t *testing.T) {
	withNaN := Compute([]float64{1, math.NaN(), 3})
	without := Compute([]float64{1, 3})
	if diff := cmp.Diff(without, withNaN); diff != "" {
		t.Errorf("NaN affected statistics (-want +got):\n%s", diff)
	}
}

func TestCompute_DoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Compute(in)
	if diff := cmp.Diff([]float64{3, 1, 2}, in); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestCompute_MedianKeepsSignedZeroOrder(t *testing.T) {
	cases := []struct {
		name    string
		in      []float64
		negZero bool
	}{
		{"positive first", []float64{0, math.Copysign(0, -1), 5}, true},
		{"negative first", []float64{math.Copysign(0, -1), 0, 5}, false},
	}

	// 41 samples: ten negatives, ten positives and 21 zeros interleaved. The
	// eleventh zero, the median once sorted, is the only negative one.
	var long []float64
	zero := 0
	nextZero := func() float64 {
		zero++
		if zero == 11 {
			return math.Copysign(0, -1)
		}
		return 0
	}
	for i := 0; i < 10; i++ {
		long = append(long, float64(10-i), nextZero(), -float64(i+1), nextZero())
	}
	long = append(long, nextZero())
	cases = append(cases, struct {
		name    string
		in      []float64
		negZero bool
	}{"interleaved", long, true})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.in).Median
			if got != 0 || math.Signbit(got) != tc.negZero {
				t.Errorf("Median = %v (signbit %v), want zero with signbit %v", got, math.Signbit(got), tc.negZero)
			}
		})
	}
}

func TestCompute_Infinity(t *testing.T) {
	s := Compute([]float64{1, math.Inf(1)})
	if s.N != 2 || !math.IsInf(s.Max, 1) || !math.IsInf(s.Mean, 1) {
		t.Errorf("got %+v", s)
	}
}

func TestFields_Full(t *testing.T) {
	f := Compute([]float64{5}).Fields()
	want := map[string]any{"n": 1, "min": 5.0, "max": 5.0, "mean": 5.0, "std": 0.0, "median": 5.0}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("Fields mismatch (-want +got):\n%s", diff)
	}
}

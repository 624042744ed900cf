// Package stats computes NaN-aware descriptive statistics over trace samples.
package stats

import (
	"cmp"
	"math"
	"slices"
)

// IsMissing reports whether x is a missing sample. Only NaN is missing;
// infinities are ordinary values.
func IsMissing(x float64) bool {
	return math.IsNaN(x)
}

// FilterMissing returns the samples of xs that are not missing, in order.
func FilterMissing(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !IsMissing(x) {
			out = append(out, x)
		}
	}
	return out
}

// Summary describes a filtered sample sequence. When N is zero the other
// fields are meaningless and omitted from Fields.
type Summary struct {
	N      int
	Min    float64
	Max    float64
	Mean   float64
	Std    float64
	Median float64
}

// Empty reports whether no samples survived filtering.
func (s Summary) Empty() bool { return s.N == 0 }

// Fields returns the summary as a key-value structure: {"n": 0} when empty,
// otherwise all six statistics.
func (s Summary) Fields() map[string]any {
	if s.Empty() {
		return map[string]any{"n": 0}
	}
	return map[string]any{
		"n":      s.N,
		"min":    s.Min,
		"max":    s.Max,
		"mean":   s.Mean,
		"std":    s.Std,
		"median": s.Median,
	}
}

// Compute filters missing samples from xs and summarizes the rest. Std is the
// population standard deviation (divisor n).
func Compute(xs []float64) Summary {
	vals := FilterMissing(xs)
	n := len(vals)
	if n == 0 {
		return Summary{}
	}

	s := Summary{N: n, Min: vals[0], Max: vals[0]}
	var sum float64
	for _, x := range vals {
		sum += x
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
	}
	s.Mean = sum / float64(n)

	var sq float64
	for _, x := range vals {
		d := x - s.Mean
		sq += d * d
	}
	s.Std = math.Sqrt(sq / float64(n))

	// vals is a fresh slice; sorting it leaves xs untouched. Equal values
	// (0 and -0) keep their input order.
	slices.SortStableFunc(vals, cmp.Compare[float64])
	mid := n / 2
	if n%2 == 1 {
		s.Median = vals[mid]
	} else {
		s.Median = 0.5 * (vals[mid-1] + vals[mid])
	}
	return s
}

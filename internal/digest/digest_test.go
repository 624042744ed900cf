package digest

import (
	"strings"
	"testing"
)

func TestSum(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", []byte("abc"), "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Sum(tc.in)
			if got != tc.want {
				t.Errorf("Sum = %s, want %s", got, tc.want)
			}
			if len(got) != Size {
				t.Errorf("len = %d, want %d", len(got), Size)
			}
		})
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		Sum([]byte("abc")):                  true,
		"":                                  false,
		"abc":                               false,
		strings.ToUpper(Sum([]byte("abc"))): false,
		strings.Repeat("g", Size):           false,
		strings.Repeat("0", Size-1) + " ":   false,
		strings.Repeat("0", Size):           true,
	}
	for in, want := range cases {
		if got := Valid(in); got != want {
			t.Errorf("Valid(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSum_Reproducible(t *testing.T) {
	data := []byte(`{"trace":{"length":6}}`)
	if Sum(data) != Sum(append([]byte(nil), data...)) {
		t.Error("digest not reproducible")
	}
}

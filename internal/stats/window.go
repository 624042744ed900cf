package stats

// Window is a half-open index range [Start, End) into a trace.
type Window struct {
	Start int
	End   int
}

// Len returns the number of indices covered by w.
func (w Window) Len() int { return w.End - w.Start }

// Slice returns the samples of xs covered by w.
func (w Window) Slice(xs []float64) []float64 {
	return xs[w.Start:w.End]
}

// PreWindow returns [max(0, b-width), b) clamped to a trace of length n.
func PreWindow(n, b, width int) Window {
	end := clamp(b, 0, n)
	start := clamp(b-width, 0, end)
	return Window{Start: start, End: end}
}

// PostWindow returns [b, min(n, b+width)) clamped to a trace of length n.
func PostWindow(n, b, width int) Window {
	start := clamp(b, 0, n)
	end := clamp(b+width, start, n)
	return Window{Start: start, End: end}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

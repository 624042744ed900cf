package verify

import (
	"bufio"
	"fmt"
	"io"

	"rnse/internal/canon"
	"rnse/internal/digest"
	"rnse/internal/stats"
)

// WriteReport writes the human-readable summary block for r. Failure lines
// are not repeated here; the failure sink emits them as checks run.
func WriteReport(w io.Writer, r *Result) error {
	full, err := summaryJSON(r.Full)
	if err != nil {
		return err
	}
	pre, err := summaryJSON(r.Pre)
	if err != nil {
		return err
	}
	post, err := summaryJSON(r.Post)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, r.Verdict())
	fmt.Fprintf(bw, "%-26s = %s\n", digest.Algorithm+"(trace)", r.TraceDigest)
	fmt.Fprintf(bw, "%-26s = %s\n", digest.Algorithm+"(canonical manifest)", r.ManifestDigest)
	fmt.Fprintln(bw, "FS.1 stats:")
	fmt.Fprintf(bw, "  b=%d, w_pre=%d, w_post=%d\n", r.FS1.BoundaryB, r.FS1.WPre, r.FS1.WPost)
	fmt.Fprintf(bw, "  full:  %s\n", full)
	fmt.Fprintf(bw, "  pre:   %s\n", pre)
	fmt.Fprintf(bw, "  post:  %s\n", post)
	fmt.Fprintf(bw, "  delta_mean_post_minus_pre   = %s\n", FormatDelta(r.DeltaMean))
	fmt.Fprintf(bw, "  delta_median_post_minus_pre = %s\n", FormatDelta(r.DeltaMedian))
	return bw.Flush()
}

// FormatDelta renders an optional delta, "null" when absent.
func FormatDelta(d *float64) string {
	if d == nil {
		return "null"
	}
	return canon.FormatFloat(*d)
}

func summaryJSON(s stats.Summary) (string, error) {
	b, err := canon.MarshalReport(s.Fields())
	if err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return string(b), nil
}

// Package batch verifies many bundles concurrently. Each verification is
// hermetic, so bundles run in a bounded worker pool and outcomes are reported
// in input order.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"rnse/internal/format"
	"rnse/internal/logging"
	"rnse/internal/verify"
)

// Outcome is the result of verifying one bundle.
type Outcome struct {
	Bundle verify.Bundle
	Result *verify.Result
	// Output holds the FAIL lines and report exactly as a single verify run
	// would print them. Empty when Err is set.
	Output string
	Err    error
}

// Status classifies the outcome as "PASS", "FAIL" or "ERROR".
func (o Outcome) Status() string {
	if o.Err != nil {
		return "ERROR"
	}
	return o.Result.Verdict()
}

// Run verifies bundles with at most parallel concurrent workers. A parallel
// value below 1 runs serially. Bundles not started before ctx is canceled get
// ctx.Err() as their error.
func Run(ctx context.Context, bundles []verify.Bundle, parallel int) []Outcome {
	if parallel < 1 {
		parallel = 1
	}
	logger := logging.New("batch")
	logger.Info("batch started", "bundles", len(bundles), "workers", parallel)

	outcomes := make([]Outcome, len(bundles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, b := range bundles {
		g.Go(func() error {
			outcomes[i] = runOne(gctx, logger, b)
			return nil
		})
	}
	_ = g.Wait() // errors are captured per outcome

	return outcomes
}

func runOne(ctx context.Context, logger *slog.Logger, b verify.Bundle) Outcome {
	out := Outcome{Bundle: b}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	var buf bytes.Buffer
	v := verify.New(
		verify.WithFailureSink(&buf),
		verify.WithLogger(logger.With("bundle", b.Name)),
	)
	r, err := v.VerifyBundle(b)
	if err != nil {
		logger.Error("bundle verification aborted", "bundle", b.Name, "error", err)
		out.Err = err
		return out
	}
	if err := verify.WriteReport(&buf, r); err != nil {
		out.Err = err
		return out
	}
	out.Result = r
	out.Output = buf.String()
	return out
}

// Totals counts outcomes by status.
type Totals struct {
	Passed  int
	Failed  int
	Errored int
}

// Tally counts outcomes by status.
func Tally(outcomes []Outcome) Totals {
	var t Totals
	for _, o := range outcomes {
		switch o.Status() {
		case "PASS":
			t.Passed++
		case "FAIL":
			t.Failed++
		default:
			t.Errored++
		}
	}
	return t
}

// WriteReports writes each bundle's output under a "== <name>" header, in
// input order.
func WriteReports(w io.Writer, outcomes []Outcome) {
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s\n", o.Bundle.Name)
		if o.Err != nil {
			fmt.Fprintf(w, "ERROR: %v\n", o.Err)
			continue
		}
		fmt.Fprint(w, o.Output)
	}
}

func verdictCell(o Outcome) string {
	return format.Mark(o.Err == nil && o.Result.OK) + " " + o.Status()
}

// SummaryTable renders one row per bundle plus a totals footer.
func SummaryTable(outcomes []Outcome, mode format.Mode) string {
	tb := format.NewTable(mode)
	tb.Header("Bundle", "Verdict", "Trace", "Manifest", "Δ mean", "Δ median", "Failures")
	for _, o := range outcomes {
		if o.Err != nil {
			tb.Row(o.Bundle.Name, verdictCell(o), "-", "-", "-", "-", format.Truncate(o.Err.Error(), 60))
			continue
		}
		r := o.Result
		tb.Row(
			o.Bundle.Name,
			verdictCell(o),
			format.Truncate(r.TraceDigest, 15),
			format.Truncate(r.ManifestDigest, 15),
			verify.FormatDelta(r.DeltaMean),
			verify.FormatDelta(r.DeltaMedian),
			format.Dash(strings.Join(r.Failures, "; ")),
		)
	}
	t := Tally(outcomes)
	tb.Footer(fmt.Sprintf("%d bundles", len(outcomes)),
		fmt.Sprintf("%d pass / %d fail / %d error", t.Passed, t.Failed, t.Errored), "", "", "", "", "")
	tb.Columns(format.Column{Number: 5, Align: format.AlignRight}, format.Column{Number: 6, Align: format.AlignRight})
	return tb.String()
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rnse/internal/canon"
	"rnse/internal/format"
	"rnse/internal/stats"
	"rnse/internal/trace"
)

func newInspectCmd() *cobra.Command {
	var flags struct {
		boundary int
		wPre     int
		wPost    int
		markdown bool
	}
	cmd := &cobra.Command{
		Use:   "inspect <trace.f64le>",
		Short: "Summarize a raw trace file without a manifest",
		Long: `Inspect decodes a little-endian float64 trace and prints a statistics table
for the whole trace. With --boundary it adds the FS.1 pre and post windows
around that sample index.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.wPre < 0 || flags.wPost < 0 {
				return fmt.Errorf("window widths must be non-negative (w-pre=%d, w-post=%d)", flags.wPre, flags.wPost)
			}
			samples, err := trace.ReadFile(args[0])
			if err != nil {
				return err
			}

			t := format.NewTable(format.ModeFor(flags.markdown))
			t.Header("Window", "Range", "Samples", "n", "Min", "Max", "Mean", "Std", "Median")
			t.Columns(
				format.Column{Number: 3, Align: format.AlignRight},
				format.Column{Number: 4, Align: format.AlignRight},
			)
			addStatsRow(t, "full", stats.Window{Start: 0, End: len(samples)}, samples)
			if cmd.Flags().Changed("boundary") {
				n := len(samples)
				addStatsRow(t, "pre", stats.PreWindow(n, flags.boundary, flags.wPre), samples)
				addStatsRow(t, "post", stats.PostWindow(n, flags.boundary, flags.wPost), samples)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&flags.boundary, "boundary", 0, "Boundary sample index b")
	f.IntVar(&flags.wPre, "w-pre", 0, "Pre-window width")
	f.IntVar(&flags.wPost, "w-post", 0, "Post-window width")
	f.BoolVar(&flags.markdown, "markdown", false, "Render as Markdown")
	return cmd
}

func addStatsRow(t *format.Table, name string, w stats.Window, samples []float64) {
	s := stats.Compute(w.Slice(samples))
	rng := fmt.Sprintf("[%d, %d)", w.Start, w.End)
	if s.Empty() {
		t.Row(name, rng, w.Len(), 0, "-", "-", "-", "-", "-")
		return
	}
	t.Row(name, rng, w.Len(), s.N,
		canon.FormatFloat(s.Min), canon.FormatFloat(s.Max),
		canon.FormatFloat(s.Mean), canon.FormatFloat(s.Std), canon.FormatFloat(s.Median))
}

package main

import (
	"github.com/spf13/cobra"

	"rnse/internal/logging"
	"rnse/internal/verify"
)

func newVerifyCmd() *cobra.Command {
	var flags struct {
		manifest string
		trace    string
	}
	cmd := &cobra.Command{
		Use:   "verify [bundle-dir]",
		Short: "Verify one bundle and print its report",
		Long: `Verify reads manifest.json and trace.f64le from bundle-dir (default: the
current directory), or from the paths given with --manifest and --trace.

Each failed check prints a "FAIL: <reason>" line as soon as it is detected;
the full report follows. Exit status: 0 PASS, 2 FAIL, 1 malformed bundle.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			b := verify.BundleDir(dir)
			if flags.manifest != "" {
				b.ManifestPath = flags.manifest
			}
			if flags.trace != "" {
				b.TracePath = flags.trace
			}
			return runVerify(cmd, b)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.manifest, "manifest", "", "Manifest path (default: <bundle-dir>/"+verify.ManifestFile+")")
	f.StringVar(&flags.trace, "trace", "", "Trace path (default: <bundle-dir>/"+verify.TraceFile+")")
	return cmd
}

func runVerify(cmd *cobra.Command, b verify.Bundle) error {
	out := cmd.OutOrStdout()
	v := verify.New(
		verify.WithFailureSink(out),
		verify.WithLogger(logging.New("verify").With("bundle", b.Name)),
	)
	r, err := v.VerifyBundle(b)
	if err != nil {
		return err
	}
	if err := verify.WriteReport(out, r); err != nil {
		return err
	}
	if !r.OK {
		return &exitError{code: exitFail}
	}
	return nil
}

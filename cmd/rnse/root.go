package main

import (
	"os"

	"github.com/spf13/cobra"

	"rnse/internal/logging"
)

// envLogLevel overrides the default log level when --log-level is not given.
const envLogLevel = "RNSE_LOG_LEVEL"

type rootFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "rnse",
		Short: "Verify trace bundle integrity and FS.1 boundary statistics",
		Long: `rnse checks that a trace bundle (manifest.json + trace.f64le) is intact:
the manifest's canonical sha256, the trace sha256, and non-empty FS.1
windows around the declared boundary. It prints PASS or FAIL followed by
the digests and window statistics.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initLogging(cmd, flags.logLevel, flags.logFormat)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $"+envLogLevel+" or warn)")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(newVerifyCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newServeCmd())
	return root
}

// initLogging configures slog on the command's stderr. An empty level falls
// back to $RNSE_LOG_LEVEL, then warn.
func initLogging(cmd *cobra.Command, level, format string) error {
	if level == "" {
		level = os.Getenv(envLogLevel)
	}
	if level == "" {
		level = "warn"
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	f, err := logging.ParseFormat(format)
	if err != nil {
		return err
	}
	logging.Init(lvl, f, cmd.ErrOrStderr())
	return nil
}

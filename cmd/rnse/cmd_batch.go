package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rnse/internal/batch"
	"rnse/internal/config"
	"rnse/internal/format"
)

func newBatchCmd() *cobra.Command {
	var flags struct {
		config   string
		parallel int
		markdown bool
	}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Verify every bundle listed in a config file",
		Long: `Batch verifies each bundle listed under "bundles" in the config file
(YAML or JSON) concurrently, prints every bundle's report in listed order,
then a summary table.

Exit status: 0 when all bundles pass, 2 when any bundle fails, 1 when any
bundle is malformed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromPath(flags.config)
			if err != nil {
				return err
			}
			if err := applyConfigLogging(cmd, cfg); err != nil {
				return err
			}
			parallel := cfg.Parallel
			if cmd.Flags().Changed("parallel") {
				parallel = flags.parallel
			}

			bundles := cfg.ResolvedBundles()
			if len(bundles) == 0 {
				return fmt.Errorf("config %s lists no bundles", flags.config)
			}
			outcomes := batch.Run(cmd.Context(), bundles, parallel)

			out := cmd.OutOrStdout()
			batch.WriteReports(out, outcomes)
			fmt.Fprintln(out)
			fmt.Fprint(out, batch.SummaryTable(outcomes, format.ModeFor(flags.markdown)))
			fmt.Fprintln(out)

			t := batch.Tally(outcomes)
			switch {
			case t.Errored > 0:
				return &exitError{code: exitFatal}
			case t.Failed > 0:
				return &exitError{code: exitFail}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.config, "config", "c", "", "Config file listing bundles (YAML or JSON)")
	f.IntVar(&flags.parallel, "parallel", config.DefaultParallel, "Max concurrent verifications (overrides config)")
	f.BoolVar(&flags.markdown, "markdown", false, "Render the summary table as Markdown")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// applyConfigLogging re-initializes logging from the config file. Explicit
// flags win over the config, and $RNSE_LOG_LEVEL wins over the config level.
func applyConfigLogging(cmd *cobra.Command, cfg *config.Config) error {
	pf := cmd.Flags()
	level, _ := pf.GetString("log-level")
	if !pf.Changed("log-level") && os.Getenv(envLogLevel) == "" {
		level = cfg.Log.Level
	}
	logFormat, _ := pf.GetString("log-format")
	if !pf.Changed("log-format") {
		logFormat = cfg.Log.Format
	}
	return initLogging(cmd, level, logFormat)
}

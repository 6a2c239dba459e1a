package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/docuflow/annoport/internal/api"
	"github.com/docuflow/annoport/internal/config"
	"github.com/docuflow/annoport/internal/transfer"
	"github.com/docuflow/annoport/version"
)

var (
	cfgFile      string
	logLevel     string
	logFile      string
	dryRun       bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "annoport <source.pdf> <target.pdf> <output.pdf>",
	Short: "Transfer annotations between two layouts of the same PDF content",
	Long: `Annoport moves notes, highlights, and drawings from one PDF onto a
re-exported version of the same content. Recurring record labels (anchor
tokens, "M" followed by digits by default) tie the two layouts together:
each annotation follows its nearest preceding anchor instead of its absolute
page position.

The source and target files are never modified; the annotated copy of the
target is written to the output path. On success a transfer report (anchors,
linked and unlinked annotations, skips with reasons) is printed.

Examples:
  annoport orders-v1.pdf orders-v2.pdf orders-v2-annotated.pdf
  annoport orders-v1.pdf orders-v2.pdf out.pdf --dry-run -o json`,
	Args:          cobra.ExactArgs(3),
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Assigned here rather than in the composite literal: the closure calls
	// setup, which reads rootCmd's flags, and that reference back to rootCmd
	// would otherwise be an initialization cycle.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, logger, cleanup, err := setup()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return err
		}
		defer cleanup()

		agent, err := transfer.NewAgent(cfg, logger)
		if err != nil {
			logger.Error("invalid configuration", "error", err)
			return err
		}

		report, err := agent.Run(cmd.Context(), transfer.Options{
			SourcePath: args[0],
			TargetPath: args[1],
			OutputPath: args[2],
			DryRun:     dryRun,
		})
		if err != nil {
			logger.Error("annotation transfer failed", "error", err)
			return err
		}

		return api.Output(report)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.annoport/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn, error",
	)
	rootCmd.PersistentFlags().StringVar(
		&logFile, "log-file", "", "also append logs to this file",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output-format", "o", "yaml", "report format: yaml or json",
	)
	rootCmd.Flags().BoolVar(
		&dryRun, "dry-run", false, "run the pipeline and report, but do not save the output",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(anchorsCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration, applies flag overrides, and builds the logger.
// The returned cleanup closes the log file, if one was opened.
func setup() (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if rootCmd.PersistentFlags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if rootCmd.PersistentFlags().Changed("log-file") {
		cfg.LogFile = logFile
	}

	cleanup := func() {}
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		cleanup = func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	return cfg, logger, cleanup, nil
}

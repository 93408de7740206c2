package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devdedup/internal/config"
	"github.com/Sumatoshi-tech/devdedup/internal/eval"
	"github.com/Sumatoshi-tech/devdedup/internal/report"
)

// EvaluateCommand holds configuration and flag state for the evaluate command.
type EvaluateCommand struct {
	configPath string
	path       string
	labelsPath string
	format     string
}

// NewEvaluateCommand creates the evaluate command.
func NewEvaluateCommand() *cobra.Command {
	ec := &EvaluateCommand{}

	cmd := &cobra.Command{
		Use:   "evaluate [path]",
		Short: "Compare a clustering against ground-truth labels",
		Long: "Run deduplication over the repository and score the resulting " +
			"clusters against a labeled reference with pairwise precision, " +
			"recall, and F1.",
		Args: cobra.MaximumNArgs(1),
		RunE: ec.run,
	}

	cmd.Flags().StringVar(&ec.configPath, "config", "", "Config file path (default: .devdedup.yaml in CWD or $HOME)")
	cmd.Flags().StringVarP(&ec.path, "path", "p", ".", "Repository path to analyze")
	cmd.Flags().StringVarP(&ec.labelsPath, "labels", "l", "", "Ground-truth label file (JSON)")
	cmd.Flags().StringVar(&ec.format, "format", config.FormatTable, "Output format: table, json, yaml")

	err := cmd.MarkFlagRequired("labels")
	if err != nil {
		panic(err)
	}

	return cmd
}

func (ec *EvaluateCommand) run(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ec.path = args[0]
	}

	cfg, err := config.LoadConfig(ec.configPath)
	if err != nil {
		return err
	}

	labels, err := eval.LoadLabels(ec.labelsPath)
	if err != nil {
		return err
	}

	providers, err := initTelemetry(cfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	ctx := cmd.Context()

	defer func() {
		shutdownErr := providers.Shutdown(context.WithoutCancel(ctx))
		if shutdownErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "telemetry shutdown: %v\n", shutdownErr)
		}
	}()

	res, err := runPipeline(ctx, cfg, ec.path, providers)
	if err != nil {
		return err
	}

	reference, unknown := labels.Partition(res.Pool)
	if unknown > 0 {
		providers.Logger.WarnContext(ctx, "label entries not found in pool",
			slog.Int("unknown", unknown),
		)
	}

	metrics, err := eval.Compare(res.Partition, reference)
	if err != nil {
		return err
	}

	return ec.render(cmd.OutOrStdout(), metrics)
}

func (ec *EvaluateCommand) render(out io.Writer, metrics eval.Result) error {
	switch ec.format {
	case config.FormatJSON:
		return report.WriteMetricsJSON(out, metrics)
	case config.FormatYAML:
		return report.WriteMetricsYAML(out, metrics)
	default:
		report.NewWriter(out).Metrics(metrics)

		return nil
	}
}

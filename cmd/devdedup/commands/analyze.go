package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devdedup/internal/config"
	"github.com/Sumatoshi-tech/devdedup/internal/engine"
	"github.com/Sumatoshi-tech/devdedup/internal/report"
)

// AnalyzeCommand holds configuration and flag state for the analyze command.
type AnalyzeCommand struct {
	configPath string
	path       string

	heuristic string
	threshold float64
	blocking  string
	maxPairs  int
	workers   int

	maxCommits  int
	firstParent bool
	cache       bool
	cacheDir    string

	format    string
	outputDir string
	plot      bool
	noColor   bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	ac := &AnalyzeCommand{}

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Extract identities from a repository and cluster duplicates",
		Long: "Walk the repository history, normalize author identities, " +
			"and group aliases of the same developer.",
		Args: cobra.MaximumNArgs(1),
		RunE: ac.run,
	}

	cmd.Flags().StringVar(&ac.configPath, "config", "", "Config file path (default: .devdedup.yaml in CWD or $HOME)")
	cmd.Flags().StringVarP(&ac.path, "path", "p", ".", "Repository path to analyze")

	cmd.Flags().StringVar(&ac.heuristic, "heuristic", "", "Matching heuristic: bird, improved")
	cmd.Flags().Float64Var(&ac.threshold, "threshold", 0, "Improved-heuristic match threshold in [0, 1]")
	cmd.Flags().StringVar(&ac.blocking, "blocking", "", "Blocking strategy: domain, initials, both")
	cmd.Flags().IntVar(&ac.maxPairs, "max-pairs", 0, "Max candidate pairs to score per run")
	cmd.Flags().IntVar(&ac.workers, "workers", 0, "Number of scoring workers (0 = CPU count)")

	cmd.Flags().IntVar(&ac.maxCommits, "max-commits", 0, "Limit number of commits to walk (0 = no limit)")
	cmd.Flags().BoolVar(&ac.firstParent, "first-parent", false, "Follow only first parent of merge commits")
	cmd.Flags().BoolVar(&ac.cache, "cache", false, "Cache extracted records on disk")
	cmd.Flags().StringVar(&ac.cacheDir, "cache-dir", "", "Record cache directory")

	cmd.Flags().StringVar(&ac.format, "format", "", "Output format: table, csv, json, yaml")
	cmd.Flags().StringVarP(&ac.outputDir, "output", "o", "", "Directory for CSV/JSON/plot artifacts")
	cmd.Flags().BoolVar(&ac.plot, "plot", false, "Write a cluster size distribution chart")
	cmd.Flags().BoolVar(&ac.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (ac *AnalyzeCommand) run(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ac.path = args[0]
	}

	if ac.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	cfg, err := config.LoadConfig(ac.configPath)
	if err != nil {
		return err
	}

	ac.applyOverrides(cmd, cfg)

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
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

	if cfg.Telemetry.MetricsAddr != "" {
		stopMetrics, metricsErr := serveMetrics(cfg.Telemetry.MetricsAddr, providers.Logger)
		if metricsErr != nil {
			return fmt.Errorf("serve metrics: %w", metricsErr)
		}

		defer func() {
			_ = stopMetrics(context.WithoutCancel(ctx))
		}()
	}

	res, err := runPipeline(ctx, cfg, ac.path, providers)
	if err != nil {
		return err
	}

	return ac.render(cmd.OutOrStdout(), cfg, res)
}

// applyOverrides copies explicitly set flags over the loaded config.
func (ac *AnalyzeCommand) applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("heuristic") {
		cfg.Heuristic = ac.heuristic
	}

	if flags.Changed("threshold") {
		cfg.Threshold = ac.threshold
	}

	if flags.Changed("blocking") {
		cfg.Blocking = ac.blocking
	}

	if flags.Changed("max-pairs") {
		cfg.MaxPairs = ac.maxPairs
	}

	if flags.Changed("workers") {
		cfg.Workers = ac.workers
	}

	if flags.Changed("max-commits") {
		cfg.Extract.MaxCommits = ac.maxCommits
	}

	if flags.Changed("first-parent") {
		cfg.Extract.FirstParent = ac.firstParent
	}

	if flags.Changed("cache") {
		cfg.Extract.Cache = ac.cache
	}

	if flags.Changed("cache-dir") {
		cfg.Extract.CacheDir = ac.cacheDir
	}

	if flags.Changed("format") {
		cfg.Output.Format = ac.format
	}

	if flags.Changed("output") {
		cfg.Output.Dir = ac.outputDir
	}

	if flags.Changed("plot") {
		cfg.Output.Plot = ac.plot
	}
}

// render writes the result in the configured format, plus any artifacts.
func (ac *AnalyzeCommand) render(out io.Writer, cfg *config.Config, res *engine.Result) error {
	output := report.BuildOutput(res)

	switch cfg.Output.Format {
	case config.FormatJSON:
		err := report.WriteJSON(out, output)
		if err != nil {
			return err
		}
	case config.FormatYAML:
		err := report.WriteYAML(out, output)
		if err != nil {
			return err
		}
	case config.FormatCSV:
		err := report.WriteClustersCSV(out, output)
		if err != nil {
			return err
		}
	default:
		writer := report.NewWriter(out)
		writer.Summary(res)
		writer.Clusters(res)
		writer.Pairs(res)
	}

	if cfg.Output.Dir != "" {
		err := writeArtifacts(cfg, res, output)
		if err != nil {
			return err
		}
	}

	return nil
}

// writeArtifacts writes CSV, JSON, and optionally the plot to the output dir.
func writeArtifacts(cfg *config.Config, res *engine.Result, output report.Output) error {
	err := os.MkdirAll(cfg.Output.Dir, 0o755)
	if err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	err = writeFile(filepath.Join(cfg.Output.Dir, "clusters.csv"), func(w io.Writer) error {
		return report.WriteClustersCSV(w, output)
	})
	if err != nil {
		return err
	}

	err = writeFile(filepath.Join(cfg.Output.Dir, "pairs.csv"), func(w io.Writer) error {
		return report.WritePairsCSV(w, output)
	})
	if err != nil {
		return err
	}

	err = writeFile(filepath.Join(cfg.Output.Dir, "result.json"), func(w io.Writer) error {
		return report.WriteJSON(w, output)
	})
	if err != nil {
		return err
	}

	if cfg.Output.Plot {
		err = writeFile(filepath.Join(cfg.Output.Dir, "clusters.html"), func(w io.Writer) error {
			return report.WriteClusterSizePlot(w, res)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	err = write(file)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

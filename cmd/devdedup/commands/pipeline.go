// Package commands implements CLI command handlers for devdedup.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sumatoshi-tech/devdedup/internal/blocking"
	"github.com/Sumatoshi-tech/devdedup/internal/config"
	"github.com/Sumatoshi-tech/devdedup/internal/engine"
	"github.com/Sumatoshi-tech/devdedup/internal/extract"
	"github.com/Sumatoshi-tech/devdedup/internal/observability"
	"github.com/Sumatoshi-tech/devdedup/pkg/version"
)

// metricsReadHeaderTimeout bounds header reads on the metrics listener.
const metricsReadHeaderTimeout = 5 * time.Second

// parseLogLevel maps a config string to an slog level. Unknown values
// fall back to info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initTelemetry builds observability providers from the loaded config.
func initTelemetry(cfg *config.Config) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = parseLogLevel(cfg.Telemetry.LogLevel)
	obsCfg.LogJSON = cfg.Telemetry.LogJSON

	return observability.Init(obsCfg)
}

// serveMetrics exposes the Prometheus scrape endpoint for the duration of
// the run. The returned shutdown function stops the listener.
func serveMetrics(addr string, logger *slog.Logger) (func(ctx context.Context) error, error) {
	handler, err := observability.PrometheusHandler()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics listener failed", slog.Any("error", serveErr))
		}
	}()

	return server.Shutdown, nil
}

// loadRecords extracts commit records from the repository, going through
// the on-disk cache when enabled.
func loadRecords(
	ctx context.Context, cfg *config.Config, repoPath string, logger *slog.Logger,
) ([]extract.Record, error) {
	var cache *extract.Cache
	if cfg.Extract.Cache {
		cache = extract.NewCache(cfg.Extract.CacheDir)

		records, ok := cache.Load(repoPath)
		if ok {
			logger.InfoContext(ctx, "loaded records from cache",
				slog.String("repo", repoPath),
				slog.Int("records", len(records)),
			)

			return records, nil
		}
	}

	records, _, err := extract.FromRepository(ctx, repoPath, extract.Options{
		MaxCommits:  cfg.Extract.MaxCommits,
		FirstParent: cfg.Extract.FirstParent,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("extract records: %w", err)
	}

	if cache != nil {
		cacheErr := cache.Save(repoPath, records)
		if cacheErr != nil {
			logger.WarnContext(ctx, "record cache write failed", slog.Any("error", cacheErr))
		}
	}

	return records, nil
}

// runPipeline extracts identities from the repository and clusters them.
func runPipeline(
	ctx context.Context,
	cfg *config.Config,
	repoPath string,
	providers observability.Providers,
) (*engine.Result, error) {
	records, err := loadRecords(ctx, cfg, repoPath, providers.Logger)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewRunMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("create run metrics: %w", err)
	}

	eng, err := engine.New(engine.Config{
		Heuristic: cfg.Heuristic,
		Weights:   cfg.Weights,
		Threshold: cfg.Threshold,
		Blocking:  blocking.Strategy(cfg.Blocking),
		MaxPairs:  cfg.MaxPairs,
		Workers:   cfg.Workers,
		Logger:    providers.Logger,
		Metrics:   metrics,
	})
	if err != nil {
		return nil, err
	}

	return eng.Run(ctx, extract.Raws(records))
}

// Run pipeline orchestration: fetch → generate → append → plot.
//
// The pipeline is strictly sequential. The store is only opened after a
// successful fetch, so a "no data" answer from the rate source leaves
// the filesystem untouched. When the observability listener is enabled
// it serves /healthz, /metrics and /series/latest for the duration of
// the run.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brclabs/cditrend/cmd/cditrend/config"
	"github.com/brclabs/cditrend/cmd/cditrend/metrics"
	"github.com/brclabs/cditrend/cmd/cditrend/router"
	"github.com/brclabs/cditrend/pkg/chart"
	"github.com/brclabs/cditrend/pkg/fetch"
	"github.com/brclabs/cditrend/pkg/httpx"
	"github.com/brclabs/cditrend/pkg/sampler"
	"github.com/brclabs/cditrend/pkg/series"
)

// run executes one complete pipeline pass. A nil m disables
// instrumentation.
func run(ctx context.Context, cfg *config.Config, chartName string, logger *slog.Logger, m *metrics.Metrics) error {
	client := &fetch.Client{
		URL:        cfg.SourceURL,
		HTTPClient: httpx.NewClient(cfg.HTTPTimeout),
	}

	fetchStart := time.Now()
	rate, ok, err := client.Latest(ctx)
	if m != nil {
		m.RecordFetch(time.Since(fetchStart).Seconds())
	}
	if err != nil {
		if m != nil {
			m.RecordError("fetch", "request_failed")
		}
		return fmt.Errorf("fetch rate: %w", err)
	}
	if !ok {
		fmt.Println("No CDI data available, nothing to do.")
		logger.Info("rate source returned no data", "url", cfg.SourceURL)
		return nil
	}

	logger.Info("fetched base rate", "rate", rate, "url", cfg.SourceURL)

	store, err := newStore(cfg)
	if err != nil {
		if m != nil {
			m.RecordError("store", "open_failed")
		}
		return fmt.Errorf("open series store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	if cfg.Listen != "" {
		mux := router.SetupRoutes(store, logger)
		handler := httpx.LoggingMiddleware(logger)(httpx.RecoveryMiddleware(logger)(mux))
		srv := httpx.NewServer(cfg.Listen, handler, logger)

		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("observability server failed", "error", err)
			}
		}()
		defer func() {
			if err := srv.Stop(5 * time.Second); err != nil {
				logger.Error("observability server shutdown failed", "error", err)
			}
		}()
	}

	gen := sampler.New(store, rate, cfg.Interval, logger)
	if m != nil {
		gen.OnSample = func(s series.Sample) { m.RecordSample(s.Rate) }
	}

	if err := gen.Run(ctx, cfg.Samples); err != nil {
		if m != nil {
			m.RecordError("sampler", "generate_failed")
		}
		return fmt.Errorf("generate samples: %w", err)
	}
	fmt.Println("Samples collected successfully.")

	samples, err := store.Load(ctx)
	if err != nil {
		if m != nil {
			m.RecordError("store", "load_failed")
		}
		return fmt.Errorf("load series: %w", err)
	}

	renderStart := time.Now()
	path, err := chart.WritePNG(chartName, samples)
	if m != nil {
		m.RecordRender(time.Since(renderStart).Seconds())
	}
	if err != nil {
		if m != nil {
			m.RecordError("chart", "render_failed")
		}
		return fmt.Errorf("render chart: %w", err)
	}
	fmt.Printf("Chart saved as %s\n", path)

	logger.Info("run complete", "rows", len(samples), "chart", path)
	return nil
}

// newStore builds the series backend selected by the configuration.
func newStore(cfg *config.Config) (series.Store, error) {
	switch cfg.Storage {
	case "redis":
		return series.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SeriesName, cfg.RedisTTL)
	default:
		return series.NewCSVStore(cfg.CSVFile)
	}
}

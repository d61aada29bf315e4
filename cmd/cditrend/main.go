// Command cditrend samples the CDI interest-rate indicator and plots it.
//
// Each run fetches the latest CDI rate from the Banco Central do Brasil
// SGS API, generates a configurable number of jittered samples of that
// rate (one per interval), appends them to the series store, and renders
// a PNG line chart of the whole accumulated series:
//
//	cditrend meu-grafico
//
// writes samples to ./taxa-cdi.csv and the chart to ./meu-grafico.png.
//
// Flags (each with an environment-variable fallback):
//
//	-source-url   / SOURCE_URL   - Rate source endpoint
//	-samples      / SAMPLES      - Samples per run (default 10)
//	-interval     / INTERVAL     - Pause between samples (default 1s)
//	-storage      / STORAGE      - Series backend: csv or redis
//	-csv-file     / CSV_FILE     - Series file path (default ./taxa-cdi.csv)
//	-redis-addr   / REDIS_ADDR   - Redis address (redis backend)
//	-listen       / LISTEN       - Observability listen address (off when empty)
//	-log-level    / LOG_LEVEL    - debug, info, warn, error (default info)
//	-log-format   / LOG_FORMAT   - text or json (default text)
//	-config       / CONFIG_FILE  - Optional YAML config file
//
// Exit status is 0 when the chart name is missing (usage is printed) and
// when the rate source has no data; propagated failures exit with 1.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brclabs/cditrend/cmd/cditrend/config"
	"github.com/brclabs/cditrend/cmd/cditrend/logger"
	"github.com/brclabs/cditrend/cmd/cditrend/metrics"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	cfg := config.ParseFlags()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if flag.NArg() < 1 {
		fmt.Printf("usage: %s [flags] <chart-name>\n", os.Args[0])
		return
	}
	chartName := flag.Arg(0)

	log.Info("starting cditrend",
		"version", version,
		"chart", chartName,
		"samples", cfg.Samples,
		"storage", cfg.Storage,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, chartName, log, metrics.New(cfg.SeriesName)); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// Package sampler synthesizes the jittered CDI sample series.
//
// Given a base rate fetched once per run, the generator produces N
// samples, one per tick: each takes the current wall clock and a rate of
// base + u with u uniform in [-0.5, +0.5), appends it to the series
// store immediately, then waits the configured interval before the next
// one. A sample once appended stays appended; an append failure aborts
// the remainder of the run.
package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/brclabs/cditrend/pkg/series"
)

// Generator produces jittered samples of a base rate.
type Generator struct {
	store    series.Store
	base     float64
	interval time.Duration
	logger   *slog.Logger

	// Now supplies the wall clock. Defaults to time.Now.
	Now func() time.Time

	// Jitter supplies the random offset added to the base rate.
	// Defaults to a uniform draw in [-0.5, +0.5).
	Jitter func() float64

	// OnSample, if set, is called after each sample is durably appended.
	OnSample func(series.Sample)
}

// New creates a Generator that appends to store.
func New(store series.Store, base float64, interval time.Duration, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		store:    store,
		base:     base,
		interval: interval,
		logger:   logger,
		Now:      time.Now,
		Jitter:   func() float64 { return rand.Float64() - 0.5 },
	}
}

// Run produces count samples. It blocks for the whole generation,
// pausing for the interval between consecutive samples (not after the
// last one). Cancelling the context stops the loop with the context's
// error; rows already appended remain in the store.
func (g *Generator) Run(ctx context.Context, count int) error {
	g.logger.Info("starting sample generation",
		"base_rate", g.base,
		"count", count,
		"interval", g.interval,
	)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		s := series.NewSample(g.Now(), g.base+g.Jitter())

		if err := g.store.Append(ctx, s); err != nil {
			return fmt.Errorf("append sample %d/%d: %w", i+1, count, err)
		}

		g.logger.Debug("appended sample",
			"n", i+1,
			"date", s.Date,
			"time", s.Time,
			"rate", s.Rate,
		)

		if g.OnSample != nil {
			g.OnSample(s)
		}

		if i < count-1 {
			if err := g.wait(ctx); err != nil {
				return err
			}
		}
	}

	g.logger.Info("sample generation complete", "count", count)
	return nil
}

func (g *Generator) wait(ctx context.Context) error {
	if g.interval <= 0 {
		return nil
	}

	timer := time.NewTimer(g.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

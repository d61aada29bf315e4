// Package series provides append-only storage implementations for the
// CDI sample series.
//
// Samples accumulate across runs; a store never updates or deletes rows
// and makes no uniqueness guarantees. Ordering is insertion order, which
// is chronological because samples are produced sequentially.
//
// Two backends are available:
//   - CSVStore   — flat comma-separated file (default, survives as plain text)
//   - RedisStore — Redis list, for sharing a series between hosts
package series

import (
	"context"
	"strconv"
	"time"
)

// Layouts for the date and time fields of a sample.
const (
	DateLayout = "2006/01/02"
	TimeLayout = "15:04:05"
)

// Sample is one observation of the jittered CDI rate.
type Sample struct {
	Date string  `json:"data"` // calendar day, YYYY/MM/DD
	Time string  `json:"hora"` // wall-clock time of day, HH:MM:SS
	Rate float64 `json:"taxa"`
}

// NewSample builds a Sample from a wall-clock instant and a rate.
func NewSample(t time.Time, rate float64) Sample {
	return Sample{
		Date: t.Format(DateLayout),
		Time: t.Format(TimeLayout),
		Rate: rate,
	}
}

// FormatRate renders a rate with the locale-independent '.' separator,
// using the shortest decimal representation that round-trips.
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

// Store is the interface all series backends implement.
//
// Append must make the sample durable before returning; a sample once
// appended stays appended even if the run aborts later. Load returns
// every sample ever appended, oldest first.
type Store interface {
	Append(ctx context.Context, s Sample) error
	Load(ctx context.Context) ([]Sample, error)
	Close() error
}

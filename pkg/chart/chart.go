// Package chart renders the accumulated CDI series as a PNG line plot.
//
// Every historical row ever appended is plotted, including rows from
// previous runs; there is no aggregation, filtering, or downsampling.
// Time of day goes on the X axis, rate on the Y axis.
package chart

import (
	"errors"
	"fmt"
	"os"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/brclabs/cditrend/pkg/series"
)

const (
	chartWidth  = 1024
	chartHeight = 560
)

// WritePNG renders samples to a line chart at <baseName>.png in the
// working directory, overwriting any existing file. The series must
// contain at least one sample.
func WritePNG(baseName string, samples []series.Sample) (string, error) {
	if baseName == "" {
		return "", errors.New("chart name cannot be empty")
	}
	if len(samples) == 0 {
		return "", errors.New("no samples to plot")
	}

	path := baseName + ".png"

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file %s: %w", path, err)
	}

	if err := render(samples, f); err != nil {
		f.Close()
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close chart file %s: %w", path, err)
	}

	return path, nil
}

func render(samples []series.Sample, out *os.File) error {
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	ticks := make([]chart.Tick, 0, len(samples)+1)
	for i, s := range samples {
		x := float64(i + 1)
		xs[i] = x
		ys[i] = s.Rate
		ticks = append(ticks, chart.Tick{Value: x, Label: s.Time})
	}

	// go-chart refuses a zero-width x-range; pad single-sample series
	// with a second point.
	if len(samples) == 1 {
		xs = append(xs, 2)
		ys = append(ys, ys[0])
		ticks = append(ticks, chart.Tick{Value: 2, Label: ""})
	}

	xRange := &chart.ContinuousRange{Min: 0.5, Max: float64(len(xs)) + 0.5}

	ch := chart.Chart{
		Title:  "Taxa CDI",
		Width:  chartWidth,
		Height: chartHeight,
		// Extra bottom padding for the rotated time labels.
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 72}},
		XAxis: chart.XAxis{
			Name:      "hora",
			Ticks:     ticks,
			Range:     xRange,
			TickStyle: chart.Style{TextRotationDegrees: 90},
		},
		YAxis: chart.YAxis{Name: "taxa"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "taxa",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    chart.ColorBlue,
					DotWidth:    3,
				},
			},
		},
	}

	if err := ch.Render(chart.PNG, out); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

// Package progress turns a weight history into a windowed chart series and a
// weekly trend estimate.
package progress

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// Window selects how far back from "now" samples are kept.
type Window string

const (
	Week        Window = "WEEK"
	Month       Window = "MONTH"
	ThreeMonths Window = "THREE_MONTHS"
	SixMonths   Window = "SIX_MONTHS"
	Year        Window = "YEAR"
	All         Window = "ALL"
)

const day = 24 * time.Hour

var lookbacks = map[Window]time.Duration{
	Week:        7 * day,
	Month:       30 * day,
	ThreeMonths: 90 * day,
	SixMonths:   180 * day,
	Year:        365 * day,
}

// DefaultWindow is used when the caller does not pick one.
const DefaultWindow = Month

// Windows lists every supported window, shortest first.
var Windows = []Window{Week, Month, ThreeMonths, SixMonths, Year, All}

var ErrUnknownWindow = errors.New("unknown time window")

// ParseWindow accepts any case and "-"/" " separators ("three months").
func ParseWindow(s string) (Window, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	w := Window(norm)
	if w == All {
		return w, nil
	}
	if _, ok := lookbacks[w]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
	}
	return w, nil
}

// Lookback returns the window length. The second result is false for ALL,
// which has no bound.
func (w Window) Lookback() (time.Duration, bool) {
	d, ok := lookbacks[w]
	return d, ok
}

// Category classifies a weekly rate of change.
type Category string

const (
	InsufficientData Category = "INSUFFICIENT_DATA"
	Stable           Category = "STABLE"
	Gaining          Category = "GAINING"
	Losing           Category = "LOSING"
)

// StableBandKgPerWeek is the absolute rate below which a trend is STABLE.
const StableBandKgPerWeek = 0.1

// Sample is one body-weight measurement.
type Sample struct {
	UserID     string    `json:"userId"`
	WeightKG   float64   `json:"weightKg"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ChartPoint is a sample projected for plotting.
type ChartPoint struct {
	Timestamp time.Time `json:"timestamp"`
	WeightKG  float64   `json:"weightKg"`
}

// Trend summarizes the change between the earliest and the latest sample.
type Trend struct {
	KgPerWeek   float64  `json:"trendKgPerWeek"`
	Category    Category `json:"trendCategory"`
	ChangeKg    float64  `json:"changeKg"`
	DaysElapsed int      `json:"daysElapsed"`
}

// Report is the chart series and trend for one window.
type Report struct {
	Window Window       `json:"window"`
	Points []ChartPoint `json:"points"`
	Trend  Trend        `json:"trend"`
}

// FilterByWindow keeps the samples recorded strictly after now minus the
// window's lookback, preserving input order. ALL keeps everything.
func FilterByWindow(samples []Sample, w Window, now time.Time) []Sample {
	out := make([]Sample, 0, len(samples))
	lookback, bounded := w.Lookback()
	if !bounded {
		return append(out, samples...)
	}

	cutoff := now.Add(-lookback)
	for _, s := range samples {
		if s.RecordedAt.After(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// ComputeTrend estimates kg/week from the earliest and latest samples. The
// input slice is not reordered.
func ComputeTrend(samples []Sample) Trend {
	if len(samples) < 2 {
		return Trend{Category: InsufficientData}
	}

	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b Sample) int {
		return a.RecordedAt.Compare(b.RecordedAt)
	})

	first, last := sorted[0], sorted[len(sorted)-1]
	change := last.WeightKG - first.WeightKG
	days := int(last.RecordedAt.Sub(first.RecordedAt) / day)
	if days == 0 {
		return Trend{Category: InsufficientData, ChangeKg: change}
	}

	rate := change / float64(days) * 7
	return Trend{
		KgPerWeek:   rate,
		Category:    categorize(rate),
		ChangeKg:    change,
		DaysElapsed: days,
	}
}

func categorize(rate float64) Category {
	switch {
	case math.Abs(rate) < StableBandKgPerWeek:
		return Stable
	case rate > 0:
		return Gaining
	default:
		return Losing
	}
}

// Analyze filters samples to the window, then builds the chart series and the
// trend over what remains.
func Analyze(samples []Sample, w Window, now time.Time) Report {
	filtered := FilterByWindow(samples, w, now)
	return Report{
		Window: w,
		Points: ToChartPoints(filtered),
		Trend:  ComputeTrend(filtered),
	}
}

// ToChartPoints projects samples in the given order.
func ToChartPoints(samples []Sample) []ChartPoint {
	points := make([]ChartPoint, len(samples))
	for i, s := range samples {
		points[i] = ChartPoint{Timestamp: s.RecordedAt, WeightKG: s.WeightKG}
	}
	return points
}

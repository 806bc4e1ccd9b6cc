package domain

import "time"

// MetricPeriod is the rolling window a metric snapshot covers
type MetricPeriod string

const (
	MetricPeriod1h  MetricPeriod = "1h"
	MetricPeriod24h MetricPeriod = "24h"
)

// MetricPeriods are all periods the calculator computes, in order.
var MetricPeriods = []MetricPeriod{MetricPeriod1h, MetricPeriod24h}

// Duration returns the window length for the period.
func (p MetricPeriod) Duration() (time.Duration, error) {
	switch p {
	case MetricPeriod1h:
		return time.Hour, nil
	case MetricPeriod24h:
		return 24 * time.Hour, nil
	default:
		return 0, ErrInvalidPeriod
	}
}

// NarrativeMetric is an immutable time-stamped engagement snapshot for a
// narrative over one period. Snapshots are append-only; read paths always
// take the most recent snapshot per (narrative, period).
type NarrativeMetric struct {
	NarrativeID  string       `json:"narrative_id"`
	Period       MetricPeriod `json:"period"`
	MentionCount int          `json:"mention_count"`
	Velocity     float64      `json:"velocity"` // Percent change vs the preceding window
	CalculatedAt time.Time    `json:"calculated_at"`
}

// CalculationResult is the outcome of one metrics calculator run
type CalculationResult struct {
	// Calculated is the number of (narrative, period) pairs computed
	Calculated int `json:"calculated"`

	// Stored is the number of snapshots persisted.
	// Stored < Calculated when individual appends failed.
	Stored int `json:"stored"`
}

// Package aggregate turns timestamped business records into per-month and
// per-quarter buckets, cumulative running totals and growth-rate summaries.
// All functions are pure: no I/O, no logging, inputs are never mutated.
package aggregate

import "fmt"

// Metric selects which counters the aggregation populates.
type Metric string

// Supported metrics.
const (
	MetricClients      Metric = "clients"
	MetricPrograms     Metric = "programs"
	MetricParticipants Metric = "participants"
	MetricRevenue      Metric = "revenue"
)

// Valid reports whether m is one of the supported metrics.
func (m Metric) Valid() bool {
	switch m {
	case MetricClients, MetricPrograms, MetricParticipants, MetricRevenue:
		return true
	}
	return false
}

// ErrUnknownMetric wraps the metric literal that failed validation.
type ErrUnknownMetric struct {
	Metric Metric
}

func (e ErrUnknownMetric) Error() string {
	return fmt.Sprintf("aggregate: unknown metric %q", string(e.Metric))
}

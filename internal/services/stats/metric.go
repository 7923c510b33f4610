package stats

import (
	"errors"
	"fmt"
)

// ErrUnknownMetric is returned for a connection metric name that is not recognised
var ErrUnknownMetric = errors.New("unknown metric")

// Metric names a Connection value that pairs can be filtered on
type Metric string

const (
	MetricGamesPlayed Metric = "games_played"
	MetricWinRate     Metric = "win_rate"
	MetricAvgKDA      Metric = "avg_kda"
)

// Metrics lists every supported metric
var Metrics = []Metric{MetricGamesPlayed, MetricWinRate, MetricAvgKDA}

// ParseMetric accepts a metric name. Empty means games played.
func ParseMetric(s string) (Metric, error) {
	if s == "" {
		return MetricGamesPlayed, nil
	}
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// Value reads the metric off a connection. Win rate is a percentage.
func (m Metric) Value(c Connection) float64 {
	switch m {
	case MetricWinRate:
		return c.WinRate
	case MetricAvgKDA:
		return c.AvgKDA
	default:
		return float64(c.GamesPlayed)
	}
}

// FilterConnections keeps the connections whose metric is at least minValue,
// in their original order
func FilterConnections(conns []Connection, metric Metric, minValue float64) []Connection {
	out := []Connection{}
	for _, c := range conns {
		if metric.Value(c) >= minValue {
			out = append(out, c)
		}
	}
	return out
}

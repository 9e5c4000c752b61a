package pipeline

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/mcdash/internal/model"
)

// Selection bounds for a comparison.
const (
	MinCompare = 2
	MaxCompare = 4
)

// ErrCompareSelection reports a selection outside [MinCompare, MaxCompare].
var ErrCompareSelection = errors.New("select between 2 and 4 campaigns to compare")

// Metric is a campaign figure shown in the comparison view.
type Metric struct {
	Key   string
	Label string
	Rate  bool
	value func(model.Campaign) float64
}

// Value extracts the metric from c.
func (m Metric) Value(c model.Campaign) float64 {
	return m.value(c)
}

// CompareMetrics is the fixed metric list of the comparison view.
var CompareMetrics = []Metric{
	{Key: "emails_sent", Label: "Emails Sent", value: func(c model.Campaign) float64 { return float64(c.EmailsSent) }},
	{Key: "unique_opens", Label: "Unique Opens", value: func(c model.Campaign) float64 { return float64(c.UniqueOpens) }},
	{Key: "open_rate", Label: "Open Rate", Rate: true, value: func(c model.Campaign) float64 { return c.OpenRate.Float() }},
	{Key: "unique_clicks", Label: "Unique Clicks", value: func(c model.Campaign) float64 { return float64(c.UniqueClicks) }},
	{Key: "click_rate", Label: "Click Rate", Rate: true, value: func(c model.Campaign) float64 { return c.ClickRate.Float() }},
	{Key: "opens_total", Label: "Total Opens", value: func(c model.Campaign) float64 { return float64(c.OpensTotal) }},
	{Key: "clicks_total", Label: "Total Clicks", value: func(c model.Campaign) float64 { return float64(c.ClicksTotal) }},
	{Key: "unique_subscriber_clicks", Label: "Subscriber Clicks", value: func(c model.Campaign) float64 { return float64(c.UniqueSubscriberClicks) }},
}

// MetricRow is one metric across the compared campaigns.
type MetricRow struct {
	Metric Metric
	Values []float64
	Max    float64
	Best   []bool
}

// Compare computes, per metric, the maximum across campaigns and flags every
// campaign equal to it. A maximum of zero or below flags nothing.
func Compare(campaigns []model.Campaign) []MetricRow {
	rows := make([]MetricRow, 0, len(CompareMetrics))
	for _, metric := range CompareMetrics {
		row := MetricRow{
			Metric: metric,
			Values: make([]float64, len(campaigns)),
			Best:   make([]bool, len(campaigns)),
		}
		for i, c := range campaigns {
			v := metric.Value(c)
			row.Values[i] = v
			if i == 0 || v > row.Max {
				row.Max = v
			}
		}
		for i, v := range row.Values {
			row.Best[i] = v == row.Max && v > 0
		}
		rows = append(rows, row)
	}
	return rows
}

// ValidateCompareSelection checks the number of selected campaigns.
func ValidateCompareSelection(n int) error {
	if n < MinCompare || n > MaxCompare {
		return fmt.Errorf("%w (got %d)", ErrCompareSelection, n)
	}
	return nil
}

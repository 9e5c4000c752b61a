package chart

import (
	"sort"

	"github.com/verte-zerg/mcdash/internal/format"
	"github.com/verte-zerg/mcdash/internal/model"
)

// TopCampaignsByOpenRate returns bars for the n sent campaigns with the
// highest open rate. Ties keep the campaign order given.
func TopCampaignsByOpenRate(list []model.Campaign, n int) []Bar {
	if n <= 0 {
		return nil
	}
	sent := make([]model.Campaign, 0, len(list))
	for _, c := range list {
		if c.Status == model.CampaignSent {
			sent = append(sent, c)
		}
	}
	sort.SliceStable(sent, func(i, j int) bool {
		return sent[i].OpenRate > sent[j].OpenRate
	})
	if n > len(sent) {
		n = len(sent)
	}
	bars := make([]Bar, 0, n)
	for _, c := range sent[:n] {
		bars = append(bars, Bar{
			Label:   c.DisplayTitle(),
			Value:   c.OpenRate.Float(),
			Display: format.Rate(c.OpenRate),
		})
	}
	return bars
}

// ContactsByStatus counts contacts per status. Known statuses come first in
// their display order, followed by any others alphabetically.
func ContactsByStatus(list []model.Contact) []Bar {
	counts := map[string]int{}
	for _, c := range list {
		counts[c.Status]++
	}
	bars := make([]Bar, 0, len(counts))
	for _, status := range model.ContactStatuses {
		if n, ok := counts[status]; ok {
			bars = append(bars, countBar(status, n))
			delete(counts, status)
		}
	}
	rest := make([]string, 0, len(counts))
	for status := range counts {
		rest = append(rest, status)
	}
	sort.Strings(rest)
	for _, status := range rest {
		label := status
		if label == "" {
			label = "unknown"
		}
		bars = append(bars, countBar(label, counts[status]))
	}
	return bars
}

// OpenRateTrend returns the open rates of sent campaigns ordered by send time.
// Campaigns without a send time are left out.
func OpenRateTrend(list []model.Campaign) []float64 {
	sent := make([]model.Campaign, 0, len(list))
	for _, c := range list {
		if c.Status == model.CampaignSent && c.SendTime.Valid() {
			sent = append(sent, c)
		}
	}
	sort.SliceStable(sent, func(i, j int) bool {
		return sent[i].SendTime.Before(sent[j].SendTime.Time)
	})
	out := make([]float64, len(sent))
	for i, c := range sent {
		out[i] = c.OpenRate.Float()
	}
	return out
}

func countBar(label string, n int) Bar {
	return Bar{Label: label, Value: float64(n), Display: format.Count(model.Count(n))}
}

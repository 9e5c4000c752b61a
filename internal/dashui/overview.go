package dashui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mcdash/internal/chart"
	"github.com/verte-zerg/mcdash/internal/dashboard"
	"github.com/verte-zerg/mcdash/internal/format"
	"github.com/verte-zerg/mcdash/internal/model"
)

const topCampaigns = 8

func (m *Model) renderOverview() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.snap, width))
}

func renderOverview(snap *dashboard.Snapshot, width int) string {
	if len(snap.Loaded) == 0 {
		return "Loading dashboard..."
	}
	sections := []string{renderSummaryCards(snap.Stats, width)}
	if len(snap.Configs) > 0 {
		sections = append(sections, renderLeadTypes(snap.Configs))
	}
	sections = append(sections,
		renderBars("Top campaigns by open rate", chart.TopCampaignsByOpenRate(snap.Campaigns, topCampaigns), width),
		renderBars("Contacts by status", chart.ContactsByStatus(snap.Contacts), width),
		renderTrend(snap.Campaigns, width),
	)
	return strings.TrimRight(strings.Join(sections, "\n\n"), "\n")
}

func renderSummaryCards(stats model.StatsSummary, width int) string {
	cards := []string{
		metricCard("Campaigns", fmt.Sprintf("%s (%s sent)", format.Count(stats.TotalCampaigns), format.Count(stats.SentCampaigns))),
		metricCard("Contacts", format.Count(stats.TotalContacts)),
		metricCard("Subscribed", format.Count(stats.SubscribedContacts)),
		metricCard("Emails sent", format.Count(stats.TotalEmailsSent)),
		metricCard("Avg open", format.Rate(stats.AvgOpenRate)),
		metricCard("Avg click", format.Rate(stats.AvgClickRate)),
	}
	synced := headerStyle.Render("Last synced: " + format.Synced(stats.LastSyncedAt))
	if width < 80 {
		return strings.Join(append(cards, synced), "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2, synced)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderLeadTypes(configs []model.LeadTypeConfig) string {
	rows := make([][]string, 0, len(configs))
	for _, cfg := range configs {
		status := cfg.ConnectionStatus
		if status == "" {
			status = "unknown"
		}
		rows = append(rows, []string{cfg.LeadTypeName, status, format.Synced(cfg.LastSyncedAt)})
	}
	lines := chart.Table([]string{"Lead type", "Connection", "Last synced"}, rows, nil)
	return sectionStyle.Render("Lead types") + "\n" + strings.Join(lines, "\n")
}

func renderBars(title string, bars []chart.Bar, width int) string {
	lines := chart.BarLines(bars, width, func(_ int, bar string) string {
		return barStyle.Render(bar)
	})
	if len(lines) == 0 {
		lines = []string{headerStyle.Render("No data")}
	}
	return sectionStyle.Render(title) + "\n" + strings.Join(lines, "\n")
}

func renderTrend(campaigns []model.Campaign, width int) string {
	trend := chart.OpenRateTrend(campaigns)
	title := sectionStyle.Render("Open rate by send time")
	if len(trend) == 0 {
		return title + "\n" + headerStyle.Render("No sent campaigns")
	}
	line := chart.Sparkline(chart.Resample(trend, max(10, width-2)))
	lo, hi := trend[0], trend[0]
	for _, v := range trend {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	legend := fmt.Sprintf("%d campaigns  min %s  max %s", len(trend), format.Percent(lo), format.Percent(hi))
	return title + "\n" + barStyle.Render(line) + "\n" + headerStyle.Render(legend)
}

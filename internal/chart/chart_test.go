package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/mcdash/internal/model"
)

func TestTableAlignsColumns(t *testing.T) {
	headers := []string{"Lead type", "Status", "Campaigns"}
	rows := [][]string{
		{"Solar", "connected", "12"},
		{"Roofing", "error", "3"},
	}
	lines := Table(headers, rows, map[int]bool{2: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Lead type Status    Campaigns" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Solar     connected        12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Roofing   error             3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestBarLinesScaleToLargest(t *testing.T) {
	lines := BarLines([]Bar{
		{Label: "a", Value: 10, Display: "10"},
		{Label: "b", Value: 5, Display: "5"},
		{Label: "c", Value: 0, Display: "0"},
	}, 17, nil)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if got := strings.Count(lines[0], "█"); got != 12 {
		t.Fatalf("expected full bar of 12 cells, got %d in %q", got, lines[0])
	}
	if got := strings.Count(lines[1], "█"); got != 6 {
		t.Fatalf("expected half bar of 6 cells, got %d in %q", got, lines[1])
	}
	if strings.Contains(lines[2], "█") {
		t.Fatalf("expected empty bar for zero, got %q", lines[2])
	}
}

func TestBarLinesTruncateLongLabels(t *testing.T) {
	lines := BarLines([]Bar{{Label: strings.Repeat("x", 40), Value: 1, Display: "1"}}, 60, nil)
	if !strings.HasPrefix(lines[0], strings.Repeat("x", defaultLabelWidth-1)+"…") {
		t.Fatalf("expected truncated label, got %q", lines[0])
	}
}

func TestWriteBarsNoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBars(&buf, "Contacts by status", []Bar{{Label: "subscribed", Value: 3}}, 40, false); err != nil {
		t.Fatalf("WriteBars failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Contacts by status\n") {
		t.Fatalf("expected title, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI codes, got %q", out)
	}
}

func TestWriteBarsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBars(&buf, "", nil, 40, false); err != nil {
		t.Fatalf("WriteBars failed: %v", err)
	}
	if !strings.Contains(buf.String(), "no data") {
		t.Fatalf("expected empty marker, got %q", buf.String())
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 50, 100}); got != "▁▅█" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3}); got != "▅▅" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestResample(t *testing.T) {
	got := Resample([]float64{1, 2, 3, 4, 5, 6}, 3)
	if len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 5 {
		t.Fatalf("unexpected resample %v", got)
	}
}

func TestTopCampaignsByOpenRate(t *testing.T) {
	list := []model.Campaign{
		{SubjectLine: "low", Status: model.CampaignSent, OpenRate: 10},
		{SubjectLine: "draft", Status: model.CampaignSave, OpenRate: 99},
		{SubjectLine: "high", Status: model.CampaignSent, OpenRate: 42.5},
	}
	bars := TopCampaignsByOpenRate(list, 5)
	if len(bars) != 2 {
		t.Fatalf("expected only sent campaigns, got %d", len(bars))
	}
	if bars[0].Label != "high" || bars[0].Display != "42.50%" {
		t.Fatalf("unexpected first bar %+v", bars[0])
	}
}

func TestContactsByStatus(t *testing.T) {
	list := []model.Contact{
		{Status: model.ContactCleaned},
		{Status: model.ContactSubscribed},
		{Status: "archived"},
		{Status: model.ContactSubscribed},
	}
	bars := ContactsByStatus(list)
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if bars[0].Label != "subscribed" || bars[0].Value != 2 {
		t.Fatalf("unexpected first bar %+v", bars[0])
	}
	if bars[2].Label != "archived" {
		t.Fatalf("expected unknown statuses last, got %+v", bars[2])
	}
}

func TestOpenRateTrendOrdersBySendTime(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	list := []model.Campaign{
		{Status: model.CampaignSent, OpenRate: 30, SendTime: model.NewTimestamp(day.Add(48 * time.Hour))},
		{Status: model.CampaignSent, OpenRate: 10, SendTime: model.NewTimestamp(day)},
		{Status: model.CampaignSent, OpenRate: 99},
	}
	got := OpenRateTrend(list)
	if len(got) != 2 || got[0] != 10 || got[1] != 30 {
		t.Fatalf("unexpected trend %v", got)
	}
}

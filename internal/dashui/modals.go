package dashui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/mcdash/internal/dashboard"
	"github.com/verte-zerg/mcdash/internal/format"
	"github.com/verte-zerg/mcdash/internal/model"
	"github.com/verte-zerg/mcdash/internal/pipeline"
)

const (
	bestMark    = " ▲"
	goneMessage = "This record is no longer in the loaded data."
)

func (m *Model) openDetail(entity model.Entity) {
	id, ok := m.currentID(entity)
	if !ok {
		return
	}
	if entity == model.EntityCampaigns && !m.permitted(model.PermViewCampaign, "view campaigns") {
		return
	}
	m.modal = dashboard.DetailModal(entity, id)
}

func (m *Model) openCompare(entity model.Entity) {
	if entity != model.EntityCampaigns {
		return
	}
	if !m.permitted(model.PermViewCampaign, "view campaigns") {
		return
	}
	modal, err := dashboard.CompareModal(m.selection.Campaigns.IDs())
	if err != nil {
		m.setNotice(model.NoticeError, "Select between %d and %d campaigns to compare", pipeline.MinCompare, pipeline.MaxCompare)
		return
	}
	m.modal = modal
}

func (m *Model) renderModal() string {
	var title string
	var body []string
	switch m.modal.Kind {
	case dashboard.ModalCampaignDetail:
		if c, ok := m.snap.Campaign(firstID(m.modal.IDs)); ok {
			title, body = c.DisplayTitle(), campaignDetail(c)
		} else {
			title, body = "Campaign", []string{goneMessage}
		}
	case dashboard.ModalContactDetail:
		if c, ok := m.snap.Contact(firstID(m.modal.IDs)); ok {
			title, body = c.EmailAddress, contactDetail(c)
		} else {
			title, body = "Contact", []string{goneMessage}
		}
	case dashboard.ModalCompare:
		title = "Compare campaigns"
		body = compareView(m.snap.CampaignsByID(m.modal.IDs), modalInnerWidth(m.width))
	case dashboard.ModalConfirmArchive:
		title = "Archive"
		body = confirmView(m.modal)
	case dashboard.ModalFilter:
		title = "Filter " + string(m.form.entity)
		body = m.form.view()
	case dashboard.ModalHelp:
		title = "Keys"
		body = helpView()
	}
	lines := append([]string{cardValueStyle.Render(title), ""}, body...)
	if m.modal.Kind != dashboard.ModalFilter && m.modal.Kind != dashboard.ModalConfirmArchive {
		lines = append(lines, "", headerStyle.Render("esc to close"))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func firstID(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

type field struct {
	label string
	value string
}

func fieldLines(fields []field) []string {
	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, runewidth.StringWidth(f.label))
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, labelStyle.Render(runewidth.FillRight(f.label, labelWidth))+"  "+f.value)
	}
	return lines
}

func campaignDetail(c model.Campaign) []string {
	tracking := fmt.Sprintf("opens %s, html clicks %s, text clicks %s",
		format.Bool(c.TrackOpens), format.Bool(c.TrackHTMLClicks), format.Bool(c.TrackTextClicks))
	return fieldLines([]field{
		{"Title", format.OrDash(c.Title)},
		{"Preview", format.OrDash(c.PreviewText)},
		{"From", format.OrDash(c.FromName)},
		{"Reply to", format.OrDash(c.ReplyTo)},
		{"Status", c.Status},
		{"Lead type", badge(format.OrDash(c.LeadTypeName), c.LeadTypeColor)},
		{"Send time", format.DateTime(c.SendTime)},
		{"Emails sent", format.Count(c.EmailsSent)},
		{"Opens", fmt.Sprintf("%s unique, %s total", format.Count(c.UniqueOpens), format.Count(c.OpensTotal))},
		{"Open rate", format.Rate(c.OpenRate)},
		{"Clicks", fmt.Sprintf("%s unique, %s total", format.Count(c.UniqueClicks), format.Count(c.ClicksTotal))},
		{"Click rate", format.Rate(c.ClickRate)},
		{"Subscriber clicks", format.Count(c.UniqueSubscriberClicks)},
		{"Unsubscribed", fmt.Sprintf("%s (%s)", format.Count(c.Unsubscribed), format.Rate(c.UnsubscribeRate))},
		{"Bounces", fmt.Sprintf("%s hard, %s soft", format.Count(c.HardBounces), format.Count(c.SoftBounces))},
		{"Delivery rate", format.Rate(c.DeliveryRate)},
		{"Abuse reports", format.Count(c.AbuseReports)},
		{"Tracking", tracking},
		{"Archive URL", format.OrDash(c.ArchiveURL)},
		{"Created", format.Date(c.CreatedAt)},
		{"Last synced", format.Synced(c.LastSyncedAt)},
	})
}

func contactDetail(c model.Contact) []string {
	var address string
	if addr := c.MergeFields.Address; !addr.Empty() {
		address = addr.String()
		if addr.Country != "" {
			address = strings.TrimPrefix(address+", "+addr.Country, ", ")
		}
	}
	fields := []field{
		{"Name", format.OrDash(c.Name())},
		{"Status", c.Status},
		{"Rating", format.Rating(c.MemberRating)},
		{"VIP", format.Bool(c.VIP)},
		{"Lead type", badge(format.OrDash(c.LeadTypeName), c.LeadTypeColor)},
		{"Address", format.OrDash(address)},
		{"Language", format.OrDash(c.Language)},
		{"Email client", format.OrDash(c.EmailClient)},
		{"Source", format.OrDash(c.Source)},
		{"Opted in", format.DateTime(c.TimestampOpt)},
		{"Last changed", format.DateTime(c.LastChanged)},
		{"Sync status", format.OrDash(c.SyncStatus)},
		{"Last synced", format.Synced(c.LastSyncedAt)},
	}
	lines := fieldLines(fields)
	if c.SyncError != "" {
		lines = append(lines, errorStyle.Render("Sync error: "+c.SyncError))
	}
	return lines
}

// compareView lays the metrics out as rows with one column per campaign. Best
// values carry a marker and are highlighted.
func compareView(campaigns []model.Campaign, width int) []string {
	if len(campaigns) == 0 {
		return []string{"No campaigns to compare."}
	}
	rows := pipeline.Compare(campaigns)
	labelWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, runewidth.StringWidth(row.Metric.Label))
	}
	colWidth := max(10, (width-labelWidth)/len(campaigns)-1)

	header := runewidth.FillRight("", labelWidth)
	for _, c := range campaigns {
		header += " " + runewidth.FillRight(runewidth.Truncate(c.DisplayTitle(), colWidth, "…"), colWidth)
	}
	lines := []string{cardTitleStyle.Render(header)}
	for _, row := range rows {
		line := labelStyle.Render(runewidth.FillRight(row.Metric.Label, labelWidth))
		for i, c := range campaigns {
			text := compareValue(row.Metric, c)
			if row.Best[i] {
				text += bestMark
			}
			cell := runewidth.FillRight(text, colWidth)
			if row.Best[i] {
				cell = bestStyle.Render(cell)
			}
			line += " " + cell
		}
		lines = append(lines, line)
	}
	return append(lines, "", headerStyle.Render(strings.TrimSpace(bestMark)+" best value"))
}

func compareValue(metric pipeline.Metric, c model.Campaign) string {
	if metric.Rate {
		return format.Percent(metric.Value(c))
	}
	return format.Count(model.Count(metric.Value(c)))
}

func confirmView(modal dashboard.ModalState) []string {
	noun := modal.Entity.Singular()
	if len(modal.IDs) != 1 {
		noun = string(modal.Entity)
	}
	return []string{
		fmt.Sprintf("Archive %d %s? They stop being tracked locally.", len(modal.IDs), noun),
		"",
		headerStyle.Render("y/enter: archive  n/esc: cancel"),
	}
}

func helpView() []string {
	return fieldLines([]field{
		{"←/→", "switch tab"},
		{"↑/↓", "move row or scroll"},
		{"/", "filter the list"},
		{"s / S", "next sort field / flip direction"},
		{"n / p", "next / previous page"},
		{"space", "select row"},
		{"esc", "clear selection"},
		{"enter", "details"},
		{"c", "compare 2-4 selected campaigns"},
		{"y", "sync the list from the email platform"},
		{"r", "resync selected rows or the current row"},
		{"a", "archive selected rows or the current row"},
		{"e", "export the filtered list as CSV"},
		{"t", "next lead type"},
		{"R", "reload everything"},
		{"q", "quit"},
	})
}

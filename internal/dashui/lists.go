package dashui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/verte-zerg/mcdash/internal/format"
	"github.com/verte-zerg/mcdash/internal/model"
	"github.com/verte-zerg/mcdash/internal/pipeline"
)

const (
	selectedMark = "●"
	noFilters    = "Filters: none"
)

func newListTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(1),
	)
	t.SetStyles(listTableStyles())
	return t
}

// flexColumns gives the first non-fixed column whatever width the fixed ones leave.
func flexColumns(width int, flexTitle string, minFlex int, fixed []table.Column) []table.Column {
	used := 2 // selection column
	for _, c := range fixed {
		used += c.Width + 1
	}
	flex := max(minFlex, width-used-2)
	cols := make([]table.Column, 0, len(fixed)+2)
	cols = append(cols, table.Column{Title: "", Width: 1})
	cols = append(cols, table.Column{Title: flexTitle, Width: flex})
	return append(cols, fixed...)
}

func campaignColumns(width int) []table.Column {
	return flexColumns(width, "Subject", 16, []table.Column{
		{Title: "Status", Width: 9},
		{Title: "Lead type", Width: 12},
		{Title: "Sent", Width: 20},
		{Title: "Emails", Width: 8},
		{Title: "Open", Width: 8},
		{Title: "Click", Width: 8},
		{Title: "Synced", Width: 20},
	})
}

func contactColumns(width int) []table.Column {
	return flexColumns(width, "Email", 20, []table.Column{
		{Title: "Name", Width: 18},
		{Title: "Status", Width: 12},
		{Title: "Rating", Width: 6},
		{Title: "City", Width: 12},
		{Title: "Lead type", Width: 12},
		{Title: "Synced", Width: 20},
	})
}

func (m *Model) mark(entity model.Entity, id string) string {
	if m.selection.For(entity).Has(id) {
		return selectedMark
	}
	return " "
}

// refreshLists re-runs the pipeline for both lists, prunes selections to the
// filtered sets and repopulates the tables.
func (m *Model) refreshLists() {
	campaigns := m.filters.FilteredCampaigns(m.snap.Campaigns)
	m.selection.PruneCampaigns(campaigns)
	cpage := pipeline.Paginate(campaigns, m.filters.CampaignPage, m.filters.PageSize)
	m.filters.CampaignPage = cpage.Number
	m.campaignTotal, m.campaignPages = cpage.Total, cpage.Pages
	m.campaignIDs = m.campaignIDs[:0]
	rows := make([]table.Row, 0, len(cpage.Items))
	for _, c := range cpage.Items {
		id := c.ID.String()
		m.campaignIDs = append(m.campaignIDs, id)
		rows = append(rows, table.Row{
			m.mark(model.EntityCampaigns, id),
			c.DisplayTitle(),
			c.Status,
			format.OrDash(c.LeadTypeName),
			format.DateTime(c.SendTime),
			format.Count(c.EmailsSent),
			format.Rate(c.OpenRate),
			format.Rate(c.ClickRate),
			format.Synced(c.LastSyncedAt),
		})
	}
	setRows(&m.campaignTable, rows)

	contacts := m.filters.FilteredContacts(m.snap.Contacts)
	m.selection.PruneContacts(contacts)
	kpage := pipeline.Paginate(contacts, m.filters.ContactPage, m.filters.PageSize)
	m.filters.ContactPage = kpage.Number
	m.contactTotal, m.contactPages = kpage.Total, kpage.Pages
	m.contactIDs = m.contactIDs[:0]
	rows = make([]table.Row, 0, len(kpage.Items))
	for _, c := range kpage.Items {
		id := c.ID.String()
		m.contactIDs = append(m.contactIDs, id)
		rows = append(rows, table.Row{
			m.mark(model.EntityContacts, id),
			c.EmailAddress,
			format.OrDash(c.Name()),
			c.Status,
			strconv.FormatInt(c.MemberRating.Int(), 10),
			format.OrDash(c.MergeFields.Address.City),
			format.OrDash(c.LeadTypeName),
			format.Synced(c.LastSyncedAt),
		})
	}
	setRows(&m.contactTable, rows)
}

func setRows(t *table.Model, rows []table.Row) {
	cursor := t.Cursor()
	t.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	t.SetCursor(cursor)
}

func (m *Model) renderList(entity model.Entity, height int) string {
	total, pages := m.campaignTotal, m.campaignPages
	loaded := m.snap.Loaded[model.ResourceCampaigns]
	if entity == model.EntityContacts {
		total, pages = m.contactTotal, m.contactPages
		loaded = m.snap.Loaded[model.ResourceContacts]
	}
	summary := headerStyle.Render(truncateLine(m.filterSummary(entity), m.width))
	var body string
	switch {
	case !loaded:
		body = fmt.Sprintf("Loading %s...", entity)
	case total == 0:
		body = fmt.Sprintf("No %s match the current filters.", entity)
	default:
		body = tableMutedStyle.Render(m.tableFor(entity).View())
	}
	tableHeight := max(1, height-2)
	body = fitLines(body, m.width, tableHeight)
	pager := headerStyle.Render(truncateLine(m.pagerLine(entity, total, pages), m.width))
	return summary + "\n" + body + "\n" + pager
}

func (m *Model) filterSummary(entity model.Entity) string {
	parts := []string{"Sort: " + m.filters.Sort(entity).String()}
	if entity == model.EntityContacts {
		f := m.filters.Contacts
		if !f.Active() {
			return strings.Join(append(parts, noFilters), "  ")
		}
		if f.Search != "" {
			parts = append(parts, fmt.Sprintf("search=%q", f.Search))
		}
		if f.Status != "" && f.Status != pipeline.StatusAll {
			parts = append(parts, "status="+f.Status)
		}
		if f.LastSynced.Set() {
			parts = append(parts, "synced="+f.LastSynced.String())
		}
		if f.MinRating > 0 {
			parts = append(parts, fmt.Sprintf("rating>=%d", f.MinRating))
		}
	} else {
		f := m.filters.Campaigns
		if !f.Active() {
			return strings.Join(append(parts, noFilters), "  ")
		}
		if f.Search != "" {
			parts = append(parts, fmt.Sprintf("search=%q", f.Search))
		}
		if f.Status != "" && f.Status != pipeline.StatusAll {
			parts = append(parts, "status="+f.Status)
		}
		if f.SendTime.Set() {
			parts = append(parts, "sent="+f.SendTime.String())
		}
		if f.MinOpenRate > 0 {
			parts = append(parts, "open>="+format.Percent(f.MinOpenRate))
		}
		if f.MinClickRate > 0 {
			parts = append(parts, "click>="+format.Percent(f.MinClickRate))
		}
	}
	return strings.Join(parts, "  ")
}

func (m *Model) pagerLine(entity model.Entity, total, pages int) string {
	if pages == 0 {
		return "No results"
	}
	current := m.filters.Page(entity)
	links := make([]string, 0, 7)
	for _, n := range pipeline.PageNumbers(current, pages) {
		switch {
		case n == 0:
			links = append(links, "…")
		case n == current:
			links = append(links, fmt.Sprintf("[%d]", n))
		default:
			links = append(links, strconv.Itoa(n))
		}
	}
	first := (current-1)*m.filters.PageSize + 1
	last := min(current*m.filters.PageSize, total)
	line := fmt.Sprintf("Page %d of %d  %s  Showing %d-%d of %d", current, pages, strings.Join(links, " "), first, last, total)
	if n := m.selection.For(entity).Len(); n > 0 {
		line += fmt.Sprintf("  Selected %d", n)
	}
	return line
}

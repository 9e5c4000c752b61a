// Package dashui provides the Bubble Tea dashboard.
package dashui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mcdash/internal/action"
	"github.com/verte-zerg/mcdash/internal/dashboard"
	"github.com/verte-zerg/mcdash/internal/model"
)

const (
	tabOverview = iota
	tabCampaigns
	tabContacts
)

// Actions dispatches mutations. *action.Dispatcher satisfies it.
type Actions interface {
	Sync(ctx context.Context, entity model.Entity, leadType string) (action.Outcome, error)
	Resync(ctx context.Context, entity model.Entity, ids ...string) (action.Outcome, error)
	Archive(ctx context.Context, entity model.Entity, ids ...string) (action.Outcome, error)
	Permissions() model.Permissions
}

// Options configures the dashboard.
type Options struct {
	Context   context.Context
	Loader    *dashboard.Loader
	Actions   Actions
	LeadType  string
	Filters   dashboard.FilterState
	ExportDir string
	Logger    *slog.Logger
	Now       func() time.Time
}

type fetchMsg struct {
	res dashboard.Result
}

type actionMsg struct {
	key string
	out action.Outcome
	err error
}

type exportMsg struct {
	entity model.Entity
	count  int
	path   string
	err    error
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	ctx       context.Context
	loader    *dashboard.Loader
	actions   Actions
	perms     model.Permissions
	exportDir string
	log       *slog.Logger
	now       func() time.Time

	snap      *dashboard.Snapshot
	filters   dashboard.FilterState
	selection dashboard.SelectionState
	modal     dashboard.ModalState
	notice    model.Notice

	tabs          []string
	activeTab     int
	overview      viewport.Model
	campaignTable table.Model
	contactTable  table.Model
	campaignIDs   []string
	contactIDs    []string
	campaignTotal int
	contactTotal  int
	campaignPages int
	contactPages  int
	spinner       spinner.Model
	loading       int
	busy          map[string]bool

	form filterForm

	width    int
	height   int
	quitting bool
}

// NewModel constructs the dashboard model.
func NewModel(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	filters := opts.Filters
	if filters.PageSize <= 0 {
		filters = dashboard.NewFilterState(0)
	}
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := &Model{
		ctx:       ctx,
		loader:    opts.Loader,
		actions:   opts.Actions,
		perms:     model.AllPermissions(),
		exportDir: opts.ExportDir,
		log:       logger,
		now:       now,
		snap:      dashboard.NewSnapshot(opts.LeadType),
		filters:   filters,
		tabs:      []string{"Overview", "Campaigns", "Contacts"},
		overview:  viewport.New(0, 0),
		spinner:   sp,
		busy:      map[string]bool{},
	}
	if m.actions != nil {
		m.perms = m.actions.Permissions()
	}
	m.campaignTable = newListTable(campaignColumns(80))
	m.contactTable = newListTable(contactColumns(80))
	m.refreshLists()
	m.renderOverview()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(
		model.ResourceConfigs, model.ResourceStats, model.ResourceCampaigns, model.ResourceContacts))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case fetchMsg:
		m.applyFetch(msg.res)
		return m, nil
	case actionMsg:
		return m, m.applyAction(msg)
	case exportMsg:
		m.applyExport(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting || m.width == 0 || m.height == 0 {
		return ""
	}
	if m.modal.Open() {
		return fitLines(m.renderModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	switch m.modal.Kind {
	case dashboard.ModalFilter:
		return m.updateFilterForm(msg)
	case dashboard.ModalConfirmArchive:
		return m.updateConfirm(msg)
	case dashboard.ModalNone:
	default:
		switch msg.String() {
		case "q":
			return m.quit()
		case "esc", "enter", "?", " ", "space":
			m.modal = dashboard.ModalState{}
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "?":
		m.modal = dashboard.ModalState{Kind: dashboard.ModalHelp}
		return m, nil
	case "R":
		return m, m.reload()
	case "t":
		return m, m.cycleLeadType()
	}

	entity, ok := m.activeEntity()
	if !ok {
		var cmd tea.Cmd
		m.overview, cmd = m.overview.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "/":
		return m, m.openFilterForm(entity)
	case "s":
		m.filters.CycleSort(entity)
		m.refreshLists()
		return m, nil
	case "S":
		m.filters.FlipSort(entity)
		m.refreshLists()
		return m, nil
	case "n", "pgdown":
		m.filters.SetPage(entity, m.filters.Page(entity)+1, m.pages(entity))
		m.refreshLists()
		return m, nil
	case "p", "pgup":
		m.filters.SetPage(entity, m.filters.Page(entity)-1, m.pages(entity))
		m.refreshLists()
		return m, nil
	case " ", "space":
		if id, ok := m.currentID(entity); ok {
			m.selection.For(entity).Toggle(id)
			m.refreshLists()
		}
		return m, nil
	case "esc":
		m.selection.For(entity).Clear()
		m.refreshLists()
		return m, nil
	case "enter":
		m.openDetail(entity)
		return m, nil
	case "c":
		m.openCompare(entity)
		return m, nil
	case "y":
		return m, m.startSync(entity)
	case "r":
		return m, m.startResync(entity)
	case "a":
		m.confirmArchive(entity)
		return m, nil
	case "e":
		return m, m.startExport(entity)
	case "g", "home":
		m.tableFor(entity).GotoTop()
		return m, nil
	case "G", "end":
		m.tableFor(entity).GotoBottom()
		return m, nil
	}
	t := m.tableFor(entity)
	var cmd tea.Cmd
	*t, cmd = t.Update(msg)
	return m, cmd
}

func (m *Model) activeEntity() (model.Entity, bool) {
	switch m.activeTab {
	case tabCampaigns:
		return model.EntityCampaigns, true
	case tabContacts:
		return model.EntityContacts, true
	default:
		return "", false
	}
}

func (m *Model) tableFor(entity model.Entity) *table.Model {
	if entity == model.EntityContacts {
		return &m.contactTable
	}
	return &m.campaignTable
}

func (m *Model) pages(entity model.Entity) int {
	if entity == model.EntityContacts {
		return m.contactPages
	}
	return m.campaignPages
}

func (m *Model) currentID(entity model.Entity) (string, bool) {
	ids := m.campaignIDs
	if entity == model.EntityContacts {
		ids = m.contactIDs
	}
	cursor := m.tableFor(entity).Cursor()
	if cursor < 0 || cursor >= len(ids) {
		return "", false
	}
	return ids[cursor], true
}

// targets returns the selected ids, or the row under the cursor when nothing is selected.
func (m *Model) targets(entity model.Entity) []string {
	if ids := m.selection.For(entity).IDs(); len(ids) > 0 {
		return ids
	}
	if id, ok := m.currentID(entity); ok {
		return []string{id}
	}
	return nil
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.campaignTable.Blur()
	m.contactTable.Blur()
	if entity, ok := m.activeEntity(); ok {
		m.tableFor(entity).Focus()
	}
}

func (m *Model) setNotice(kind model.NoticeKind, format string, args ...any) {
	m.notice = model.Notice{Kind: kind, Text: fmt.Sprintf(format, args...)}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	// Help line plus the status line.
	footerHeight = 2
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	// Filter summary and pagination lines surround the table.
	tableHeight := max(1, bodyHeight-2)
	m.campaignTable.SetColumns(campaignColumns(m.width))
	m.campaignTable.SetWidth(m.width)
	m.campaignTable.SetHeight(tableHeight)
	m.contactTable.SetColumns(contactColumns(m.width))
	m.contactTable.SetWidth(m.width)
	m.contactTable.SetHeight(tableHeight)
	m.form.setWidth(modalInnerWidth(m.width))
	m.renderOverview()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	info := fmt.Sprintf("Lead type: %s  Campaigns: %d  Contacts: %d",
		m.snap.LeadTypeName(), len(m.snap.Campaigns), len(m.snap.Contacts))
	info = truncateLine(info, m.width-2)
	line := headerStyle.Render(info)
	if m.loading > 0 {
		line += " " + m.spinner.View()
	}
	return tabs + "\n" + line
}

func (m *Model) renderHelp() string {
	var help string
	switch m.activeTab {
	case tabCampaigns:
		help = "←/→ tabs  / filter  s/S sort  n/p page  space select  enter details  c compare  y sync  r resync  a archive  e export  t lead type  ? help  q quit"
	case tabContacts:
		help = "←/→ tabs  / filter  s/S sort  n/p page  space select  enter details  y sync  r resync  a archive  e export  t lead type  ? help  q quit"
	default:
		help = "←/→ tabs  ↑/↓ scroll  t lead type  R reload  ? help  q quit"
	}
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFooter() string {
	if m.notice.Text == "" {
		return m.renderHelp() + "\n"
	}
	text := truncateLine(m.notice.Text, m.width)
	switch m.notice.Kind {
	case model.NoticeError:
		text = errorStyle.Render(text)
	case model.NoticeSuccess:
		text = successStyle.Render(text)
	default:
		text = headerStyle.Render(text)
	}
	return m.renderHelp() + "\n" + text
}

func (m *Model) renderBody(height int) string {
	switch m.activeTab {
	case tabCampaigns:
		return m.renderList(model.EntityCampaigns, height)
	case tabContacts:
		return m.renderList(model.EntityContacts, height)
	default:
		return fitLines(m.overview.View(), m.width, height)
	}
}

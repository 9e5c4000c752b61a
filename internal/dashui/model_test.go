package dashui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mcdash/internal/action"
	"github.com/verte-zerg/mcdash/internal/dashboard"
	"github.com/verte-zerg/mcdash/internal/model"
)

type fakeSource struct {
	campaigns []model.Campaign
	contacts  []model.Contact
}

func (f *fakeSource) Configs(context.Context) ([]model.LeadTypeConfig, error) {
	return []model.LeadTypeConfig{{LeadTypeID: "7", LeadTypeName: "Buyers", ConnectionStatus: "connected"}}, nil
}

func (f *fakeSource) Stats(context.Context, string) (model.StatsSummary, error) {
	return model.StatsSummary{TotalCampaigns: model.Count(len(f.campaigns))}, nil
}

func (f *fakeSource) Campaigns(context.Context, string) ([]model.Campaign, error) {
	return f.campaigns, nil
}

func (f *fakeSource) Contacts(context.Context, string) ([]model.Contact, error) {
	return f.contacts, nil
}

type fakeBackend struct {
	mu       sync.Mutex
	archived []string
}

func (b *fakeBackend) Sync(context.Context, model.Entity, string) (string, error) {
	return "", nil
}

func (b *fakeBackend) Resync(context.Context, model.Entity, string) (string, error) {
	return "", nil
}

func (b *fakeBackend) Archive(_ context.Context, _ model.Entity, id string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.archived = append(b.archived, id)
	return "", nil
}

func sampleSource() *fakeSource {
	sent := model.NewTimestamp(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	return &fakeSource{
		campaigns: []model.Campaign{
			{ID: "1", SubjectLine: "Spring launch", Status: "sent", SendTime: sent, OpenRate: 40, ClickRate: 4},
			{ID: "2", SubjectLine: "Summer sale", Status: "sent", SendTime: sent, OpenRate: 30, ClickRate: 6},
			{ID: "3", SubjectLine: "Draft", Status: "save"},
		},
		contacts: []model.Contact{
			{ID: "10", EmailAddress: "ada@example.com", Status: "subscribed"},
			{ID: "11", EmailAddress: "bob@example.com", Status: "cleaned"},
		},
	}
}

func newTestModel(t *testing.T, perms model.Permissions) (*Model, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	m := NewModel(Options{
		Loader:    dashboard.NewLoader(sampleSource(), nil),
		Actions:   action.New(backend, action.WithPermissions(perms)),
		ExportDir: t.TempDir(),
		Now:       func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) },
	})
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	run(m, m.Init())
	return m, backend
}

// run executes cmd and feeds the messages back into the model until no
// commands remain. Spinner ticks are dropped so the loop terminates.
func run(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg, tea.QuitMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			run(m, c)
		}
	default:
		_, next := m.Update(msg)
		run(m, next)
	}
}

func press(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestInitialLoadPopulatesLists(t *testing.T) {
	m, _ := newTestModel(t, model.AllPermissions())

	assert.Equal(t, 0, m.loading)
	assert.Equal(t, []string{"1", "2", "3"}, m.campaignIDs)
	assert.Len(t, m.contactIDs, 2)
	assert.Contains(t, m.View(), "Campaigns: 3")
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	m, _ := newTestModel(t, model.AllPermissions())
	older := m.loader.Request(model.ResourceCampaigns, model.AllLeadTypes)
	newer := m.loader.Request(model.ResourceCampaigns, model.AllLeadTypes)

	m.Update(fetchMsg{res: dashboard.Result{Request: newer, Campaigns: []model.Campaign{{ID: "9"}}}})
	m.Update(fetchMsg{res: dashboard.Result{Request: older, Campaigns: sampleSource().campaigns}})

	assert.Equal(t, []string{"9"}, m.campaignIDs)
}

func TestFailedFetchKeepsDataAndShowsNotice(t *testing.T) {
	m, _ := newTestModel(t, model.AllPermissions())
	req := m.loader.Request(model.ResourceCampaigns, model.AllLeadTypes)

	m.Update(fetchMsg{res: dashboard.Result{Request: req, Err: errors.New("boom")}})

	assert.Len(t, m.snap.Campaigns, 3)
	assert.True(t, m.notice.IsError())
	assert.Equal(t, dashboard.LoadFailed, m.notice.Text)
}

func TestEmptyFilterResultMessage(t *testing.T) {
	m, _ := newTestModel(t, model.AllPermissions())
	press(m, "right")
	m.filters.Campaigns.Search = "nothing like this"
	m.refreshLists()

	view := m.View()
	assert.Contains(t, view, "No campaigns match the current filters.")
	assert.Contains(t, view, "No results")
}

func TestFilterFormAppliesSearch(t *testing.T) {
	m, _ := newTestModel(t, model.AllPermissions())
	press(m, "right")
	press(m, "/")
	require.Equal(t, dashboard.ModalFilter, m.modal.Kind)
	assert.Contains(t, m.filterSummary(model.EntityCampaigns), "Filters: none")

	press(m, "spring")
	press(m, "enter")

	assert.False(t, m.modal.Open())
	assert.Equal(t, "spring", m.filters.Campaigns.Search)
	assert.Equal(t, []string{"1"}, m.campaignIDs)
	summary := m.filterSummary(model.EntityCampaigns)
	assert.Contains(t, summary, `search="spring"`)
	assert.NotContains(t, summary, "Filters: none")
}

func TestFilterFormRejectsBadDate(t *testing.T) {
	m, _ := newTestModel(t, model.AllPermissions())
	press(m, "right")
	press(m, "/")
	press(m, "tab")
	press(m, "tab")
	press(m, "2024-13-01")
	press(m, "enter")

	assert.Equal(t, dashboard.ModalFilter, m.modal.Kind)
	assert.Contains(t, m.form.err, "invalid start date")
	assert.Contains(t, m.View(), "invalid start date")

	press(m, "esc")
	assert.False(t, m.modal.Open())
	assert.False(t, m.filters.Campaigns.SendTime.Set())
}

func TestCompareNeedsTwoToFourCampaigns(t *testing.T) {
	m, _ := newTestModel(t, model.AllPermissions())
	press(m, "right")
	press(m, " ")
	press(m, "c")

	assert.False(t, m.modal.Open())
	assert.Equal(t, "Select between 2 and 4 campaigns to compare", m.notice.Text)

	press(m, "down")
	press(m, " ")
	press(m, "c")

	require.Equal(t, dashboard.ModalCompare, m.modal.Kind)
	assert.Equal(t, []string{"1", "2"}, m.modal.IDs)
	assert.Contains(t, m.View(), bestMark)
}

func TestArchiveWithoutPermissionShowsNotice(t *testing.T) {
	perms := model.AllPermissions()
	perms.ArchiveCampaign = false
	m, backend := newTestModel(t, perms)
	press(m, "right")
	run(m, press(m, "a"))

	assert.False(t, m.modal.Open())
	assert.Equal(t, "You do not have permission to archive campaigns", m.notice.Text)
	assert.Empty(t, backend.archived)
}

func TestArchiveConfirmDispatchesSelection(t *testing.T) {
	m, backend := newTestModel(t, model.AllPermissions())
	press(m, "right")
	press(m, " ")
	press(m, "down")
	press(m, " ")
	press(m, "a")
	require.Equal(t, dashboard.ModalConfirmArchive, m.modal.Kind)

	run(m, press(m, "y"))

	assert.ElementsMatch(t, []string{"1", "2"}, backend.archived)
	assert.Equal(t, model.NoticeSuccess, m.notice.Kind)
	assert.Equal(t, "Archived 2 campaigns", m.notice.Text)
	assert.Empty(t, m.busy)
}

func TestArchiveConfirmCancel(t *testing.T) {
	m, backend := newTestModel(t, model.AllPermissions())
	press(m, "right")
	press(m, "a")
	require.Equal(t, dashboard.ModalConfirmArchive, m.modal.Kind)

	run(m, press(m, "n"))

	assert.False(t, m.modal.Open())
	assert.Empty(t, backend.archived)
}

func TestExportWritesFilteredCampaigns(t *testing.T) {
	m, _ := newTestModel(t, model.AllPermissions())
	press(m, "right")
	run(m, press(m, "e"))

	require.Equal(t, model.NoticeSuccess, m.notice.Kind, m.notice.Text)
	path := filepath.Join(m.exportDir, "campaigns-2024-03-15.csv")
	assert.Equal(t, "Exported 3 campaigns to "+path, m.notice.Text)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, len(strings.Split(string(data), "\n")))
}

func TestQuitIgnoresLaterMessages(t *testing.T) {
	m, _ := newTestModel(t, model.AllPermissions())
	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)

	req := m.loader.Request(model.ResourceCampaigns, model.AllLeadTypes)
	_, next := m.Update(fetchMsg{res: dashboard.Result{Request: req}})

	assert.Nil(t, next)
	assert.Len(t, m.snap.Campaigns, 3)
	assert.Empty(t, m.View())
}

func TestLeadTypeCycleRefetches(t *testing.T) {
	m, _ := newTestModel(t, model.AllPermissions())
	run(m, press(m, "t"))

	assert.Equal(t, "7", m.snap.LeadType)
	assert.Equal(t, "Buyers", m.snap.LeadTypeName())
	assert.Len(t, m.snap.Campaigns, 3)
	assert.Contains(t, m.View(), "Lead type: Buyers")
}

func TestContactDetailAddress(t *testing.T) {
	address := func(c model.Contact) string {
		for _, line := range contactDetail(c) {
			if strings.Contains(line, "Address") {
				return line
			}
		}
		return ""
	}

	assert.True(t, strings.HasSuffix(address(model.Contact{}), "  -"))

	c := model.Contact{}
	c.MergeFields.Address = model.Address{Country: "US"}
	assert.True(t, strings.HasSuffix(address(c), "  US"))

	c.MergeFields.Address = model.Address{Addr1: "1 Main St", City: "Troy"}
	assert.True(t, strings.HasSuffix(address(c), "  1 Main St, Troy"))
}

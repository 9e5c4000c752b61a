package dashui

import (
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/mcdash/internal/action"
	"github.com/verte-zerg/mcdash/internal/dashboard"
	"github.com/verte-zerg/mcdash/internal/export"
	"github.com/verte-zerg/mcdash/internal/model"
)

// fetch issues tagged requests for rs. Tags are taken now so a later fetch of
// the same resource always supersedes this one.
func (m *Model) fetch(rs ...model.Resource) tea.Cmd {
	if m.loader == nil || len(rs) == 0 {
		return nil
	}
	ctx := m.ctx
	loader := m.loader
	cmds := make([]tea.Cmd, 0, len(rs))
	for _, req := range loader.Requests(m.snap.LeadType, rs...) {
		m.loading++
		cmds = append(cmds, func() tea.Msg {
			return fetchMsg{res: loader.Run(ctx, req)}
		})
	}
	return tea.Batch(cmds...)
}

func (m *Model) reload() tea.Cmd {
	m.setNotice(model.NoticeInfo, "Reloading %s", m.snap.LeadTypeName())
	return m.fetch(model.ResourceConfigs, model.ResourceStats, model.ResourceCampaigns, model.ResourceContacts)
}

// leadTypeOptions lists "all" followed by every configured lead type.
func (m *Model) leadTypeOptions() []string {
	opts := []string{model.AllLeadTypes}
	for _, cfg := range m.snap.Configs {
		if id := cfg.LeadTypeID.String(); id != "" {
			opts = append(opts, id)
		}
	}
	return opts
}

func (m *Model) cycleLeadType() tea.Cmd {
	opts := m.leadTypeOptions()
	next := opts[0]
	for i, id := range opts {
		if id == m.snap.LeadType {
			next = opts[(i+1)%len(opts)]
			break
		}
	}
	if next == m.snap.LeadType {
		return nil
	}
	configs := m.snap.Configs
	m.snap = dashboard.NewSnapshot(next)
	m.snap.Configs = configs
	m.snap.Loaded[model.ResourceConfigs] = len(configs) > 0
	m.selection = dashboard.SelectionState{}
	m.filters.CampaignPage = 1
	m.filters.ContactPage = 1
	m.refreshLists()
	m.renderOverview()
	m.setNotice(model.NoticeInfo, "Lead type: %s", m.snap.LeadTypeName())
	return m.fetch(model.ResourceStats, model.ResourceCampaigns, model.ResourceContacts)
}

func (m *Model) applyFetch(res dashboard.Result) {
	if m.loading > 0 {
		m.loading--
	}
	var seq *dashboard.Sequencer
	if m.loader != nil {
		seq = m.loader.Sequencer()
	}
	notice, applied := m.snap.Apply(res, seq)
	if notice.Text != "" {
		m.notice = notice
	}
	if !applied {
		return
	}
	m.refreshLists()
	m.renderOverview()
}

func (m *Model) permitted(perm, what string) bool {
	if m.perms.Allows(perm) {
		return true
	}
	m.setNotice(model.NoticeError, "You do not have permission to %s", what)
	return false
}

// dispatch runs fn unless an action with the same key is already in flight.
func (m *Model) dispatch(key string, fn func() (action.Outcome, error)) tea.Cmd {
	if m.actions == nil {
		return nil
	}
	if m.busy[key] {
		m.setNotice(model.NoticeInfo, "Still working on the previous request")
		return nil
	}
	m.busy[key] = true
	return func() tea.Msg {
		out, err := fn()
		return actionMsg{key: key, out: out, err: err}
	}
}

func (m *Model) startSync(entity model.Entity) tea.Cmd {
	if !m.permitted(model.SyncPermission(entity), "sync "+string(entity)) {
		return nil
	}
	ctx, actions, leadType := m.ctx, m.actions, m.snap.LeadType
	m.setNotice(model.NoticeInfo, "Syncing %s for %s", entity, m.snap.LeadTypeName())
	return m.dispatch(action.ActionSync+":"+string(entity), func() (action.Outcome, error) {
		return actions.Sync(ctx, entity, leadType)
	})
}

func (m *Model) startResync(entity model.Entity) tea.Cmd {
	if !m.permitted(model.SyncPermission(entity), "resync "+string(entity)) {
		return nil
	}
	ids := m.targets(entity)
	if len(ids) == 0 {
		m.setNotice(model.NoticeInfo, "Nothing to resync")
		return nil
	}
	ctx, actions := m.ctx, m.actions
	m.setNotice(model.NoticeInfo, "Resyncing %d %s", len(ids), entity)
	return m.dispatch(action.ActionResync+":"+string(entity), func() (action.Outcome, error) {
		return actions.Resync(ctx, entity, ids...)
	})
}

func (m *Model) confirmArchive(entity model.Entity) {
	if !m.permitted(model.ArchivePermission(entity), "archive "+string(entity)) {
		return
	}
	ids := m.targets(entity)
	if len(ids) == 0 {
		m.setNotice(model.NoticeInfo, "Nothing to archive")
		return
	}
	m.modal = dashboard.ConfirmArchiveModal(entity, ids)
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		entity, ids := m.modal.Entity, m.modal.IDs
		m.modal = dashboard.ModalState{}
		ctx, actions := m.ctx, m.actions
		m.setNotice(model.NoticeInfo, "Archiving %d %s", len(ids), entity)
		return m, m.dispatch(action.ActionArchive+":"+string(entity), func() (action.Outcome, error) {
			return actions.Archive(ctx, entity, ids...)
		})
	case "n", "esc", "q":
		m.modal = dashboard.ModalState{}
	}
	return m, nil
}

func (m *Model) applyAction(msg actionMsg) tea.Cmd {
	delete(m.busy, msg.key)
	switch {
	case msg.out.Notice.Text != "":
		m.notice = msg.out.Notice
	case msg.err != nil:
		m.setNotice(model.NoticeError, "%s", msg.err.Error())
	}
	if msg.err != nil {
		if !errors.Is(msg.err, action.ErrPermissionDenied) {
			m.log.Warn("dashboard action failed", slog.String("action", msg.key), slog.String("err", msg.err.Error()))
		}
		return nil
	}
	return m.fetch(msg.out.Refresh...)
}

func (m *Model) startExport(entity model.Entity) tea.Cmd {
	if !m.permitted(model.PermExportCSV, "export "+string(entity)) {
		return nil
	}
	var content string
	var count int
	if entity == model.EntityContacts {
		list := m.filters.FilteredContacts(m.snap.Contacts)
		content, count = export.Contacts(list), len(list)
	} else {
		list := m.filters.FilteredCampaigns(m.snap.Campaigns)
		content, count = export.Campaigns(list), len(list)
	}
	if count == 0 {
		m.setNotice(model.NoticeInfo, "No %s to export", entity)
		return nil
	}
	dir, day := m.exportDir, m.now()
	return func() tea.Msg {
		path, err := export.WriteFile(dir, entity, day, content)
		return exportMsg{entity: entity, count: count, path: path, err: err}
	}
}

func (m *Model) applyExport(msg exportMsg) {
	if msg.err != nil {
		m.log.Error("export failed", slog.String("entity", string(msg.entity)), slog.String("err", msg.err.Error()))
		m.setNotice(model.NoticeError, "Failed to export %s", msg.entity)
		return
	}
	m.setNotice(model.NoticeSuccess, "Exported %d %s to %s", msg.count, msg.entity, msg.path)
}

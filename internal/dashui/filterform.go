package dashui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mcdash/internal/dashboard"
	"github.com/verte-zerg/mcdash/internal/model"
	"github.com/verte-zerg/mcdash/internal/pipeline"
)

const (
	fieldSearch = iota
	fieldStatus
	fieldFrom
	fieldTo
	fieldMinFirst
	fieldMinSecond
)

type filterForm struct {
	entity model.Entity
	inputs []textinput.Model
	index  int
	err    string
	width  int
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func newCampaignForm(f pipeline.CampaignFilter) filterForm {
	inputs := []textinput.Model{
		newFilterInput("Search: "),
		newFilterInput("Status: "),
		newFilterInput("Sent from (YYYY-MM-DD): "),
		newFilterInput("Sent to (YYYY-MM-DD): "),
		newFilterInput("Min open rate %: "),
		newFilterInput("Min click rate %: "),
	}
	inputs[fieldStatus].Placeholder = "all, " + strings.Join(model.CampaignStatuses, ", ")
	inputs[fieldSearch].SetValue(f.Search)
	inputs[fieldStatus].SetValue(f.Status)
	inputs[fieldFrom].SetValue(dayValue(f.SendTime.From))
	inputs[fieldTo].SetValue(dayValue(f.SendTime.To))
	inputs[fieldMinFirst].SetValue(floatValue(f.MinOpenRate))
	inputs[fieldMinSecond].SetValue(floatValue(f.MinClickRate))
	return filterForm{entity: model.EntityCampaigns, inputs: inputs}
}

func newContactForm(f pipeline.ContactFilter) filterForm {
	inputs := []textinput.Model{
		newFilterInput("Search: "),
		newFilterInput("Status: "),
		newFilterInput("Synced from (YYYY-MM-DD): "),
		newFilterInput("Synced to (YYYY-MM-DD): "),
		newFilterInput("Min rating (0-5): "),
	}
	inputs[fieldStatus].Placeholder = "all, " + strings.Join(model.ContactStatuses, ", ")
	inputs[fieldSearch].SetValue(f.Search)
	inputs[fieldStatus].SetValue(f.Status)
	inputs[fieldFrom].SetValue(dayValue(f.LastSynced.From))
	inputs[fieldTo].SetValue(dayValue(f.LastSynced.To))
	if f.MinRating > 0 {
		inputs[fieldMinFirst].SetValue(strconv.FormatInt(f.MinRating, 10))
	}
	return filterForm{entity: model.EntityContacts, inputs: inputs}
}

func dayValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func floatValue(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (f *filterForm) setWidth(width int) {
	f.width = width
	for i := range f.inputs {
		promptWidth := lipgloss.Width(f.inputs[i].Prompt)
		f.inputs[i].Width = max(10, width-promptWidth-1)
	}
}

func (f *filterForm) focus(idx int) tea.Cmd {
	count := len(f.inputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	f.index = idx
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.index {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *filterForm) value(i int) string {
	if i >= len(f.inputs) {
		return ""
	}
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *filterForm) view() []string {
	lines := make([]string, 0, len(f.inputs)+3)
	for _, input := range f.inputs {
		lines = append(lines, input.View())
	}
	if f.err != "" {
		lines = append(lines, "", errorStyle.Render(f.err))
	}
	return append(lines, "", headerStyle.Render("tab/shift+tab: next field  enter: apply  ctrl+r: reset  esc: cancel"))
}

func (f *filterForm) campaignFilter() (pipeline.CampaignFilter, error) {
	status, err := parseStatus(f.value(fieldStatus), model.CampaignStatuses)
	if err != nil {
		return pipeline.CampaignFilter{}, err
	}
	rng, err := pipeline.ParseDateRange(f.value(fieldFrom), f.value(fieldTo), time.Local)
	if err != nil {
		return pipeline.CampaignFilter{}, err
	}
	minOpen, err := parsePercent(f.value(fieldMinFirst), "open rate")
	if err != nil {
		return pipeline.CampaignFilter{}, err
	}
	minClick, err := parsePercent(f.value(fieldMinSecond), "click rate")
	if err != nil {
		return pipeline.CampaignFilter{}, err
	}
	return pipeline.CampaignFilter{
		Search:       f.value(fieldSearch),
		Status:       status,
		SendTime:     rng,
		MinOpenRate:  minOpen,
		MinClickRate: minClick,
	}, nil
}

func (f *filterForm) contactFilter() (pipeline.ContactFilter, error) {
	status, err := parseStatus(f.value(fieldStatus), model.ContactStatuses)
	if err != nil {
		return pipeline.ContactFilter{}, err
	}
	rng, err := pipeline.ParseDateRange(f.value(fieldFrom), f.value(fieldTo), time.Local)
	if err != nil {
		return pipeline.ContactFilter{}, err
	}
	var rating int64
	if raw := f.value(fieldMinFirst); raw != "" {
		rating, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || rating < 0 || rating > 5 {
			return pipeline.ContactFilter{}, fmt.Errorf("invalid min rating (use 0-5)")
		}
	}
	return pipeline.ContactFilter{
		Search:     f.value(fieldSearch),
		Status:     status,
		LastSynced: rng,
		MinRating:  rating,
	}, nil
}

func parseStatus(raw string, known []string) (string, error) {
	status := strings.ToLower(raw)
	if status == "" || status == pipeline.StatusAll {
		return "", nil
	}
	for _, s := range known {
		if s == status {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid status %q (use all, %s)", raw, strings.Join(known, ", "))
}

func parsePercent(raw, name string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil || v < 0 || v > 100 {
		return 0, fmt.Errorf("invalid min %s (use 0-100)", name)
	}
	return v, nil
}

func (m *Model) openFilterForm(entity model.Entity) tea.Cmd {
	if entity == model.EntityContacts {
		m.form = newContactForm(m.filters.Contacts)
	} else {
		m.form = newCampaignForm(m.filters.Campaigns)
	}
	m.form.setWidth(modalInnerWidth(max(m.width, 40)))
	m.modal = dashboard.ModalState{Kind: dashboard.ModalFilter, Entity: entity}
	return m.form.focus(0)
}

func (m *Model) updateFilterForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = dashboard.ModalState{}
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilterForm(); err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.modal = dashboard.ModalState{}
		m.refreshLists()
		return m, nil
	case tea.KeyCtrlR:
		for i := range m.form.inputs {
			m.form.inputs[i].SetValue("")
		}
		m.form.err = ""
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.form.focus(m.form.index + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.form.focus(m.form.index - 1)
	}
	var cmd tea.Cmd
	m.form.inputs[m.form.index], cmd = m.form.inputs[m.form.index].Update(msg)
	return m, cmd
}

func (m *Model) applyFilterForm() error {
	if m.form.entity == model.EntityContacts {
		f, err := m.form.contactFilter()
		if err != nil {
			return err
		}
		m.filters.SetContactFilter(f)
		return nil
	}
	f, err := m.form.campaignFilter()
	if err != nil {
		return err
	}
	m.filters.SetCampaignFilter(f)
	return nil
}

package dashboard

import (
	"github.com/verte-zerg/mcdash/internal/model"
	"github.com/verte-zerg/mcdash/internal/pipeline"
)

// Default sort orders.
var (
	DefaultCampaignSort = pipeline.SortState{Field: "send_time", Desc: true}
	DefaultContactSort  = pipeline.SortState{Field: "last_synced_at", Desc: true}
)

// FilterState groups the filter, sort and page position of both lists.
type FilterState struct {
	Campaigns    pipeline.CampaignFilter
	Contacts     pipeline.ContactFilter
	CampaignSort pipeline.SortState
	ContactSort  pipeline.SortState
	CampaignPage int
	ContactPage  int
	PageSize     int
}

// NewFilterState returns an unfiltered state on page 1.
func NewFilterState(pageSize int) FilterState {
	if pageSize <= 0 {
		pageSize = pipeline.DefaultPageSize
	}
	return FilterState{
		CampaignSort: DefaultCampaignSort,
		ContactSort:  DefaultContactSort,
		CampaignPage: 1,
		ContactPage:  1,
		PageSize:     pageSize,
	}
}

// SetCampaignFilter replaces the campaign filter and returns to page 1.
func (f *FilterState) SetCampaignFilter(cf pipeline.CampaignFilter) {
	f.Campaigns = cf
	f.CampaignPage = 1
}

// SetContactFilter replaces the contact filter and returns to page 1.
func (f *FilterState) SetContactFilter(cf pipeline.ContactFilter) {
	f.Contacts = cf
	f.ContactPage = 1
}

// Sort returns the sort state of entity.
func (f *FilterState) Sort(entity model.Entity) pipeline.SortState {
	if entity == model.EntityContacts {
		return f.ContactSort
	}
	return f.CampaignSort
}

// SortBy applies a header click on field for entity.
func (f *FilterState) SortBy(entity model.Entity, field string) {
	if entity == model.EntityContacts {
		f.ContactSort = f.ContactSort.Toggle(field)
		f.ContactPage = 1
		return
	}
	f.CampaignSort = f.CampaignSort.Toggle(field)
	f.CampaignPage = 1
}

// FlipSort reverses the direction of the active sort of entity.
func (f *FilterState) FlipSort(entity model.Entity) {
	s := f.Sort(entity)
	f.SortBy(entity, s.Field)
}

// CycleSort moves the sort of entity to the next offered field, descending.
func (f *FilterState) CycleSort(entity model.Entity) {
	fields := pipeline.CampaignSortFields
	if entity == model.EntityContacts {
		fields = pipeline.ContactSortFields
	}
	current := f.Sort(entity).Field
	next := fields[0]
	for i, field := range fields {
		if field == current {
			next = fields[(i+1)%len(fields)]
			break
		}
	}
	f.SortBy(entity, next)
}

// Page returns the requested page number of entity.
func (f *FilterState) Page(entity model.Entity) int {
	if entity == model.EntityContacts {
		return f.ContactPage
	}
	return f.CampaignPage
}

// SetPage moves entity to page, clamped to [1, pages].
func (f *FilterState) SetPage(entity model.Entity, page, pages int) {
	page = pipeline.ClampPage(page, pages)
	if entity == model.EntityContacts {
		f.ContactPage = page
		return
	}
	f.CampaignPage = page
}

// CampaignView returns the visible page of campaigns.
func (f *FilterState) CampaignView(list []model.Campaign) pipeline.Page[model.Campaign] {
	page := pipeline.CampaignView(list, f.Campaigns, f.CampaignSort, f.CampaignPage, f.PageSize)
	f.CampaignPage = page.Number
	return page
}

// ContactView returns the visible page of contacts.
func (f *FilterState) ContactView(list []model.Contact) pipeline.Page[model.Contact] {
	page := pipeline.ContactView(list, f.Contacts, f.ContactSort, f.ContactPage, f.PageSize)
	f.ContactPage = page.Number
	return page
}

// FilteredCampaigns returns every campaign passing the filter, sorted.
func (f *FilterState) FilteredCampaigns(list []model.Campaign) []model.Campaign {
	return pipeline.SortCampaigns(pipeline.FilterCampaigns(list, f.Campaigns), f.CampaignSort)
}

// FilteredContacts returns every contact passing the filter, sorted.
func (f *FilterState) FilteredContacts(list []model.Contact) []model.Contact {
	return pipeline.SortContacts(pipeline.FilterContacts(list, f.Contacts), f.ContactSort)
}

// Selection is an ordered set of record ids.
type Selection struct {
	ids []string
}

// Toggle adds id, or removes it when already present.
func (s *Selection) Toggle(id string) {
	for i, cur := range s.ids {
		if cur == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
	s.ids = append(s.ids, id)
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	for _, cur := range s.ids {
		if cur == id {
			return true
		}
	}
	return false
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
}

// Prune drops every id not in visible and returns how many were dropped.
func (s *Selection) Prune(visible []string) int {
	keep := make(map[string]struct{}, len(visible))
	for _, id := range visible {
		keep[id] = struct{}{}
	}
	kept := s.ids[:0]
	for _, id := range s.ids {
		if _, ok := keep[id]; ok {
			kept = append(kept, id)
		}
	}
	dropped := len(s.ids) - len(kept)
	s.ids = kept
	return dropped
}

// SelectionState holds the selected campaigns and contacts. Selected ids are
// always a subset of the current filtered list.
type SelectionState struct {
	Campaigns Selection
	Contacts  Selection
}

// For returns the selection of entity.
func (s *SelectionState) For(entity model.Entity) *Selection {
	if entity == model.EntityContacts {
		return &s.Contacts
	}
	return &s.Campaigns
}

// PruneCampaigns keeps only campaigns present in filtered.
func (s *SelectionState) PruneCampaigns(filtered []model.Campaign) int {
	ids := make([]string, len(filtered))
	for i, c := range filtered {
		ids[i] = c.ID.String()
	}
	return s.Campaigns.Prune(ids)
}

// PruneContacts keeps only contacts present in filtered.
func (s *SelectionState) PruneContacts(filtered []model.Contact) int {
	ids := make([]string, len(filtered))
	for i, c := range filtered {
		ids[i] = c.ID.String()
	}
	return s.Contacts.Prune(ids)
}

// ModalKind identifies the overlay currently shown.
type ModalKind int

// Overlays.
const (
	ModalNone ModalKind = iota
	ModalCampaignDetail
	ModalContactDetail
	ModalCompare
	ModalConfirmArchive
	ModalFilter
	ModalHelp
)

// ModalState is the open overlay and the records it concerns.
type ModalState struct {
	Kind   ModalKind
	Entity model.Entity
	IDs    []string
}

// Open reports whether an overlay is shown.
func (m ModalState) Open() bool {
	return m.Kind != ModalNone
}

// DetailModal opens the detail view of a single record.
func DetailModal(entity model.Entity, id string) ModalState {
	kind := ModalCampaignDetail
	if entity == model.EntityContacts {
		kind = ModalContactDetail
	}
	return ModalState{Kind: kind, Entity: entity, IDs: []string{id}}
}

// CompareModal opens the comparison of ids. It fails outside the 2-4 range.
func CompareModal(ids []string) (ModalState, error) {
	if err := pipeline.ValidateCompareSelection(len(ids)); err != nil {
		return ModalState{}, err
	}
	return ModalState{Kind: ModalCompare, Entity: model.EntityCampaigns, IDs: append([]string(nil), ids...)}, nil
}

// ConfirmArchiveModal asks before archiving ids.
func ConfirmArchiveModal(entity model.Entity, ids []string) ModalState {
	return ModalState{Kind: ModalConfirmArchive, Entity: entity, IDs: append([]string(nil), ids...)}
}

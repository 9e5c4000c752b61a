package dashboard

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mcdash/internal/model"
	"github.com/verte-zerg/mcdash/internal/pipeline"
)

type fakeSource struct {
	mu        sync.Mutex
	leadTypes []string
	campaigns []model.Campaign
	contacts  []model.Contact
	err       error
}

func (f *fakeSource) Configs(context.Context) ([]model.LeadTypeConfig, error) {
	return []model.LeadTypeConfig{{LeadTypeID: "1", LeadTypeName: "Solar"}}, nil
}

func (f *fakeSource) Stats(_ context.Context, leadType string) (model.StatsSummary, error) {
	f.mu.Lock()
	f.leadTypes = append(f.leadTypes, leadType)
	f.mu.Unlock()
	return model.StatsSummary{TotalCampaigns: model.Count(len(f.campaigns))}, nil
}

func (f *fakeSource) Campaigns(context.Context, string) ([]model.Campaign, error) {
	return f.campaigns, f.err
}

func (f *fakeSource) Contacts(context.Context, string) ([]model.Contact, error) {
	return f.contacts, nil
}

func campaigns(n int) []model.Campaign {
	out := make([]model.Campaign, n)
	for i := range out {
		out[i] = model.Campaign{ID: model.ID(strconv.Itoa(i + 1)), EmailsSent: model.Count(i)}
	}
	return out
}

func TestSequencerLastFetchWins(t *testing.T) {
	seq := NewSequencer()
	first := seq.Next(model.ResourceCampaigns)
	second := seq.Next(model.ResourceCampaigns)
	other := seq.Next(model.ResourceContacts)

	assert.False(t, seq.Current(model.ResourceCampaigns, first))
	assert.True(t, seq.Current(model.ResourceCampaigns, second))
	assert.True(t, seq.Current(model.ResourceContacts, other))
	assert.False(t, seq.Current(model.ResourceStats, 0))
}

func TestApplyDiscardsStaleResponse(t *testing.T) {
	src := &fakeSource{campaigns: campaigns(3)}
	loader := NewLoader(src, nil)
	snap := NewSnapshot(model.AllLeadTypes)

	slow := loader.Request(model.ResourceCampaigns, model.AllLeadTypes)
	fast := loader.Request(model.ResourceCampaigns, model.AllLeadTypes)

	fastRes := loader.Run(context.Background(), fast)
	_, applied := snap.Apply(fastRes, loader.Sequencer())
	require.True(t, applied)

	slowRes := loader.Run(context.Background(), slow)
	slowRes.Campaigns = nil
	_, applied = snap.Apply(slowRes, loader.Sequencer())
	assert.False(t, applied)
	assert.Len(t, snap.Campaigns, 3)
}

func TestApplyIgnoresOtherLeadType(t *testing.T) {
	loader := NewLoader(&fakeSource{campaigns: campaigns(2)}, nil)
	snap := NewSnapshot("7")
	res := loader.Run(context.Background(), loader.Request(model.ResourceCampaigns, "3"))
	_, applied := snap.Apply(res, loader.Sequencer())
	assert.False(t, applied)
	assert.Empty(t, snap.Campaigns)
}

func TestApplyFailureKeepsState(t *testing.T) {
	src := &fakeSource{campaigns: campaigns(2)}
	loader := NewLoader(src, nil)
	snap := NewSnapshot("")

	_, applied := snap.Apply(loader.Run(context.Background(), loader.Request(model.ResourceCampaigns, "")), loader.Sequencer())
	require.True(t, applied)

	src.err = errors.New("boom")
	notice, applied := snap.Apply(loader.Run(context.Background(), loader.Request(model.ResourceCampaigns, "")), loader.Sequencer())
	assert.False(t, applied)
	assert.True(t, notice.IsError())
	assert.Equal(t, LoadFailed, notice.Text)
	assert.Len(t, snap.Campaigns, 2)
}

func TestLoadFetchesConcurrently(t *testing.T) {
	src := &fakeSource{campaigns: campaigns(4), contacts: []model.Contact{{ID: "c1"}}}
	loader := NewLoader(src, nil)

	snap, err := loader.Load(context.Background(), "1",
		model.ResourceConfigs, model.ResourceStats, model.ResourceCampaigns, model.ResourceContacts)
	require.NoError(t, err)
	assert.Len(t, snap.Campaigns, 4)
	assert.Len(t, snap.Contacts, 1)
	assert.Equal(t, model.Count(4), snap.Stats.TotalCampaigns)
	assert.Equal(t, "Solar", snap.LeadTypeName())
	assert.Equal(t, []string{"1"}, src.leadTypes)
}

func TestLoadReturnsFirstError(t *testing.T) {
	loader := NewLoader(&fakeSource{err: errors.New("down")}, nil)
	_, err := loader.Load(context.Background(), "", model.ResourceCampaigns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
}

func TestFilterStateResetsPage(t *testing.T) {
	f := NewFilterState(10)
	f.SetPage(model.EntityCampaigns, 3, 5)
	assert.Equal(t, 3, f.Page(model.EntityCampaigns))

	f.SetCampaignFilter(pipeline.CampaignFilter{Search: "x"})
	assert.Equal(t, 1, f.CampaignPage)

	f.SetPage(model.EntityCampaigns, 9, 5)
	assert.Equal(t, 5, f.CampaignPage)
}

func TestFilterStateSortCycleAndFlip(t *testing.T) {
	f := NewFilterState(0)
	assert.Equal(t, pipeline.DefaultPageSize, f.PageSize)
	assert.Equal(t, "send_time", f.CampaignSort.Field)

	f.CycleSort(model.EntityCampaigns)
	assert.Equal(t, pipeline.SortState{Field: "subject_line", Desc: true}, f.CampaignSort)

	f.FlipSort(model.EntityCampaigns)
	assert.Equal(t, pipeline.SortState{Field: "subject_line", Desc: false}, f.CampaignSort)

	f.SortBy(model.EntityContacts, "member_rating")
	assert.Equal(t, pipeline.SortState{Field: "member_rating", Desc: true}, f.ContactSort)
}

func TestFilterStateViewClampsPage(t *testing.T) {
	f := NewFilterState(25)
	f.ContactPage = 10
	list := make([]model.Contact, 57)
	page := f.ContactView(list)
	assert.Equal(t, 3, page.Number)
	assert.Len(t, page.Items, 7)
	assert.Equal(t, 3, f.ContactPage)
}

func TestSelectionPruneKeepsVisibleOnly(t *testing.T) {
	var s SelectionState
	for _, id := range []string{"1", "2", "3"} {
		s.Campaigns.Toggle(id)
	}
	s.Campaigns.Toggle("2")
	assert.Equal(t, []string{"1", "3"}, s.Campaigns.IDs())

	dropped := s.PruneCampaigns([]model.Campaign{{ID: "3"}, {ID: "4"}})
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []string{"3"}, s.For(model.EntityCampaigns).IDs())
	assert.True(t, s.Campaigns.Has("3"))
	assert.Equal(t, 0, s.Contacts.Len())
}

func TestCompareModalEnforcesRange(t *testing.T) {
	_, err := CompareModal([]string{"1"})
	require.ErrorIs(t, err, pipeline.ErrCompareSelection)
	_, err = CompareModal([]string{"1", "2", "3", "4", "5"})
	require.ErrorIs(t, err, pipeline.ErrCompareSelection)

	m, err := CompareModal([]string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, ModalCompare, m.Kind)
	assert.True(t, m.Open())

	d := DetailModal(model.EntityContacts, "9")
	assert.Equal(t, ModalContactDetail, d.Kind)
	assert.False(t, ModalState{}.Open())
}

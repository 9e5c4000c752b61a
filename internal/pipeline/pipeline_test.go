package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mcdash/internal/model"
)

func ts(t *testing.T, s string) model.Timestamp {
	t.Helper()
	parsed, ok := model.ParseTimestamp(s)
	require.True(t, ok, "parse %s", s)
	return parsed
}

func sampleCampaigns(t *testing.T) []model.Campaign {
	return []model.Campaign{
		{ID: "1", SubjectLine: "Spring Sale", Title: "spring", Status: model.CampaignSent, OpenRate: 22.5, ClickRate: 3.1, EmailsSent: 1000, SendTime: ts(t, "2024-03-15T10:00:00Z")},
		{ID: "2", SubjectLine: "Newsletter", Title: "April news", Status: model.CampaignSent, OpenRate: 40, ClickRate: 8, EmailsSent: 500, SendTime: ts(t, "2024-04-02T09:00:00Z")},
		{ID: "3", SubjectLine: "Draft promo", Title: "promo", Status: model.CampaignSave, OpenRate: 0, ClickRate: 0},
		{ID: "4", SubjectLine: "Winter", Title: "SALE winter", Status: model.CampaignPaused, OpenRate: 12, ClickRate: 1, EmailsSent: 800, SendTime: ts(t, "2024-01-10T12:00:00Z")},
	}
}

func ids(list []model.Campaign) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID.String()
	}
	return out
}

func TestFilterCampaignsSearchMatchesSubjectOrTitle(t *testing.T) {
	got := FilterCampaigns(sampleCampaigns(t), CampaignFilter{Search: "  sale "})
	assert.Equal(t, []string{"1", "4"}, ids(got))
}

func TestFilterCampaignsStatusWithNoMatches(t *testing.T) {
	got := FilterCampaigns(sampleCampaigns(t), CampaignFilter{Status: model.CampaignSending})
	assert.Empty(t, got)

	all := FilterCampaigns(sampleCampaigns(t), CampaignFilter{Status: StatusAll})
	assert.Len(t, all, 4)
}

func TestFilterCampaignsMinimumRates(t *testing.T) {
	got := FilterCampaigns(sampleCampaigns(t), CampaignFilter{MinOpenRate: 20, MinClickRate: 5})
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestDateRangeInclusiveEndOfDay(t *testing.T) {
	c := []model.Campaign{{ID: "x", SendTime: ts(t, "2024-03-15T10:00:00Z")}}

	r, err := ParseDateRange("2024-03-01", "2024-03-15", time.UTC)
	require.NoError(t, err)
	assert.Len(t, FilterCampaigns(c, CampaignFilter{SendTime: r}), 1)

	r, err = ParseDateRange("2024-03-01", "2024-03-14", time.UTC)
	require.NoError(t, err)
	assert.Empty(t, FilterCampaigns(c, CampaignFilter{SendTime: r}))
}

func TestDateRangeRejectsMissingDates(t *testing.T) {
	r, err := ParseDateRange("2024-01-01", "", time.UTC)
	require.NoError(t, err)
	got := FilterCampaigns(sampleCampaigns(t), CampaignFilter{SendTime: r})
	assert.Equal(t, []string{"1", "2", "4"}, ids(got))

	_, err = ParseDateRange("03/01/2024", "", time.UTC)
	assert.Error(t, err)
}

func TestFilterContactsSearchUsesDerivedAddress(t *testing.T) {
	contacts := []model.Contact{
		{ID: "1", EmailAddress: "ada@example.com", MergeFields: model.ResolveMergeFields([]byte(`{"ADDRESS": {"addr1": "1 Main St", "city": "Troy"}}`))},
		{ID: "2", EmailAddress: "bob@example.com", MergeFields: model.ResolveMergeFields([]byte(`{"CITY": "Albany", "ADDRESS": {"city": "Troy"}}`))},
		{ID: "3", EmailAddress: "cy@example.com", FirstName: "Troyan"},
	}
	got := FilterContacts(contacts, ContactFilter{Search: "troy"})
	require.Len(t, got, 2)
	assert.Equal(t, model.ID("1"), got[0].ID)
	assert.Equal(t, model.ID("3"), got[1].ID)

	got = FilterContacts(contacts, ContactFilter{Search: "main st"})
	require.Len(t, got, 1)
	assert.Equal(t, model.ID("1"), got[0].ID)
}

func TestFilterActive(t *testing.T) {
	assert.False(t, CampaignFilter{}.Active())
	assert.False(t, CampaignFilter{Status: StatusAll, Search: "  "}.Active())
	assert.True(t, CampaignFilter{MinClickRate: 1}.Active())
	assert.True(t, CampaignFilter{Status: model.CampaignSent}.Active())

	assert.False(t, ContactFilter{}.Active())
	assert.True(t, ContactFilter{MinRating: 2}.Active())
	assert.True(t, ContactFilter{Search: "troy"}.Active())
}

func TestFilterContactsRatingAndStatus(t *testing.T) {
	contacts := []model.Contact{
		{ID: "1", Status: model.ContactSubscribed, MemberRating: 4},
		{ID: "2", Status: model.ContactSubscribed, MemberRating: 2},
		{ID: "3", Status: model.ContactCleaned, MemberRating: 5},
	}
	got := FilterContacts(contacts, ContactFilter{Status: model.ContactSubscribed, MinRating: 3})
	require.Len(t, got, 1)
	assert.Equal(t, model.ID("1"), got[0].ID)
}

func TestSortNumericReverseEqualsDescending(t *testing.T) {
	list := sampleCampaigns(t)
	for _, field := range []string{"open_rate", "click_rate", "emails_sent"} {
		asc := SortCampaigns(list, SortState{Field: field})
		desc := SortCampaigns(list, SortState{Field: field, Desc: true})
		reversed := make([]model.Campaign, len(asc))
		for i := range asc {
			reversed[len(asc)-1-i] = asc[i]
		}
		assert.Equal(t, ids(desc), ids(reversed), field)
	}
}

func TestSortDatesSinkMissingInBothDirections(t *testing.T) {
	list := sampleCampaigns(t)
	asc := SortCampaigns(list, SortState{Field: "send_time"})
	assert.Equal(t, []string{"4", "1", "2", "3"}, ids(asc))
	desc := SortCampaigns(list, SortState{Field: "send_time", Desc: true})
	assert.Equal(t, []string{"2", "1", "4", "3"}, ids(desc))
}

func TestSortIsStableOnTies(t *testing.T) {
	list := []model.Campaign{
		{ID: "a", Status: "sent"},
		{ID: "b", Status: "save"},
		{ID: "c", Status: "sent"},
		{ID: "d", Status: "save"},
	}
	got := SortCampaigns(list, SortState{Field: "status"})
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(got))
}

func TestSortEmptyStringSortsFirstAscending(t *testing.T) {
	list := []model.Campaign{
		{ID: "a", Title: "b"},
		{ID: "b", Title: "a"},
		{ID: "c", Title: ""},
	}
	asc := SortCampaigns(list, SortState{Field: "title"})
	assert.Equal(t, []string{"c", "b", "a"}, ids(asc))
	desc := SortCampaigns(list, SortState{Field: "title", Desc: true})
	assert.Equal(t, []string{"a", "b", "c"}, ids(desc))
}

func TestSortUnknownFieldKeepsOrder(t *testing.T) {
	list := sampleCampaigns(t)
	got := SortCampaigns(list, SortState{Field: "nope", Desc: true})
	assert.Equal(t, ids(list), ids(got))
}

func TestSortToggle(t *testing.T) {
	s := SortState{Field: "send_time", Desc: true}
	s = s.Toggle("send_time")
	assert.Equal(t, SortState{Field: "send_time", Desc: false}, s)
	s = s.Toggle("open_rate")
	assert.Equal(t, SortState{Field: "open_rate", Desc: true}, s)
}

func TestParseSortState(t *testing.T) {
	got, err := ParseSortState("open_rate", IsCampaignSortField)
	require.NoError(t, err)
	assert.Equal(t, SortState{Field: "open_rate", Desc: true}, got)

	got, err = ParseSortState("subject_line:asc", IsCampaignSortField)
	require.NoError(t, err)
	assert.Equal(t, SortState{Field: "subject_line"}, got)

	_, err = ParseSortState("shoe_size", IsCampaignSortField)
	assert.ErrorContains(t, err, "unknown sort field")
	_, err = ParseSortState("open_rate sideways", IsCampaignSortField)
	assert.ErrorContains(t, err, "invalid sort direction")
	_, err = ParseSortState("  ", nil)
	assert.Error(t, err)
}

func TestPaginate57Contacts(t *testing.T) {
	contacts := make([]model.Contact, 57)
	for i := range contacts {
		contacts[i].ID = model.ID(fmt.Sprint(i + 1))
	}
	page := Paginate(contacts, 3, 25)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 57, page.Total)
	require.Len(t, page.Items, 7)
	assert.Equal(t, model.ID("51"), page.Items[0].ID)
	assert.Equal(t, 51, page.First())
	assert.Equal(t, 57, page.Last())

	clamped := Paginate(contacts, 9, 25)
	assert.Equal(t, 3, clamped.Number)

	empty := Paginate([]model.Contact{}, 1, 25)
	assert.Equal(t, 0, empty.Pages)
	assert.Empty(t, empty.Items)
}

func TestPageNumbersCollapse(t *testing.T) {
	assert.Equal(t, []int{1, 0, 4, 5, 6, 0, 10}, PageNumbers(5, 10))
	assert.Equal(t, []int{1, 2, 0, 10}, PageNumbers(1, 10))
	assert.Equal(t, []int{1, 0, 9, 10}, PageNumbers(10, 10))
	assert.Equal(t, []int{1, 2, 3}, PageNumbers(2, 3))
	assert.Nil(t, PageNumbers(1, 0))
}

func TestCompareFlagsTiesAndSkipsZero(t *testing.T) {
	list := []model.Campaign{
		{EmailsSent: 100, OpenRate: 20, UniqueClicks: 0},
		{EmailsSent: 100, OpenRate: 35.5, UniqueClicks: 0},
		{EmailsSent: 50, OpenRate: 10, UniqueClicks: 0},
	}
	rows := Compare(list)
	require.Len(t, rows, len(CompareMetrics))

	byKey := map[string]MetricRow{}
	for _, row := range rows {
		byKey[row.Metric.Key] = row
	}
	assert.Equal(t, []bool{true, true, false}, byKey["emails_sent"].Best)
	assert.Equal(t, []bool{false, true, false}, byKey["open_rate"].Best)
	assert.Equal(t, []bool{false, false, false}, byKey["unique_clicks"].Best)
	assert.True(t, byKey["open_rate"].Metric.Rate)
}

func TestCompareSingleCampaign(t *testing.T) {
	rows := Compare([]model.Campaign{{EmailsSent: 3}})
	assert.Equal(t, []bool{true}, rows[0].Best)
}

func TestValidateCompareSelection(t *testing.T) {
	assert.ErrorIs(t, ValidateCompareSelection(1), ErrCompareSelection)
	assert.ErrorIs(t, ValidateCompareSelection(5), ErrCompareSelection)
	assert.NoError(t, ValidateCompareSelection(2))
	assert.NoError(t, ValidateCompareSelection(4))
}

func TestCampaignViewEmptyState(t *testing.T) {
	page := CampaignView(sampleCampaigns(t), CampaignFilter{Status: model.CampaignSchedule}, SortState{Field: "send_time", Desc: true}, 1, 25)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)
}

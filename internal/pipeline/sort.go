package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/mcdash/internal/model"
)

// SortState is the active sort field and direction.
type SortState struct {
	Field string
	Desc  bool
}

// Toggle applies a header click: the active field flips direction, any other
// field becomes active in descending order.
func (s SortState) Toggle(field string) SortState {
	if field == s.Field {
		return SortState{Field: field, Desc: !s.Desc}
	}
	return SortState{Field: field, Desc: true}
}

// String renders the state as "field asc|desc".
func (s SortState) String() string {
	if s.Field == "" {
		return "none"
	}
	if s.Desc {
		return s.Field + " desc"
	}
	return s.Field + " asc"
}

// ParseSortState reads "field", "field asc", "field desc" or the colon forms
// ("field:asc"). A bare field sorts descending. valid rejects unknown fields.
func ParseSortState(spec string, valid func(string) bool) (SortState, error) {
	spec = strings.TrimSpace(strings.ReplaceAll(spec, ":", " "))
	parts := strings.Fields(spec)
	if len(parts) == 0 || len(parts) > 2 {
		return SortState{}, fmt.Errorf("invalid sort %q (expected field [asc|desc])", spec)
	}
	if valid != nil && !valid(parts[0]) {
		return SortState{}, fmt.Errorf("unknown sort field %q", parts[0])
	}
	state := SortState{Field: parts[0], Desc: true}
	if len(parts) == 2 {
		switch strings.ToLower(parts[1]) {
		case "asc":
			state.Desc = false
		case "desc":
		default:
			return SortState{}, fmt.Errorf("invalid sort direction %q (expected asc or desc)", parts[1])
		}
	}
	return state, nil
}

type keyKind int

const (
	kindNumeric keyKind = iota
	kindDate
	kindString
)

type sortKey struct {
	num  float64
	str  string
	null bool
}

type sortField[T any] struct {
	kind  keyKind
	value func(T) sortKey
}

func numeric[T any](get func(T) float64) sortField[T] {
	return sortField[T]{kind: kindNumeric, value: func(v T) sortKey {
		return sortKey{num: get(v)}
	}}
}

func date[T any](get func(T) model.Timestamp) sortField[T] {
	return sortField[T]{kind: kindDate, value: func(v T) sortKey {
		ts := get(v)
		if !ts.Valid() {
			return sortKey{null: true}
		}
		return sortKey{num: float64(ts.UnixMilli())}
	}}
}

func text[T any](get func(T) string) sortField[T] {
	return sortField[T]{kind: kindString, value: func(v T) sortKey {
		return sortKey{str: get(v)}
	}}
}

var campaignFields = map[string]sortField[model.Campaign]{
	"emails_sent":              numeric(func(c model.Campaign) float64 { return float64(c.EmailsSent) }),
	"unique_opens":             numeric(func(c model.Campaign) float64 { return float64(c.UniqueOpens) }),
	"opens_total":              numeric(func(c model.Campaign) float64 { return float64(c.OpensTotal) }),
	"unique_clicks":            numeric(func(c model.Campaign) float64 { return float64(c.UniqueClicks) }),
	"clicks_total":             numeric(func(c model.Campaign) float64 { return float64(c.ClicksTotal) }),
	"unique_subscriber_clicks": numeric(func(c model.Campaign) float64 { return float64(c.UniqueSubscriberClicks) }),
	"unsubscribed":             numeric(func(c model.Campaign) float64 { return float64(c.Unsubscribed) }),
	"hard_bounces":             numeric(func(c model.Campaign) float64 { return float64(c.HardBounces) }),
	"soft_bounces":             numeric(func(c model.Campaign) float64 { return float64(c.SoftBounces) }),
	"abuse_reports":            numeric(func(c model.Campaign) float64 { return float64(c.AbuseReports) }),
	"open_rate":                numeric(func(c model.Campaign) float64 { return c.OpenRate.Float() }),
	"click_rate":               numeric(func(c model.Campaign) float64 { return c.ClickRate.Float() }),
	"unsubscribe_rate":         numeric(func(c model.Campaign) float64 { return c.UnsubscribeRate.Float() }),
	"delivery_rate":            numeric(func(c model.Campaign) float64 { return c.DeliveryRate.Float() }),
	"send_time":                date(func(c model.Campaign) model.Timestamp { return c.SendTime }),
	"created_at":               date(func(c model.Campaign) model.Timestamp { return c.CreatedAt }),
	"updated_at":               date(func(c model.Campaign) model.Timestamp { return c.UpdatedAt }),
	"last_synced_at":           date(func(c model.Campaign) model.Timestamp { return c.LastSyncedAt }),
	"subject_line":             text(func(c model.Campaign) string { return c.SubjectLine }),
	"title":                    text(func(c model.Campaign) string { return c.Title }),
	"status":                   text(func(c model.Campaign) string { return c.Status }),
	"lead_type_name":           text(func(c model.Campaign) string { return c.LeadTypeName }),
	"campaign_id":              text(func(c model.Campaign) string { return c.CampaignID }),
}

var contactFields = map[string]sortField[model.Contact]{
	"member_rating":  numeric(func(c model.Contact) float64 { return float64(c.MemberRating) }),
	"last_synced_at": date(func(c model.Contact) model.Timestamp { return c.LastSyncedAt }),
	"created_at":     date(func(c model.Contact) model.Timestamp { return c.CreatedAt }),
	"updated_at":     date(func(c model.Contact) model.Timestamp { return c.UpdatedAt }),
	"timestamp_opt":  date(func(c model.Contact) model.Timestamp { return c.TimestampOpt }),
	"last_changed":   date(func(c model.Contact) model.Timestamp { return c.LastChanged }),
	"email_address":  text(func(c model.Contact) string { return c.EmailAddress }),
	"first_name":     text(func(c model.Contact) string { return c.First() }),
	"last_name":      text(func(c model.Contact) string { return c.Last() }),
	"status":         text(func(c model.Contact) string { return c.Status }),
	"sync_status":    text(func(c model.Contact) string { return c.SyncStatus }),
	"lead_type_name": text(func(c model.Contact) string { return c.LeadTypeName }),
	"city":           text(func(c model.Contact) string { return c.MergeFields.Address.City }),
	"state":          text(func(c model.Contact) string { return c.MergeFields.Address.State }),
}

// CampaignSortFields lists the campaign columns offered for sorting, in UI order.
var CampaignSortFields = []string{
	"send_time", "subject_line", "status", "emails_sent", "open_rate", "click_rate",
	"unique_opens", "unique_clicks", "unsubscribed", "last_synced_at",
}

// ContactSortFields lists the contact columns offered for sorting, in UI order.
var ContactSortFields = []string{
	"email_address", "first_name", "last_name", "status", "member_rating", "city", "state", "last_synced_at",
}

// IsCampaignSortField reports whether name is a sortable campaign field.
func IsCampaignSortField(name string) bool {
	_, ok := campaignFields[name]
	return ok
}

// IsContactSortField reports whether name is a sortable contact field.
func IsContactSortField(name string) bool {
	_, ok := contactFields[name]
	return ok
}

// SortCampaigns returns a sorted copy of list. An unknown field keeps the input order.
func SortCampaigns(list []model.Campaign, s SortState) []model.Campaign {
	return sortBy(list, campaignFields, s)
}

// SortContacts returns a sorted copy of list. An unknown field keeps the input order.
func SortContacts(list []model.Contact, s SortState) []model.Contact {
	return sortBy(list, contactFields, s)
}

func sortBy[T any](list []T, fields map[string]sortField[T], s SortState) []T {
	out := append([]T(nil), list...)
	field, ok := fields[s.Field]
	if !ok {
		return out
	}
	keys := make([]sortKey, len(out))
	for i, item := range out {
		keys[i] = field.value(item)
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return compareKeys(keys[idx[i]], keys[idx[j]], field.kind, s.Desc) < 0
	})
	sorted := make([]T, len(out))
	for i, k := range idx {
		sorted[i] = out[k]
	}
	return sorted
}

// compareKeys orders two keys. Null keys sink below every value in both directions.
func compareKeys(a, b sortKey, kind keyKind, desc bool) int {
	switch {
	case a.null && b.null:
		return 0
	case a.null:
		return 1
	case b.null:
		return -1
	}
	var c int
	if kind == kindString {
		c = strings.Compare(a.str, b.str)
	} else {
		switch {
		case a.num < b.num:
			c = -1
		case a.num > b.num:
			c = 1
		}
	}
	if desc {
		return -c
	}
	return c
}

// Package pipeline turns fetched record lists into display-ready pages:
// filtering, sorting, pagination and side-by-side comparison.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/mcdash/internal/model"
)

const dateLayout = "2006-01-02"

// StatusAll disables the status filter.
const StatusAll = "all"

// DateRange is an inclusive day range. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange builds a range from YYYY-MM-DD bounds in loc. The start bound
// begins at 00:00:00 and the end bound runs through the last instant of its day.
// Empty strings leave the bound open.
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	var r DateRange
	if from = strings.TrimSpace(from); from != "" {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid start date %q (expected YYYY-MM-DD)", from)
		}
		r.From = t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid end date %q (expected YYYY-MM-DD)", to)
		}
		r.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return r, nil
}

// Set reports whether either bound is set.
func (r DateRange) Set() bool {
	return !r.From.IsZero() || !r.To.IsZero()
}

// Contains reports whether ts falls in the range. An invalid timestamp is never
// contained by a range with a bound set.
func (r DateRange) Contains(ts model.Timestamp) bool {
	if !r.Set() {
		return true
	}
	if !ts.Valid() {
		return false
	}
	if !r.From.IsZero() && ts.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && ts.After(r.To) {
		return false
	}
	return true
}

// String renders the range with its day bounds.
func (r DateRange) String() string {
	from, to := "any", "any"
	if !r.From.IsZero() {
		from = r.From.Format(dateLayout)
	}
	if !r.To.IsZero() {
		to = r.To.Format(dateLayout)
	}
	return from + ".." + to
}

// CampaignFilter holds the campaign filter criteria. Zero values match everything.
type CampaignFilter struct {
	Search       string
	Status       string
	SendTime     DateRange
	MinOpenRate  float64
	MinClickRate float64
}

// Matches reports whether c passes every criterion.
func (f CampaignFilter) Matches(c model.Campaign) bool {
	if q := normalizeQuery(f.Search); q != "" {
		if !containsFold(c.SubjectLine, q) && !containsFold(c.Title, q) {
			return false
		}
	}
	if !statusMatches(f.Status, c.Status) {
		return false
	}
	if !f.SendTime.Contains(c.SendTime) {
		return false
	}
	if c.OpenRate.Float() < f.MinOpenRate {
		return false
	}
	if c.ClickRate.Float() < f.MinClickRate {
		return false
	}
	return true
}

// Active reports whether any criterion narrows the list.
func (f CampaignFilter) Active() bool {
	return normalizeQuery(f.Search) != "" || !statusIsAll(f.Status) || f.SendTime.Set() ||
		f.MinOpenRate > 0 || f.MinClickRate > 0
}

// ContactFilter holds the contact filter criteria. Zero values match everything.
type ContactFilter struct {
	Search     string
	Status     string
	LastSynced DateRange
	MinRating  int64
}

// Matches reports whether c passes every criterion.
func (f ContactFilter) Matches(c model.Contact) bool {
	if q := normalizeQuery(f.Search); q != "" {
		addr := c.MergeFields.Address
		fields := []string{c.First(), c.Last(), c.EmailAddress, addr.Addr1, addr.City, addr.State, addr.Zip}
		found := false
		for _, field := range fields {
			if containsFold(field, q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !statusMatches(f.Status, c.Status) {
		return false
	}
	if !f.LastSynced.Contains(c.LastSyncedAt) {
		return false
	}
	return c.MemberRating.Int() >= f.MinRating
}

// Active reports whether any criterion narrows the list.
func (f ContactFilter) Active() bool {
	return normalizeQuery(f.Search) != "" || !statusIsAll(f.Status) || f.LastSynced.Set() || f.MinRating > 0
}

// FilterCampaigns returns the campaigns passing f, in their original order.
func FilterCampaigns(list []model.Campaign, f CampaignFilter) []model.Campaign {
	return filter(list, f.Matches)
}

// FilterContacts returns the contacts passing f, in their original order.
func FilterContacts(list []model.Contact, f ContactFilter) []model.Contact {
	return filter(list, f.Matches)
}

func filter[T any](list []T, keep func(T) bool) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

func statusIsAll(status string) bool {
	status = strings.TrimSpace(status)
	return status == "" || strings.EqualFold(status, StatusAll)
}

func statusMatches(want, got string) bool {
	if statusIsAll(want) {
		return true
	}
	return strings.TrimSpace(want) == got
}

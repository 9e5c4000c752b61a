// Package export renders filtered record lists as CSV files.
package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/mcdash/internal/format"
	"github.com/verte-zerg/mcdash/internal/model"
)

// Column is one CSV column over records of type T.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// CampaignColumns is the fixed campaign export layout.
var CampaignColumns = []Column[model.Campaign]{
	{"Subject Line", func(c model.Campaign) string { return c.SubjectLine }},
	{"Title", func(c model.Campaign) string { return c.Title }},
	{"Status", func(c model.Campaign) string { return c.Status }},
	{"Lead Type", func(c model.Campaign) string { return c.LeadTypeName }},
	{"Send Time", func(c model.Campaign) string { return format.DateTime(c.SendTime) }},
	{"Emails Sent", func(c model.Campaign) string { return itoa(c.EmailsSent) }},
	{"Unique Opens", func(c model.Campaign) string { return itoa(c.UniqueOpens) }},
	{"Open Rate", func(c model.Campaign) string { return format.Rate(c.OpenRate) }},
	{"Unique Clicks", func(c model.Campaign) string { return itoa(c.UniqueClicks) }},
	{"Click Rate", func(c model.Campaign) string { return format.Rate(c.ClickRate) }},
	{"Unsubscribed", func(c model.Campaign) string { return itoa(c.Unsubscribed) }},
	{"Hard Bounces", func(c model.Campaign) string { return itoa(c.HardBounces) }},
	{"Soft Bounces", func(c model.Campaign) string { return itoa(c.SoftBounces) }},
	{"Created", func(c model.Campaign) string { return format.Date(c.CreatedAt) }},
	{"Last Synced", func(c model.Campaign) string { return format.Synced(c.LastSyncedAt) }},
}

// ContactColumns is the fixed contact export layout.
var ContactColumns = []Column[model.Contact]{
	{"Email", func(c model.Contact) string { return c.EmailAddress }},
	{"First Name", func(c model.Contact) string { return c.First() }},
	{"Last Name", func(c model.Contact) string { return c.Last() }},
	{"Status", func(c model.Contact) string { return c.Status }},
	{"Member Rating", func(c model.Contact) string { return itoa(c.MemberRating) }},
	{"Address", func(c model.Contact) string { return c.MergeFields.Address.Addr1 }},
	{"City", func(c model.Contact) string { return c.MergeFields.Address.City }},
	{"State", func(c model.Contact) string { return c.MergeFields.Address.State }},
	{"Zip", func(c model.Contact) string { return c.MergeFields.Address.Zip }},
	{"Lead Type", func(c model.Contact) string { return c.LeadTypeName }},
	{"VIP", func(c model.Contact) string { return format.Bool(c.VIP) }},
	{"Sync Status", func(c model.Contact) string { return c.SyncStatus }},
	{"Opt-in Date", func(c model.Contact) string { return format.Date(c.TimestampOpt) }},
	{"Last Changed", func(c model.Contact) string { return format.Date(c.LastChanged) }},
	{"Last Synced", func(c model.Contact) string { return format.Synced(c.LastSyncedAt) }},
}

// Render builds the CSV text for records: a header row then one row per
// record, joined by "\n". Every cell is quoted and embedded quotes are doubled.
func Render[T any](records []T, columns []Column[T]) string {
	lines := make([]string, 0, len(records)+1)
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = quote(col.Header)
	}
	lines = append(lines, strings.Join(cells, ","))
	for _, rec := range records {
		for i, col := range columns {
			cells[i] = quote(col.Value(rec))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

// Campaigns renders campaigns with CampaignColumns.
func Campaigns(list []model.Campaign) string {
	return Render(list, CampaignColumns)
}

// Contacts renders contacts with ContactColumns.
func Contacts(list []model.Contact) string {
	return Render(list, ContactColumns)
}

// FileName returns the download name for an entity export on day, e.g.
// "campaigns-2024-03-15.csv".
func FileName(entity model.Entity, day time.Time) string {
	return fmt.Sprintf("%s-%s.csv", entity, day.Format("2006-01-02"))
}

// WriteFile writes content into dir under the export file name for entity and
// returns the final path. The file is replaced atomically.
func WriteFile(dir string, entity model.Entity, day time.Time, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(entity, day))
	tmpFile, err := os.CreateTemp(dir, string(entity)+"-*.csv.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if _, err := writer.WriteString(content); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func itoa(c model.Count) string {
	return strconv.FormatInt(c.Int(), 10)
}

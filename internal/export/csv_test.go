package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mcdash/internal/model"
)

func TestCampaignRateRoundsToTwoDecimals(t *testing.T) {
	out := Campaigns([]model.Campaign{{SubjectLine: "Spring", OpenRate: 12.345, ClickRate: 3}})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"12.35%"`)
	assert.Contains(t, lines[1], `"3.00%"`)
}

func TestHeaderAndQuoting(t *testing.T) {
	out := Campaigns(nil)
	assert.True(t, strings.HasPrefix(out, `"Subject Line","Title","Status"`))
	assert.NotContains(t, out, "\n")
}

func TestEmbeddedQuotesAreDoubled(t *testing.T) {
	out := Campaigns([]model.Campaign{{SubjectLine: `The "big" sale`}})
	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[1], `"The ""big"" sale",`))
}

func TestMissingDates(t *testing.T) {
	out := Campaigns([]model.Campaign{{SubjectLine: "x"}})
	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasSuffix(lines[1], `"N/A","Never"`))
}

func TestContactsUseResolvedAddress(t *testing.T) {
	c := model.Contact{
		EmailAddress: "ada@example.com",
		MemberRating: 4,
		MergeFields:  model.ResolveMergeFields([]byte(`{"FNAME": "Ada", "ADDRESS": {"addr1": "1 Main St", "city": "Troy"}, "CITY": "Albany"}`)),
	}
	out := Contacts([]model.Contact{c})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `"ada@example.com","Ada","","","4","1 Main St","Albany",`))
}

func TestFileName(t *testing.T) {
	day := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "campaigns-2024-03-15.csv", FileName(model.EntityCampaigns, day))
	assert.Equal(t, "contacts-2024-03-15.csv", FileName(model.EntityContacts, day))
}

func TestWriteFileReplacesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	_, err := WriteFile(dir, model.EntityContacts, day, "old")
	require.NoError(t, err)
	path, err := WriteFile(dir, model.EntityContacts, day, "new")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "contacts-2024-03-15.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mcdash/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/api/", Token: "secret"})
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	_, err = New(Options{BaseURL: "not a url"})
	require.Error(t, err)
}

func TestCampaignsSendsLeadTypeAndHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/mailchimp/campaigns", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("lead_type_id"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `{"campaigns": [{"id": 1, "subject_line": "Hello", "open_rate": "12.5"}]}`)
	})

	got, err := c.Campaigns(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.ID("1"), got[0].ID)
	assert.Equal(t, "Hello", got[0].SubjectLine)
	assert.InDelta(t, 12.5, got[0].OpenRate.Float(), 1e-9)
}

func TestAllLeadTypesOmitsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("lead_type_id"))
		_, _ = io.WriteString(w, `{"contacts": []}`)
	})

	got, err := c.Contacts(context.Background(), model.AllLeadTypes)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStatsDecodesSummary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/mailchimp/stats", r.URL.Path)
		_, _ = io.WriteString(w, `{"total_campaigns": "4", "avg_open_rate": 21.3}`)
	})

	got, err := c.Stats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, model.Count(4), got.TotalCampaigns)
	assert.InDelta(t, 21.3, got.AvgOpenRate.Float(), 1e-9)
}

func TestConfigs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"configs": [{"lead_type_id": 2, "lead_type_name": "Solar", "connection_status": "connected"}]}`)
	})

	got, err := c.Configs(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Solar", got[0].LeadTypeName)
	assert.True(t, got[0].Connected())
}

func TestSyncPostsLeadType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/mailchimp/contacts/sync", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "3", body["lead_type_id"])
		_, _ = io.WriteString(w, `{"message": "Synced 10 contacts"}`)
	})

	msg, err := c.Sync(context.Background(), model.EntityContacts, "3")
	require.NoError(t, err)
	assert.Equal(t, "Synced 10 contacts", msg)
}

func TestSyncAllSendsEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{}`, string(raw))
		w.WriteHeader(http.StatusAccepted)
	})

	msg, err := c.Sync(context.Background(), model.EntityCampaigns, model.AllLeadTypes)
	require.NoError(t, err)
	assert.Empty(t, msg)
}

func TestResyncAndArchivePaths(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		_, _ = io.WriteString(w, `{"message": "ok"}`)
	})

	_, err := c.Resync(context.Background(), model.EntityCampaigns, "abc")
	require.NoError(t, err)
	_, err = c.Archive(context.Background(), model.EntityContacts, "42")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /api/mailchimp/campaigns/abc/resync",
		"DELETE /api/mailchimp/contacts/42",
	}, seen)
}

func TestErrorCarriesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error": "Not allowed"}`)
	})

	_, err := c.Archive(context.Background(), model.EntityCampaigns, "1")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.NotEmpty(t, apiErr.RequestID)

	msg, ok := ServerMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Not allowed", msg)
}

func TestErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Campaigns(context.Background(), "")
	require.Error(t, err)
	_, ok := ServerMessage(err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "502")
}

func TestMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"campaigns": [`)
	})

	_, err := c.Campaigns(context.Background(), "")
	require.Error(t, err)
}

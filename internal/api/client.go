// Package api is the HTTP client for the dashboard backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/mcdash/internal/model"
)

// DefaultTimeout bounds each request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

const (
	basePath       = "/mailchimp"
	errorBodyLimit = 4096
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient Doer
	Logger     *slog.Logger
}

// Client talks to the backend that owns campaign and contact data.
type Client struct {
	baseURL string
	token   string
	httpc   Doer
	log     *slog.Logger
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api base URL is empty")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base URL %q", opts.BaseURL)
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: base,
		token:   opts.Token,
		httpc:   httpc,
		log:     logger,
	}, nil
}

type configsResponse struct {
	Configs []model.LeadTypeConfig `json:"configs"`
}

type campaignsResponse struct {
	Campaigns []model.Campaign `json:"campaigns"`
}

type contactsResponse struct {
	Contacts []model.Contact `json:"contacts"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type syncRequest struct {
	LeadTypeID string `json:"lead_type_id,omitempty"`
}

// Configs lists the lead type integrations.
func (c *Client) Configs(ctx context.Context) ([]model.LeadTypeConfig, error) {
	var resp configsResponse
	if err := c.do(ctx, http.MethodGet, "/configs", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Configs, nil
}

// Stats returns the summary for a lead type, or for all of them.
func (c *Client) Stats(ctx context.Context, leadType string) (model.StatsSummary, error) {
	var resp model.StatsSummary
	if err := c.do(ctx, http.MethodGet, "/stats", leadTypeQuery(leadType), nil, &resp); err != nil {
		return model.StatsSummary{}, err
	}
	return resp, nil
}

// Campaigns lists campaigns for a lead type, or for all of them.
func (c *Client) Campaigns(ctx context.Context, leadType string) ([]model.Campaign, error) {
	var resp campaignsResponse
	if err := c.do(ctx, http.MethodGet, "/campaigns", leadTypeQuery(leadType), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Campaigns, nil
}

// Contacts lists contacts for a lead type, or for all of them.
func (c *Client) Contacts(ctx context.Context, leadType string) ([]model.Contact, error) {
	var resp contactsResponse
	if err := c.do(ctx, http.MethodGet, "/contacts", leadTypeQuery(leadType), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Contacts, nil
}

// Sync asks the backend to pull an entity collection from the email platform.
func (c *Client) Sync(ctx context.Context, entity model.Entity, leadType string) (string, error) {
	body := syncRequest{}
	if !isAll(leadType) {
		body.LeadTypeID = leadType
	}
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/"+string(entity)+"/sync", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Resync refreshes a single record from the email platform.
func (c *Client) Resync(ctx context.Context, entity model.Entity, id string) (string, error) {
	var resp messageResponse
	path := "/" + string(entity) + "/" + url.PathEscape(id) + "/resync"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Archive removes a record from local sync tracking.
func (c *Client) Archive(ctx context.Context, entity model.Entity, id string) (string, error) {
	var resp messageResponse
	path := "/" + string(entity) + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + basePath + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn("api request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.String("err", err.Error()))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.log.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return newError(resp.StatusCode, requestID, raw)
	}
	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func leadTypeQuery(leadType string) url.Values {
	if isAll(leadType) {
		return nil
	}
	return url.Values{"lead_type_id": []string{leadType}}
}

func isAll(leadType string) bool {
	leadType = strings.TrimSpace(leadType)
	return leadType == "" || strings.EqualFold(leadType, model.AllLeadTypes)
}

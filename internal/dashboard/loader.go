// Package dashboard holds the in-memory dashboard state and its loaders.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/mcdash/internal/model"
)

// LoadFailed is the notice shown when any fetch fails.
const LoadFailed = "Failed to load dashboard data"

// Source reads dashboard data from the backend.
type Source interface {
	Configs(ctx context.Context) ([]model.LeadTypeConfig, error)
	Stats(ctx context.Context, leadType string) (model.StatsSummary, error)
	Campaigns(ctx context.Context, leadType string) ([]model.Campaign, error)
	Contacts(ctx context.Context, leadType string) ([]model.Contact, error)
}

// Request is a tagged fetch of one resource.
type Request struct {
	Resource model.Resource
	Seq      uint64
	LeadType string
}

// Result is the response to a Request.
type Result struct {
	Request
	Configs   []model.LeadTypeConfig
	Stats     model.StatsSummary
	Campaigns []model.Campaign
	Contacts  []model.Contact
	Err       error
}

// Loader issues tagged fetches against a Source.
type Loader struct {
	src Source
	seq *Sequencer
	log *slog.Logger
}

// NewLoader returns a Loader over src.
func NewLoader(src Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{src: src, seq: NewSequencer(), log: logger}
}

// Sequencer exposes the loader's sequencer.
func (l *Loader) Sequencer() *Sequencer {
	return l.seq
}

// Request tags a fetch of r. Call it when the fetch is issued, not when it
// runs, so ordering follows user intent.
func (l *Loader) Request(r model.Resource, leadType string) Request {
	return Request{Resource: r, Seq: l.seq.Next(r), LeadType: leadType}
}

// Requests tags a fetch of every resource in rs.
func (l *Loader) Requests(leadType string, rs ...model.Resource) []Request {
	out := make([]Request, 0, len(rs))
	for _, r := range rs {
		out = append(out, l.Request(r, leadType))
	}
	return out
}

// Run performs req. Errors are logged and carried in the Result.
func (l *Loader) Run(ctx context.Context, req Request) Result {
	res := Result{Request: req}
	switch req.Resource {
	case model.ResourceConfigs:
		res.Configs, res.Err = l.src.Configs(ctx)
	case model.ResourceStats:
		res.Stats, res.Err = l.src.Stats(ctx, req.LeadType)
	case model.ResourceCampaigns:
		res.Campaigns, res.Err = l.src.Campaigns(ctx, req.LeadType)
	case model.ResourceContacts:
		res.Contacts, res.Err = l.src.Contacts(ctx, req.LeadType)
	default:
		res.Err = fmt.Errorf("unknown resource %d", req.Resource)
	}
	if res.Err != nil {
		l.log.Error("fetch failed",
			slog.String("resource", req.Resource.String()),
			slog.String("lead_type", req.LeadType),
			slog.String("err", res.Err.Error()))
	}
	return res
}

// Load fetches rs concurrently into a fresh Snapshot for leadType. The first
// failure cancels the rest and is returned.
func (l *Loader) Load(ctx context.Context, leadType string, rs ...model.Resource) (*Snapshot, error) {
	snap := NewSnapshot(leadType)
	reqs := l.Requests(leadType, rs...)
	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = l.Run(gctx, req)
			return results[i].Err
		})
	}
	if err := g.Wait(); err != nil {
		return snap, fmt.Errorf("failed to load %s: %w", leadTypeLabel(leadType), err)
	}
	for _, res := range results {
		snap.Apply(res, l.seq)
	}
	return snap, nil
}

func leadTypeLabel(leadType string) string {
	if leadType == "" || leadType == model.AllLeadTypes {
		return "dashboard data"
	}
	return "dashboard data for lead type " + leadType
}

// Package action dispatches mutating requests and reports their outcome.
package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/mcdash/internal/api"
	"github.com/verte-zerg/mcdash/internal/model"
)

// ErrPermissionDenied is returned when the local permission set forbids an action.
var ErrPermissionDenied = errors.New("permission denied")

// ErrNoTargets is returned when a per-record action is given no ids.
var ErrNoTargets = errors.New("no records selected")

// Action names as recorded in the journal.
const (
	ActionSync    = "sync"
	ActionResync  = "resync"
	ActionArchive = "archive"
)

// Backend performs the mutating calls.
type Backend interface {
	Sync(ctx context.Context, entity model.Entity, leadType string) (string, error)
	Resync(ctx context.Context, entity model.Entity, id string) (string, error)
	Archive(ctx context.Context, entity model.Entity, id string) (string, error)
}

// Journal records dispatched actions.
type Journal interface {
	Record(ctx context.Context, rec model.ActionRecord) (int64, error)
}

// Outcome is the result of a dispatched action. Refresh lists the resources
// that must be re-fetched; it is empty on failure.
type Outcome struct {
	Notice  model.Notice
	Refresh []model.Resource
}

// Dispatcher issues mutating requests on behalf of the user.
type Dispatcher struct {
	backend Backend
	journal Journal
	perms   model.Permissions
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithJournal records every dispatch to j.
func WithJournal(j Journal) Option {
	return func(d *Dispatcher) {
		d.journal = j
	}
}

// WithPermissions replaces the default full permission set.
func WithPermissions(p model.Permissions) Option {
	return func(d *Dispatcher) {
		d.perms = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// New builds a Dispatcher over backend.
func New(backend Backend, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		backend: backend,
		perms:   model.AllPermissions(),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Permissions returns the permission set the dispatcher enforces.
func (d *Dispatcher) Permissions() model.Permissions {
	return d.perms
}

// Sync asks the backend to pull an entity collection for a lead type.
func (d *Dispatcher) Sync(ctx context.Context, entity model.Entity, leadType string) (Outcome, error) {
	if err := d.check(model.SyncPermission(entity)); err != nil {
		return Outcome{}, err
	}
	msg, err := d.backend.Sync(ctx, entity, leadType)
	out := d.outcome(entity, err, msg,
		fmt.Sprintf("%s sync completed", titleCase(string(entity))),
		fmt.Sprintf("Failed to sync %s", entity),
		model.ResourceConfigs)
	d.record(ctx, ActionSync, entity, leadType, nil, err, out.Notice.Text)
	return out, err
}

// Resync refreshes each record from the email platform. All requests run
// concurrently and the action fails as a whole if any of them fails.
func (d *Dispatcher) Resync(ctx context.Context, entity model.Entity, ids ...string) (Outcome, error) {
	if err := d.check(model.SyncPermission(entity)); err != nil {
		return Outcome{}, err
	}
	if len(ids) == 0 {
		return Outcome{}, ErrNoTargets
	}
	msg, err := d.each(ctx, ids, func(ctx context.Context, id string) (string, error) {
		return d.backend.Resync(ctx, entity, id)
	})
	out := d.outcome(entity, err, msg,
		fmt.Sprintf("Resynced %s", countNoun(len(ids), entity)),
		fmt.Sprintf("Failed to resync %s", nounFor(len(ids), entity)))
	d.record(ctx, ActionResync, entity, "", ids, err, out.Notice.Text)
	return out, err
}

// Archive removes each record from sync tracking, with the same concurrency
// and failure rules as Resync.
func (d *Dispatcher) Archive(ctx context.Context, entity model.Entity, ids ...string) (Outcome, error) {
	if err := d.check(model.ArchivePermission(entity)); err != nil {
		return Outcome{}, err
	}
	if len(ids) == 0 {
		return Outcome{}, ErrNoTargets
	}
	msg, err := d.each(ctx, ids, func(ctx context.Context, id string) (string, error) {
		return d.backend.Archive(ctx, entity, id)
	})
	out := d.outcome(entity, err, msg,
		fmt.Sprintf("Archived %s", countNoun(len(ids), entity)),
		fmt.Sprintf("Failed to archive %s", nounFor(len(ids), entity)))
	d.record(ctx, ActionArchive, entity, "", ids, err, out.Notice.Text)
	return out, err
}

func (d *Dispatcher) check(perm string) error {
	if !d.perms.Allows(perm) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, perm)
	}
	return nil
}

// each runs fn for every id. A single id keeps the server message; bulk
// runs report none so the caller falls back to a count.
func (d *Dispatcher) each(ctx context.Context, ids []string, fn func(context.Context, string) (string, error)) (string, error) {
	if len(ids) == 1 {
		return fn(ctx, ids[0])
	}
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			if _, err := fn(ctx, id); err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			return nil
		})
	}
	return "", g.Wait()
}

func (d *Dispatcher) outcome(entity model.Entity, err error, msg, success, failure string, extra ...model.Resource) Outcome {
	if err != nil {
		d.log.Warn("action failed", slog.String("entity", string(entity)), slog.String("err", err.Error()))
		text := failure
		if serverMsg, ok := api.ServerMessage(err); ok {
			text = serverMsg
		}
		return Outcome{Notice: model.Notice{Kind: model.NoticeError, Text: text}}
	}
	text := strings.TrimSpace(msg)
	if text == "" {
		text = success
	}
	refresh := []model.Resource{model.ResourceFor(entity), model.ResourceStats}
	refresh = append(refresh, extra...)
	return Outcome{
		Notice:  model.Notice{Kind: model.NoticeSuccess, Text: text},
		Refresh: refresh,
	}
}

func (d *Dispatcher) record(ctx context.Context, action string, entity model.Entity, leadType string, ids []string, err error, msg string) {
	if d.journal == nil {
		return
	}
	rec := model.ActionRecord{
		At:       model.NewTimestamp(d.now()),
		Action:   action,
		Entity:   entity,
		LeadType: leadType,
		IDs:      ids,
		OK:       err == nil,
		Message:  msg,
	}
	if _, jerr := d.journal.Record(context.WithoutCancel(ctx), rec); jerr != nil {
		d.log.Warn("failed to record action", slog.String("action", action), slog.String("err", jerr.Error()))
	}
}

func countNoun(n int, entity model.Entity) string {
	return fmt.Sprintf("%d %s", n, nounFor(n, entity))
}

func nounFor(n int, entity model.Entity) string {
	if n == 1 {
		return entity.Singular()
	}
	return string(entity)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

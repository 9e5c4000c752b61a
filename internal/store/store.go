// Package store keeps the local action journal in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/mcdash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// DefaultHistoryLimit caps history listings when no limit is given.
const DefaultHistoryLimit = 50

// timeLayout is fixed width so stored times order correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for dispatched actions.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS actions (
			id INTEGER PRIMARY KEY,
			at TEXT NOT NULL,
			action TEXT NOT NULL,
			entity TEXT NOT NULL,
			lead_type TEXT NOT NULL,
			ok INTEGER NOT NULL,
			message TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS action_records (
			action_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			record_id TEXT NOT NULL,
			PRIMARY KEY (action_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_actions_at ON actions(at);`,
		`CREATE INDEX IF NOT EXISTS idx_action_records_record ON action_records(record_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores a dispatched action with the records it targeted. A zero At is
// replaced with the current time.
func (s *Store) Record(ctx context.Context, rec model.ActionRecord) (int64, error) {
	at := rec.At.Time
	if at.IsZero() {
		at = s.now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		// No-op after commit.
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO actions (at, action, entity, lead_type, ok, message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		at.UTC().Format(timeLayout),
		rec.Action,
		string(rec.Entity),
		rec.LeadType,
		boolInt(rec.OK),
		rec.Message,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(rec.IDs) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO action_records (action_id, position, record_id) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, recordID := range rec.IDs {
			if _, err := stmt.ExecContext(ctx, id, i, recordID); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// HistoryQuery narrows a history listing.
type HistoryQuery struct {
	Limit  int
	Entity model.Entity
	Since  *time.Time
}

// ListActions returns the most recent actions first, with their record IDs.
func (s *Store) ListActions(ctx context.Context, q HistoryQuery) ([]model.ActionRecord, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	clauses := []string{"1=1"}
	args := []any{}
	if q.Entity != "" {
		clauses = append(clauses, "entity = ?")
		args = append(args, string(q.Entity))
	}
	if q.Since != nil {
		clauses = append(clauses, "at >= ?")
		args = append(args, q.Since.UTC().Format(timeLayout))
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT id, at, action, entity, lead_type, ok, message
		FROM actions
		WHERE %s
		ORDER BY at DESC, id DESC
		LIMIT ?`, strings.Join(clauses, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.ActionRecord
	for rows.Next() {
		var rec model.ActionRecord
		var at, entity string
		var ok int
		if err := rows.Scan(&rec.ID, &at, &rec.Action, &entity, &rec.LeadType, &ok, &rec.Message); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, err
		}
		rec.At = model.NewTimestamp(parsed)
		rec.Entity = model.Entity(entity)
		rec.OK = ok != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	targets, err := s.recordIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].IDs = targets[records[i].ID]
	}
	return records, nil
}

func (s *Store) recordIDs(ctx context.Context, actionIDs []int64) (map[int64][]string, error) {
	placeholders := make([]string, len(actionIDs))
	args := make([]any, len(actionIDs))
	for i, id := range actionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT action_id, record_id
		FROM action_records
		WHERE action_id IN (%s)
		ORDER BY action_id, position`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[int64][]string{}
	for rows.Next() {
		var actionID int64
		var recordID string
		if err := rows.Scan(&actionID, &recordID); err != nil {
			return nil, err
		}
		result[actionID] = append(result[actionID], recordID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package store persists snapshots of the application state in PostgreSQL so
// the last imported schedule survives a restart.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

// DBTX is the subset of pgxpool.Pool, pgx.Conn and pgx.Tx the store uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schedule_snapshots (
	id                     UUID PRIMARY KEY,
	import_id              UUID NOT NULL,
	file_name              TEXT,
	num_distinct_schedules INTEGER NOT NULL,
	state                  JSONB NOT NULL,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS schedule_snapshots_created_at_idx
	ON schedule_snapshots (created_at DESC);
`

const insertSnapshotSQL = `
INSERT INTO schedule_snapshots (id, import_id, file_name, num_distinct_schedules, state, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

const latestSnapshotSQL = `
SELECT state FROM schedule_snapshots ORDER BY created_at DESC LIMIT 1
`

const pruneSnapshotsSQL = `
DELETE FROM schedule_snapshots
WHERE id NOT IN (
	SELECT id FROM schedule_snapshots ORDER BY created_at DESC LIMIT $1
)
`

// Store reads and writes state snapshots.
type Store struct {
	db  DBTX
	now func() time.Time
}

// New returns a Store over db.
func New(db DBTX) *Store {
	return &Store{db: db, now: time.Now}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create snapshot schema: %w", err)
	}
	return nil
}

// SaveState writes st as the newest snapshot.
func (s *Store) SaveState(ctx context.Context, importID uuid.UUID, fileName string, st schedule.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.Exec(ctx, insertSnapshotSQL,
		pgtype.UUID{Bytes: uuid.New(), Valid: true},
		pgtype.UUID{Bytes: importID, Valid: true},
		toPgText(fileName),
		st.Schedule.NumDistinctSchedules,
		data,
		pgtype.Timestamptz{Time: s.now().UTC(), Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestState returns the most recent snapshot. The boolean is false when
// no snapshot has been saved yet.
func (s *Store) LatestState(ctx context.Context) (schedule.State, bool, error) {
	var data []byte
	err := s.db.QueryRow(ctx, latestSnapshotSQL).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return schedule.State{}, false, nil
	}
	if err != nil {
		return schedule.State{}, false, fmt.Errorf("query latest snapshot: %w", err)
	}

	var st schedule.State
	if err := json.Unmarshal(data, &st); err != nil {
		return schedule.State{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return st, true, nil
}

// Prune deletes all but the newest keep snapshots and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	tag, err := s.db.Exec(ctx, pruneSnapshotsSQL, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

package dedup

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore keeps records in the dedup_records table so they survive a
// restart and are shared by every process using the same database file.
// Expiry is part of the insert statement itself; Purge only reclaims space.
type SQLiteStore struct {
	db     *sql.DB
	window time.Duration
	now    Clock
}

// SQLiteOption configures a SQLiteStore
type SQLiteOption func(*SQLiteStore)

// WithSQLiteClock replaces the clock used by the store
func WithSQLiteClock(now Clock) SQLiteOption {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// NewSQLiteStore creates a store on a migrated database
func NewSQLiteStore(db *sql.DB, window time.Duration, opts ...SQLiteOption) *SQLiteStore {
	s := &SQLiteStore{
		db:     db,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// A conflicting row is only overwritten when it has expired, so the row
// count tells novel (1) from duplicate (0) in one atomic statement.
const checkAndRecordQuery = `
INSERT INTO dedup_records (key, seen_at) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET seen_at = excluded.seen_at
WHERE dedup_records.seen_at <= ?
`

// CheckAndRecord implements Store
func (s *SQLiteStore) CheckAndRecord(ctx context.Context, key string) (bool, error) {
	now := s.now()
	cutoff := now.Add(-s.window)

	res, err := s.db.ExecContext(ctx, checkAndRecordQuery, key, now.UnixNano(), cutoff.UnixNano())
	if err != nil {
		return false, fmt.Errorf("failed to record dedup key: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read dedup result: %w", err)
	}
	return affected == 0, nil
}

// Purge deletes expired records and returns how many were removed
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.window)

	res, err := s.db.ExecContext(ctx, "DELETE FROM dedup_records WHERE seen_at <= ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge dedup records: %w", err)
	}
	return res.RowsAffected()
}

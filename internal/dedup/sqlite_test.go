package dedup

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuya-takeyama/lark-dept-bot/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "dedup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteStore_CheckAndRecord(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewSQLiteStore(setupTestDB(t), 5*time.Minute, WithSQLiteClock(clock.Now))

	dup, err := store.CheckAndRecord(ctx, "lark_event:ev_1")
	require.NoError(t, err)
	assert.False(t, dup)

	clock.Advance(time.Minute)
	dup, err = store.CheckAndRecord(ctx, "lark_event:ev_1")
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = store.CheckAndRecord(ctx, "lark_event:ev_2")
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestSQLiteStore_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewSQLiteStore(setupTestDB(t), 5*time.Minute, WithSQLiteClock(clock.Now))

	dup, err := store.CheckAndRecord(ctx, "k")
	require.NoError(t, err)
	assert.False(t, dup)

	clock.Advance(5 * time.Minute)
	dup, err = store.CheckAndRecord(ctx, "k")
	require.NoError(t, err)
	assert.False(t, dup, "a record exactly one window old has expired")

	clock.Advance(4 * time.Minute)
	dup, err = store.CheckAndRecord(ctx, "k")
	require.NoError(t, err)
	assert.True(t, dup, "the expired key was recorded again with a fresh time")
}

func TestSQLiteStore_NoRefreshOnAccess(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewSQLiteStore(setupTestDB(t), 5*time.Minute, WithSQLiteClock(clock.Now))

	store.CheckAndRecord(ctx, "k")
	clock.Advance(3 * time.Minute)
	dup, _ := store.CheckAndRecord(ctx, "k")
	assert.True(t, dup)

	clock.Advance(2 * time.Minute)
	dup, _ = store.CheckAndRecord(ctx, "k")
	assert.False(t, dup)
}

func TestSQLiteStore_SharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	first := NewSQLiteStore(db, time.Minute)
	second := NewSQLiteStore(db, time.Minute)

	dup, err := first.CheckAndRecord(ctx, "k")
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = second.CheckAndRecord(ctx, "k")
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestSQLiteStore_Purge(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	db := setupTestDB(t)
	store := NewSQLiteStore(db, time.Minute, WithSQLiteClock(clock.Now))

	store.CheckAndRecord(ctx, "old")
	clock.Advance(45 * time.Second)
	store.CheckAndRecord(ctx, "recent")
	clock.Advance(30 * time.Second)

	removed, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM dedup_records").Scan(&count))
	assert.Equal(t, 1, count)

	dup, err := store.CheckAndRecord(ctx, "recent")
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestSQLiteStore_ConcurrentSameKey(t *testing.T) {
	store := NewSQLiteStore(setupTestDB(t), time.Minute)
	assertSingleWinner(t, store)
}

func TestSQLiteStore_ClosedDatabase(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db, time.Minute)
	require.NoError(t, db.Close())

	_, err := store.CheckAndRecord(context.Background(), "k")
	assert.Error(t, err)
}

package fts

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/kentxun/anymind/internal/client/migrations"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "fts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

func TestReplace_IsSingleRowPerRecord(t *testing.T) {
	idx := NewSQLiteIndex(setupDB(t))
	ctx := context.Background()

	require.NoError(t, idx.Replace(ctx, "r1", "buy milk"))
	require.NoError(t, idx.Replace(ctx, "r1", "buy bread"))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	ids, err := idx.Match(ctx, `"milk"*`)
	require.NoError(t, err)
	require.Empty(t, ids)

	ids, err = idx.Match(ctx, `"brea"*`)
	require.NoError(t, err)
	require.Equal(t, []string{"r1"}, ids)
}

func TestMatch_AndedPrefixes(t *testing.T) {
	idx := NewSQLiteIndex(setupDB(t))
	ctx := context.Background()

	require.NoError(t, idx.Replace(ctx, "a", "Write design doc #p1"))
	require.NoError(t, idx.Replace(ctx, "b", "write tests"))

	ids, err := idx.Match(ctx, `"wri"* AND "des"*`)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, ids)

	ids, err = idx.Match(ctx, `"p1"*`)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, ids)
}

func TestRemove(t *testing.T) {
	idx := NewSQLiteIndex(setupDB(t))
	ctx := context.Background()

	require.NoError(t, idx.Replace(ctx, "a", "hello"))
	require.NoError(t, idx.Remove(ctx, "a"))
	require.NoError(t, idx.Remove(ctx, "a"))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRebuild_IndexesLiveRecordsOnly(t *testing.T) {
	db := setupDB(t)
	idx := NewSQLiteIndex(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO records (id, content, created_at, updated_at, week_key, deleted)
		VALUES ('live', 'alpha', 'x', 'x', 'w', 0), ('gone', 'alpha', 'x', 'x', 'w', 1)`)
	require.NoError(t, err)
	require.NoError(t, idx.Replace(ctx, "stale", "alpha"))

	require.NoError(t, idx.Rebuild(ctx))

	ids, err := idx.Match(ctx, `"alpha"*`)
	require.NoError(t, err)
	require.Equal(t, []string{"live"}, ids)
}

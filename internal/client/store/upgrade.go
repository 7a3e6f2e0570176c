package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kentxun/anymind/internal/client/repositories/fts"
	"github.com/kentxun/anymind/internal/dbx"
	"github.com/kentxun/anymind/internal/logging"
)

// syncColumns were added to records after the first public schema.
var syncColumns = []struct {
	name string
	ddl  string
}{
	{"sync_enabled", "ALTER TABLE records ADD COLUMN sync_enabled INTEGER NOT NULL DEFAULT 0"},
	{"cloud_delete_pending", "ALTER TABLE records ADD COLUMN cloud_delete_pending INTEGER NOT NULL DEFAULT 0"},
}

// upgradeSchema brings databases created before the sync columns existed up
// to date and repairs the full-text index.
//
// Records that already reached the remote (server_rev or last_sync_at set)
// are marked sync-enabled, once, when sync_enabled is first added. Later
// opens never touch the flag, so records the user opted out stay opted out.
func upgradeSchema(ctx context.Context, db dbx.DBTX, log logging.Logger) error {
	cols, err := tableColumns(ctx, db, "records")
	if err != nil {
		return err
	}

	addedSyncEnabled := false
	for _, c := range syncColumns {
		if cols[c.name] {
			continue
		}
		if _, err := db.ExecContext(ctx, c.ddl); err != nil {
			return fmt.Errorf("add column %s: %w", c.name, err)
		}
		log.Info(ctx, "added records column", "column", c.name)
		if c.name == "sync_enabled" {
			addedSyncEnabled = true
		}
	}

	if addedSyncEnabled {
		res, err := db.ExecContext(ctx, `UPDATE records SET sync_enabled = 1
			WHERE server_rev IS NOT NULL OR last_sync_at IS NOT NULL`)
		if err != nil {
			return fmt.Errorf("backfill sync_enabled: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			log.Info(ctx, "backfilled sync_enabled", "records", n)
		}
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_records_sync
		ON records(sync_enabled, cloud_delete_pending)`); err != nil {
		return fmt.Errorf("create sync index: %w", err)
	}

	return repairIndex(ctx, db, log)
}

func tableColumns(ctx context.Context, db dbx.DBTX, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// repairIndex recreates a legacy (pre-FTS5) index table and rebuilds the
// index whenever its row count disagrees with the live record count.
func repairIndex(ctx context.Context, db dbx.DBTX, log logging.Logger) error {
	var ddl string
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(sql, '') FROM sqlite_master WHERE name = 'record_fts'`).Scan(&ddl)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("inspect record_fts: %w", err)
	}

	if !strings.Contains(strings.ToLower(ddl), "fts5") {
		log.Info(ctx, "recreating legacy full-text index")
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS record_fts`); err != nil {
			return fmt.Errorf("drop legacy record_fts: %w", err)
		}
		if _, err := db.ExecContext(ctx, `CREATE VIRTUAL TABLE record_fts USING fts5(
			content, record_id UNINDEXED, tokenize = 'unicode61')`); err != nil {
			return fmt.Errorf("create record_fts: %w", err)
		}
	}

	idx := fts.NewSQLiteIndex(db)
	indexed, err := idx.Count(ctx)
	if err != nil {
		return err
	}
	var live int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE deleted = 0`).Scan(&live); err != nil {
		return fmt.Errorf("count live records: %w", err)
	}
	if indexed == live {
		return nil
	}

	log.Info(ctx, "rebuilding full-text index", "indexed", indexed, "live", live)
	return idx.Rebuild(ctx)
}

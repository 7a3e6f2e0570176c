// Package fts maintains the record_fts full-text index (SQLite FTS5).
// Only live records have a row; the index is rewritten on every content
// write and cleared on soft delete.
package fts

import (
	"context"
	"fmt"

	"github.com/kentxun/anymind/internal/dbx"
)

type Index interface {
	Replace(ctx context.Context, recordID, content string) error
	Remove(ctx context.Context, recordID string) error
	Match(ctx context.Context, expr string) ([]string, error)
	Rebuild(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type SQLiteIndex struct {
	db dbx.DBTX
}

func NewSQLiteIndex(db dbx.DBTX) *SQLiteIndex {
	return &SQLiteIndex{db: db}
}

// Replace drops any existing row for recordID and indexes content.
func (i *SQLiteIndex) Replace(ctx context.Context, recordID, content string) error {
	if err := i.Remove(ctx, recordID); err != nil {
		return err
	}
	_, err := i.db.ExecContext(ctx, `INSERT INTO record_fts (content, record_id) VALUES (?, ?)`, content, recordID)
	if err != nil {
		return fmt.Errorf("failed to index record: %w", err)
	}
	return nil
}

func (i *SQLiteIndex) Remove(ctx context.Context, recordID string) error {
	if _, err := i.db.ExecContext(ctx, `DELETE FROM record_fts WHERE record_id = ?`, recordID); err != nil {
		return fmt.Errorf("failed to remove record from index: %w", err)
	}
	return nil
}

// Match returns ids of indexed records matching an FTS5 expression.
func (i *SQLiteIndex) Match(ctx context.Context, expr string) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, `SELECT record_id FROM record_fts WHERE record_fts MATCH ? ORDER BY rank`, expr)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan index row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate index rows: %w", err)
	}
	return ids, nil
}

// Rebuild re-creates the index from every live record.
func (i *SQLiteIndex) Rebuild(ctx context.Context) error {
	if _, err := i.db.ExecContext(ctx, `DELETE FROM record_fts`); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	_, err := i.db.ExecContext(ctx, `INSERT INTO record_fts (content, record_id)
		SELECT content, id FROM records WHERE deleted = 0`)
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}
	return nil
}

func (i *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := i.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM record_fts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count index rows: %w", err)
	}
	return n, nil
}

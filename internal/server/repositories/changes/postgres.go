// Package changes stores the per-space revision log.
package changes

import (
	"context"
	"fmt"

	"github.com/kentxun/anymind/internal/dbx"
	"github.com/kentxun/anymind/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, c *models.Change) error {
	query := `
		INSERT INTO changes (space_id, rev, record_id, deleted, device_id, server_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query, c.SpaceID, c.Rev, c.RecordID, c.Deleted, c.DeviceID, c.ServerUpdatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

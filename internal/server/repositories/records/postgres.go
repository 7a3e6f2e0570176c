// Package records provides PostgreSQL-backed storage of the remote copy of
// each record. Tag lists are kept as JSON arrays.
package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kentxun/anymind/internal/dbx"
	"github.com/kentxun/anymind/internal/server/models"
)

// PostgresRepository implements record storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetRev returns the stored revision of a record, or nil when the space has
// never seen it.
func (r *PostgresRepository) GetRev(ctx context.Context, spaceID, id string) (*int64, error) {
	query := `SELECT server_rev FROM records WHERE space_id = $1 AND id = $2`

	var rev int64
	if err := r.db.QueryRowContext(ctx, query, spaceID, id).Scan(&rev); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &rev, nil
}

// Upsert stores rec as the current state; the last writer wins. created_at
// keeps its first value.
func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.Record) error {
	sys, err := encodeTags(rec.SystemTags)
	if err != nil {
		return err
	}
	usr, err := encodeTags(rec.UserTags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO records (space_id, id, content, system_tags, user_tags, created_at,
			updated_at_client, deleted, server_rev, server_updated_at, last_device_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (space_id, id)
		DO UPDATE SET
			content = EXCLUDED.content,
			system_tags = EXCLUDED.system_tags,
			user_tags = EXCLUDED.user_tags,
			updated_at_client = EXCLUDED.updated_at_client,
			deleted = EXCLUDED.deleted,
			server_rev = EXCLUDED.server_rev,
			server_updated_at = EXCLUDED.server_updated_at,
			last_device_id = EXCLUDED.last_device_id
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.SpaceID, rec.ID, rec.Content, sys, usr, rec.CreatedAt,
		rec.UpdatedAt, rec.Deleted, rec.ServerRev, rec.ServerUpdatedAt, rec.LastDeviceID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SelectSince returns up to limit records of the space with a revision above
// sinceRev, in revision order.
func (r *PostgresRepository) SelectSince(ctx context.Context, spaceID string, sinceRev int64, limit int) ([]*models.Record, error) {
	query := `
		SELECT id, content, system_tags, user_tags, created_at, updated_at_client,
			deleted, server_rev, server_updated_at, last_device_id
		FROM records
		WHERE space_id = $1 AND server_rev > $2
		ORDER BY server_rev ASC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, spaceID, sinceRev, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Record, 0)
	for rows.Next() {
		rec := &models.Record{SpaceID: spaceID}
		var sys, usr string
		if err := rows.Scan(
			&rec.ID, &rec.Content, &sys, &usr, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.Deleted, &rec.ServerRev, &rec.ServerUpdatedAt, &rec.LastDeviceID,
		); err != nil {
			return nil, err
		}
		if rec.SystemTags, err = decodeTags(sys); err != nil {
			return nil, err
		}
		if rec.UserTags, err = decodeTags(usr); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

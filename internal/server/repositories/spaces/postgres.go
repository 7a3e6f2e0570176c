// Package spaces provides PostgreSQL-backed storage of sync spaces and their
// revision counters.
package spaces

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/dbx"
	"github.com/kentxun/anymind/internal/server/models"
)

// PostgresRepository implements space storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts space and fills CreatedAt from the database.
func (r *PostgresRepository) Create(ctx context.Context, space *models.Space) error {
	query := `
		INSERT INTO spaces (id, name, secret_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query, space.ID, space.Name, space.SecretHash).Scan(&space.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the space with id or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Space, error) {
	query := `SELECT id, name, secret_hash, current_rev, created_at FROM spaces WHERE id = $1`

	s := &models.Space{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.SecretHash, &s.CurrentRev, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// NextRev allocates the next revision of the space. Inside a transaction
// the space row stays locked until commit, which serializes pushes to one
// space.
func (r *PostgresRepository) NextRev(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE spaces SET current_rev = current_rev + 1
		WHERE id = $1
		RETURNING current_rev
	`
	var rev int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&rev); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return rev, nil
}

// CurrentRev returns the highest revision allocated in the space.
func (r *PostgresRepository) CurrentRev(ctx context.Context, id string) (int64, error) {
	var rev int64
	if err := r.db.QueryRowContext(ctx, `SELECT current_rev FROM spaces WHERE id = $1`, id).Scan(&rev); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return rev, nil
}

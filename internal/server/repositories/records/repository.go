package records

import (
	"context"

	"github.com/kentxun/anymind/internal/server/models"
)

type Repository interface {
	GetRev(ctx context.Context, spaceID, id string) (*int64, error)
	Upsert(ctx context.Context, rec *models.Record) error
	SelectSince(ctx context.Context, spaceID string, sinceRev int64, limit int) ([]*models.Record, error)
}

package spaces

import (
	"context"

	"github.com/kentxun/anymind/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, space *models.Space) error
	Get(ctx context.Context, id string) (*models.Space, error)
	NextRev(ctx context.Context, id string) (int64, error)
	CurrentRev(ctx context.Context, id string) (int64, error)
}

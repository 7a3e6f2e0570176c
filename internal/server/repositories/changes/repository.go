package changes

import (
	"context"

	"github.com/kentxun/anymind/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, change *models.Change) error
}

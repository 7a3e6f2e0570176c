package client

import (
	"context"

	"github.com/kentxun/anymind/internal/client/models"
)

// Credentials identify a remote space.
type Credentials struct {
	ServerURL   string
	SpaceID     string
	SpaceSecret string
	DeviceID    string
}

// Client is the sync transport consumed by the reconciler.
type Client interface {
	Push(ctx context.Context, creds Credentials, changes []models.LocalChange) (*models.PushOutcome, error)
	Pull(ctx context.Context, creds Credentials, sinceRev int64, limit int) (*models.PullPage, error)
	CreateSpace(ctx context.Context, serverURL, name string) (*models.Space, error)
	Ping(ctx context.Context, serverURL string) error
}

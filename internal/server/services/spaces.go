// Package services contains the sync server's business logic on top of the
// repository layer.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/cryptox"
	"github.com/kentxun/anymind/internal/server/models"
	"github.com/kentxun/anymind/internal/server/repositories/repomanager"
)

const (
	spaceIDPrefix     = "spc_"
	spaceSecretPrefix = "sec_"
	spaceIDBytes      = 16
	spaceSecretBytes  = 24
)

// randomToken is a seam for tests.
var randomToken = common.RandomToken

// SpaceService creates spaces and checks their credentials.
type SpaceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSpaceService(db *sql.DB, m repomanager.RepositoryManager) *SpaceService {
	return &SpaceService{db: db, repomanager: m}
}

// Create allocates a new space and returns it with its plaintext secret.
// Only the bcrypt hash of the secret is persisted.
func (s *SpaceService) Create(ctx context.Context, name string) (*models.Space, string, error) {
	id, err := randomToken(spaceIDPrefix, spaceIDBytes)
	if err != nil {
		return nil, "", err
	}
	secret, err := randomToken(spaceSecretPrefix, spaceSecretBytes)
	if err != nil {
		return nil, "", err
	}
	hash, err := cryptox.HashSecret(secret)
	if err != nil {
		return nil, "", err
	}

	space := &models.Space{ID: id, Name: name, SecretHash: hash}
	if err := s.repomanager.Spaces(s.db).Create(ctx, space); err != nil {
		return nil, "", fmt.Errorf("error creating space: %w", err)
	}
	return space, secret, nil
}

// Authenticate checks the space credentials. It returns ErrInvalidRequest
// for empty values, ErrNotFound for an unknown space and ErrUnauthorized for
// a wrong secret.
func (s *SpaceService) Authenticate(ctx context.Context, spaceID, secret string) (*models.Space, error) {
	if spaceID == "" || secret == "" {
		return nil, fmt.Errorf("space_id and space_secret are required: %w", common.ErrInvalidRequest)
	}

	space, err := s.repomanager.Spaces(s.db).Get(ctx, spaceID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading space: %w", err)
	}

	if err := cryptox.VerifySecret(space.SecretHash, secret); err != nil {
		return nil, err
	}
	return space, nil
}

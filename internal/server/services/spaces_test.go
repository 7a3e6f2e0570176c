package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	cryptox.Cost = bcrypt.MinCost
}

func TestSpaceService_CreateAndAuthenticate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := NewSpaceService(db, rm)
	ctx := context.Background()

	space, secret, err := s.Create(ctx, "team")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(space.ID, "spc_"))
	assert.True(t, strings.HasPrefix(secret, "sec_"))
	assert.Len(t, space.ID, 4+22)
	assert.Len(t, secret, 4+32)
	assert.NotContains(t, rm.s.items[space.ID].SecretHash, secret)
	assert.Equal(t, "team", rm.s.items[space.ID].Name)

	got, err := s.Authenticate(ctx, space.ID, secret)
	require.NoError(t, err)
	assert.Equal(t, space.ID, got.ID)

	_, err = s.Authenticate(ctx, space.ID, "sec_wrong")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = s.Authenticate(ctx, "spc_unknown", secret)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = s.Authenticate(ctx, "", secret)
	assert.ErrorIs(t, err, common.ErrInvalidRequest)
	_, err = s.Authenticate(ctx, space.ID, "")
	assert.ErrorIs(t, err, common.ErrInvalidRequest)
}

func TestSpaceService_CreateErrors(t *testing.T) {
	db, _ := newSQLMockDB(t)
	ctx := context.Background()

	t.Run("repository", func(t *testing.T) {
		rm := newFakeRepoManager()
		rm.s.err = errors.New("db down")
		_, _, err := NewSpaceService(db, rm).Create(ctx, "")
		assert.ErrorContains(t, err, "error creating space")
	})

	t.Run("random source", func(t *testing.T) {
		old := randomToken
		t.Cleanup(func() { randomToken = old })
		randomToken = func(string, int) (string, error) { return "", errors.New("no entropy") }

		_, _, err := NewSpaceService(db, newFakeRepoManager()).Create(ctx, "")
		assert.EqualError(t, err, "no entropy")
	})
}

func TestSpaceService_AuthenticateStorageError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.s.err = errors.New("db down")

	_, err := NewSpaceService(db, rm).Authenticate(context.Background(), "spc_1", "sec_1")
	assert.ErrorContains(t, err, "error loading space")
	assert.NotErrorIs(t, err, common.ErrNotFound)
}

package spaces

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO spaces \(id, name, secret_hash\).*RETURNING created_at`).
		WithArgs("spc_1", "team", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	s := &models.Space{ID: "spc_1", Name: "team", SecretHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), s))
	assert.Equal(t, created, s.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`INSERT INTO spaces`).WillReturnError(errors.New("duplicate"))

	err := repo.Create(context.Background(), &models.Space{ID: "spc_1"})
	assert.ErrorContains(t, err, "db error")
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, name, secret_hash, current_rev, created_at FROM spaces WHERE id = \$1`).
		WithArgs("spc_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "secret_hash", "current_rev", "created_at"}).
			AddRow("spc_1", "team", "hash", int64(7), created))

	s, err := repo.Get(context.Background(), "spc_1")
	require.NoError(t, err)
	assert.Equal(t, &models.Space{ID: "spc_1", Name: "team", SecretHash: "hash", CurrentRev: 7, CreatedAt: created}, s)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT .* FROM spaces`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestNextRev(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`UPDATE spaces SET current_rev = current_rev \+ 1\s+WHERE id = \$1\s+RETURNING current_rev`).
		WithArgs("spc_1").
		WillReturnRows(sqlmock.NewRows([]string{"current_rev"}).AddRow(int64(8)))

	rev, err := repo.NextRev(context.Background(), "spc_1")
	require.NoError(t, err)
	assert.Equal(t, int64(8), rev)
}

func TestNextRev_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`UPDATE spaces`).WillReturnError(sql.ErrNoRows)
	_, err := repo.NextRev(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)

	mock.ExpectQuery(`UPDATE spaces`).WillReturnError(errors.New("conn reset"))
	_, err = repo.NextRev(context.Background(), "spc_1")
	assert.ErrorContains(t, err, "conn reset")
}

func TestCurrentRev(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT current_rev FROM spaces WHERE id = \$1`).
		WithArgs("spc_1").
		WillReturnRows(sqlmock.NewRows([]string{"current_rev"}).AddRow(int64(3)))

	rev, err := repo.CurrentRev(context.Background(), "spc_1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rev)

	mock.ExpectQuery(`SELECT current_rev FROM spaces`).WillReturnError(sql.ErrNoRows)
	_, err = repo.CurrentRev(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

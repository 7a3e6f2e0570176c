package records

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

func TestGetRev(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT server_rev FROM records WHERE space_id = \$1 AND id = \$2`).
		WithArgs("spc_1", "r1").
		WillReturnRows(sqlmock.NewRows([]string{"server_rev"}).AddRow(int64(5)))
	rev, err := repo.GetRev(context.Background(), "spc_1", "r1")
	require.NoError(t, err)
	require.NotNil(t, rev)
	assert.Equal(t, int64(5), *rev)

	mock.ExpectQuery(`SELECT server_rev FROM records`).WillReturnError(sql.ErrNoRows)
	rev, err = repo.GetRev(context.Background(), "spc_1", "new")
	require.NoError(t, err)
	assert.Nil(t, rev)

	mock.ExpectQuery(`SELECT server_rev FROM records`).WillReturnError(errors.New("boom"))
	_, err = repo.GetRev(context.Background(), "spc_1", "r1")
	assert.ErrorContains(t, err, "db error")
}

func TestUpsert(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO records .* ON CONFLICT \(space_id, id\)\s+DO UPDATE SET`).
		WithArgs("spc_1", "r1", "buy milk #temp", `["#temp"]`, `[]`, "2024-01-31T09:00:00.000000000Z",
			"2024-01-31T09:30:00.000000000Z", false, int64(3), at, "dev").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.Record{
		SpaceID: "spc_1", ID: "r1", Content: "buy milk #temp",
		SystemTags: []string{"#temp"}, UserTags: nil,
		CreatedAt: "2024-01-31T09:00:00.000000000Z", UpdatedAt: "2024-01-31T09:30:00.000000000Z",
		ServerRev: 3, ServerUpdatedAt: at, LastDeviceID: "dev",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectSince(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

	cols := []string{"id", "content", "system_tags", "user_tags", "created_at", "updated_at_client",
		"deleted", "server_rev", "server_updated_at", "last_device_id"}
	mock.ExpectQuery(`SELECT .* FROM records\s+WHERE space_id = \$1 AND server_rev > \$2\s+ORDER BY server_rev ASC\s+LIMIT \$3`).
		WithArgs("spc_1", int64(2), 50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("r1", "a #p1", `["#p1"]`, `["#work"]`, "c1", "u1", false, int64(3), at, "dev").
			AddRow("r2", "", "", `null`, "c2", "u2", true, int64(4), at, "dev2"))

	got, err := repo.SelectSince(context.Background(), "spc_1", 2, 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, &models.Record{
		SpaceID: "spc_1", ID: "r1", Content: "a #p1", SystemTags: []string{"#p1"}, UserTags: []string{"#work"},
		CreatedAt: "c1", UpdatedAt: "u1", ServerRev: 3, ServerUpdatedAt: at, LastDeviceID: "dev",
	}, got[0])
	assert.True(t, got[1].Deleted)
	assert.Equal(t, []string{}, got[1].SystemTags)
	assert.Equal(t, []string{}, got[1].UserTags)
}

func TestSelectSince_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM records`).WillReturnError(errors.New("boom"))
	_, err := repo.SelectSince(context.Background(), "spc_1", 0, 10)
	assert.ErrorContains(t, err, "failed to select records")

	cols := []string{"id", "content", "system_tags", "user_tags", "created_at", "updated_at_client",
		"deleted", "server_rev", "server_updated_at", "last_device_id"}
	mock.ExpectQuery(`SELECT .* FROM records`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("r1", "a", "{bad", "[]", "c", "u", false, int64(1), time.Now(), ""))
	_, err = repo.SelectSince(context.Background(), "spc_1", 0, 10)
	assert.ErrorContains(t, err, "decode tags")
}

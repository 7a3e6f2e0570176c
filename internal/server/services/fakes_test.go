package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/dbx"
	"github.com/kentxun/anymind/internal/server/models"
	"github.com/kentxun/anymind/internal/server/repositories/changes"
	"github.com/kentxun/anymind/internal/server/repositories/records"
	"github.com/kentxun/anymind/internal/server/repositories/spaces"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeSpaces struct {
	spaces.Repository
	items   map[string]*models.Space
	err     error
	nextErr error
}

func (f *fakeSpaces) Create(_ context.Context, s *models.Space) error {
	if f.err != nil {
		return f.err
	}
	if f.items == nil {
		f.items = map[string]*models.Space{}
	}
	cp := *s
	f.items[s.ID] = &cp
	return nil
}

func (f *fakeSpaces) Get(_ context.Context, id string) (*models.Space, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return s, nil
}

func (f *fakeSpaces) NextRev(_ context.Context, id string) (int64, error) {
	if f.nextErr != nil {
		return 0, f.nextErr
	}
	s, ok := f.items[id]
	if !ok {
		return 0, common.ErrNotFound
	}
	s.CurrentRev++
	return s.CurrentRev, nil
}

func (f *fakeSpaces) CurrentRev(_ context.Context, id string) (int64, error) {
	s, ok := f.items[id]
	if !ok {
		return 0, common.ErrNotFound
	}
	return s.CurrentRev, nil
}

type fakeRecords struct {
	records.Repository
	items     map[string]*models.Record
	lastLimit int
}

func (f *fakeRecords) GetRev(_ context.Context, spaceID, id string) (*int64, error) {
	r, ok := f.items[spaceID+"/"+id]
	if !ok {
		return nil, nil
	}
	rev := r.ServerRev
	return &rev, nil
}

func (f *fakeRecords) Upsert(_ context.Context, r *models.Record) error {
	if f.items == nil {
		f.items = map[string]*models.Record{}
	}
	cp := *r
	if old, ok := f.items[r.SpaceID+"/"+r.ID]; ok {
		cp.CreatedAt = old.CreatedAt
	}
	f.items[r.SpaceID+"/"+r.ID] = &cp
	return nil
}

func (f *fakeRecords) SelectSince(_ context.Context, spaceID string, since int64, limit int) ([]*models.Record, error) {
	f.lastLimit = limit
	var out []*models.Record
	for _, r := range f.items {
		if r.SpaceID == spaceID && r.ServerRev > since {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServerRev < out[j].ServerRev })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeChanges struct {
	changes.Repository
	log []models.Change
}

func (f *fakeChanges) Insert(_ context.Context, c *models.Change) error {
	f.log = append(f.log, *c)
	return nil
}

type fakeRepoManager struct {
	s *fakeSpaces
	r *fakeRecords
	c *fakeChanges
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{s: &fakeSpaces{}, r: &fakeRecords{}, c: &fakeChanges{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Spaces(dbx.DBTX) spaces.Repository           { return m.s }
func (m *fakeRepoManager) Records(dbx.DBTX) records.Repository         { return m.r }
func (m *fakeRepoManager) Changes(dbx.DBTX) changes.Repository         { return m.c }

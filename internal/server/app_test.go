package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kentxun/anymind/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubOpenDB(t *testing.T, fn func(context.Context, string) (*sql.DB, error)) {
	t.Helper()
	old := openDB
	t.Cleanup(func() { openDB = old })
	openDB = fn
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogFile = t.TempDir() + "/server.log"
	return cfg
}

func TestNewApp_DBError(t *testing.T) {
	stubOpenDB(t, func(context.Context, string) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	})

	_, err := NewApp(context.Background(), testConfig(t))
	assert.ErrorContains(t, err, "db init error")
}

func TestNewApp_MigrationError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	stubOpenDB(t, func(context.Context, string) (*sql.DB, error) { return db, nil })

	_, err = NewApp(context.Background(), testConfig(t))
	assert.ErrorContains(t, err, "db migration error")
}

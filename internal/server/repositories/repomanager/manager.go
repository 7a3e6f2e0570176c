package repomanager

import (
	"context"
	"database/sql"

	"github.com/kentxun/anymind/internal/dbx"
	"github.com/kentxun/anymind/internal/server/repositories/changes"
	"github.com/kentxun/anymind/internal/server/repositories/records"
	"github.com/kentxun/anymind/internal/server/repositories/spaces"
)

// RepositoryManager vends repositories bound to a *sql.DB or a *sql.Tx, so
// services can run several of them in one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Spaces(db dbx.DBTX) spaces.Repository
	Records(db dbx.DBTX) records.Repository
	Changes(db dbx.DBTX) changes.Repository
}

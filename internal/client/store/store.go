// Package store is the local record store: a SQLite database holding
// records, their tag associations, the full-text index and the sync cursor.
//
// # Overview
//
// Every mutation (record row, tag rewrite and index rewrite) runs inside one
// transaction through a single-writer dbx.Writer, so readers never observe a
// record whose tags or index row are stale. Multi-statement reads run in
// their own read transaction and see one snapshot.
//
// # Error Handling
//
// Unknown or deleted ids are reported as a nil record with a nil error.
// Engine failures are returned wrapped with common.ErrStorage.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kentxun/anymind/internal/client/migrations"
	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/client/repositories/fts"
	"github.com/kentxun/anymind/internal/client/repositories/metadata"
	"github.com/kentxun/anymind/internal/client/repositories/records"
	tagrepo "github.com/kentxun/anymind/internal/client/repositories/tags"
	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/dbx"
	"github.com/kentxun/anymind/internal/logging"

	_ "modernc.org/sqlite"
)

// pragmas applied to every pooled connection.
const pragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// Repositories bundles the repositories bound to one DBTX.
type Repositories struct {
	Records  records.Repository
	Tags     tagrepo.Repository
	Index    fts.Index
	Metadata metadata.Repository
}

// Bind returns repositories working over db (a *sql.DB or *sql.Tx).
func Bind(db dbx.DBTX) Repositories {
	return Repositories{
		Records:  records.NewSQLiteRepository(db),
		Tags:     tagrepo.NewSQLiteRepository(db),
		Index:    fts.NewSQLiteIndex(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

type Store struct {
	db    *sql.DB
	w     *dbx.Writer
	log   logging.Logger
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator for new records.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// DSN builds the driver DSN for a database file.
func DSN(path string) string {
	return path + "?" + pragmas
}

// Open opens (creating if needed) the database file at path and prepares it.
func Open(ctx context.Context, path string, log logging.Logger, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", common.ErrStorage, path, err)
	}
	s, err := New(ctx, db, log, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New prepares an already opened database: it applies migrations, upgrades
// legacy schemas and normalizes the tag table. Tag normalization is best
// effort; its failures are logged only.
func New(ctx context.Context, db *sql.DB, log logging.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		db:    db,
		w:     dbx.NewWriter(db),
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}

	if err := migrations.Up(ctx, db); err != nil {
		return nil, fmt.Errorf("%w: migrate: %w", common.ErrStorage, err)
	}
	if err := s.w.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return upgradeSchema(ctx, tx, s.log)
	}); err != nil {
		return nil, fmt.Errorf("%w: upgrade schema: %w", common.ErrStorage, err)
	}

	s.NormalizeTagTable(ctx)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the pool for maintenance tasks such as backups.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) clock() time.Time {
	return s.now().UTC()
}

func (s *Store) read() Repositories {
	return Bind(s.db)
}

// view runs fn in a read transaction so multi-statement reads see one
// consistent snapshot. It does not take the writer lock.
func (s *Store) view(ctx context.Context, op string, fn func(ctx context.Context, r Repositories) error) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, Bind(tx))
	})
	if err != nil {
		return storageErr(op, err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, op string, fn func(ctx context.Context, r Repositories) error) error {
	err := s.w.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, Bind(tx))
	})
	if err != nil {
		return storageErr(op, err)
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrStorage, op, err)
}

func withTags(ctx context.Context, r Repositories, rec *models.Record) error {
	sys, usr, err := r.Tags.ForRecord(ctx, rec.ID)
	if err != nil {
		return err
	}
	rec.SystemTags, rec.UserTags = sys, usr
	return nil
}

// NormalizeTagTable merges tag rows left unnormalized by older versions.
// Errors are logged and swallowed; it is safe to run repeatedly.
func (s *Store) NormalizeTagTable(ctx context.Context) {
	var changed int
	err := s.write(ctx, "normalize tags", func(ctx context.Context, r Repositories) error {
		var err error
		changed, err = r.Tags.NormalizeTable(ctx)
		return err
	})
	if err != nil {
		s.log.Warn(ctx, "tag normalization failed", "error", err)
		return
	}
	if changed > 0 {
		s.log.Info(ctx, "tag table normalized", "changed", changed)
	}
}

// LoadSyncCursor returns the persisted cursor, 0 when unset or unreadable.
func (s *Store) LoadSyncCursor(ctx context.Context) (int64, error) {
	v, err := s.read().Metadata.Get(ctx, metadata.KeySyncCursor)
	if err != nil {
		return 0, storageErr("load cursor", err)
	}
	return parseCursor(ctx, s.log, v), nil
}

func parseCursor(ctx context.Context, log logging.Logger, v *string) int64 {
	if v == nil {
		return 0
	}
	n, err := strconv.ParseInt(*v, 10, 64)
	if err != nil {
		log.Warn(ctx, "ignoring malformed sync cursor", "value", *v)
		return 0
	}
	return n
}

// SaveSyncCursor persists cursor unless the stored one is already at or
// beyond it. The cursor never moves backward.
func (s *Store) SaveSyncCursor(ctx context.Context, cursor int64) error {
	return s.write(ctx, "save cursor", func(ctx context.Context, r Repositories) error {
		v, err := r.Metadata.Get(ctx, metadata.KeySyncCursor)
		if err != nil {
			return err
		}
		if cursor <= parseCursor(ctx, s.log, v) {
			return nil
		}
		return r.Metadata.Put(ctx, map[string]string{metadata.KeySyncCursor: strconv.FormatInt(cursor, 10)})
	})
}

// Settings returns all key/value settings, the cursor included.
func (s *Store) Settings(ctx context.Context) (map[string]string, error) {
	m, err := s.read().Metadata.List(ctx)
	if err != nil {
		return nil, storageErr("list settings", err)
	}
	return m, nil
}

// SaveSettings stores values in one transaction; an empty value deletes
// its key.
func (s *Store) SaveSettings(ctx context.Context, values map[string]string) error {
	return s.write(ctx, "save settings", func(ctx context.Context, r Repositories) error {
		return r.Metadata.Put(ctx, values)
	})
}

package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/dbx"
	"github.com/kentxun/anymind/internal/timex"
)

const recordColumns = `r.id, r.content, r.created_at, r.updated_at, r.week_key, r.deleted,
	r.local_version, r.server_rev, r.last_sync_at, r.sync_enabled, r.cloud_delete_pending`

// tagSep separates "<is_system><name>" items in aggregated tag columns.
const tagSep = "\x1f"

const tagsSubquery = `(SELECT GROUP_CONCAT(t.is_system || t.name, char(31))
	FROM record_tags rt JOIN tags t ON t.id = rt.tag_id
	WHERE rt.record_id = r.id)`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner, extra ...any) (*models.Record, error) {
	var (
		r                    models.Record
		createdAt, updatedAt string
		serverRev            sql.NullInt64
		lastSyncAt           sql.NullString
	)
	dest := []any{&r.ID, &r.Content, &createdAt, &updatedAt, &r.WeekKey, &r.Deleted,
		&r.LocalVersion, &serverRev, &lastSyncAt, &r.SyncEnabled, &r.CloudDeletePending}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	r.CreatedAt = timex.Parse(createdAt)
	r.UpdatedAt = timex.Parse(updatedAt)
	if serverRev.Valid {
		v := serverRev.Int64
		r.ServerRev = &v
	}
	if lastSyncAt.Valid {
		r.LastSyncAt = timex.ParseOptional(lastSyncAt.String)
	}
	return &r, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]models.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timex.Format(*t)
}

func nullRev(rev *int64) any {
	if rev == nil {
		return nil
	}
	return *rev
}

func affected(res sql.Result) (bool, error) {
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

// Insert writes a new row. Tags are not touched.
func (r *SQLiteRepository) Insert(ctx context.Context, rec *models.Record) error {
	query := `INSERT INTO records (id, content, created_at, updated_at, week_key, deleted,
			local_version, server_rev, last_sync_at, sync_enabled, cloud_delete_pending)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Content, timex.Format(rec.CreatedAt), timex.Format(rec.UpdatedAt), rec.WeekKey,
		rec.Deleted, rec.LocalVersion, nullRev(rec.ServerRev), nullTime(rec.LastSyncAt),
		rec.SyncEnabled, rec.CloudDeletePending)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Get returns a record by id including tombstones, or (nil, nil).
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records r WHERE r.id = ?`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// UpdateContent replaces the content of a live record and bumps its version.
func (r *SQLiteRepository) UpdateContent(ctx context.Context, id, content string, at time.Time) (bool, error) {
	query := `UPDATE records SET content = ?, updated_at = ?, local_version = local_version + 1
		WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, content, timex.Format(at), id)
	if err != nil {
		return false, fmt.Errorf("failed to update record: %w", err)
	}
	return affected(res)
}

// SoftDelete turns a live record into a tombstone.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE records SET deleted = 1, updated_at = ?, local_version = local_version + 1
		WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, timex.Format(at), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	return affected(res)
}

// ListPending returns every record the next push has to carry, tombstones
// included, oldest update first.
func (r *SQLiteRepository) ListPending(ctx context.Context) ([]models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records r
		WHERE (r.last_sync_at IS NULL OR r.updated_at > r.last_sync_at OR r.cloud_delete_pending = 1)
		  AND (r.sync_enabled = 1 OR r.cloud_delete_pending = 1)
		ORDER BY r.updated_at ASC, r.id ASC`
	res, err := r.list(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending records: %w", err)
	}
	return res, nil
}

// ListAll returns every row, tombstones included.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.Record, error) {
	res, err := r.list(ctx, `SELECT `+recordColumns+` FROM records r ORDER BY r.created_at ASC, r.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	return res, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, serverRev int64, syncTime time.Time) error {
	query := `UPDATE records SET server_rev = MAX(COALESCE(server_rev, 0), ?), last_sync_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, serverRev, timex.Format(syncTime), id); err != nil {
		return fmt.Errorf("failed to mark record synced: %w", err)
	}
	return nil
}

// MarkPushed acknowledges a push of the record snapshot taken at
// localVersion. If the row moved on since then, last_sync_at is set to
// fallback instead of syncTime so the newer edit stays pending.
func (r *SQLiteRepository) MarkPushed(ctx context.Context, id string, serverRev int64, syncTime time.Time, localVersion int64, fallback time.Time) error {
	query := `UPDATE records SET server_rev = MAX(COALESCE(server_rev, 0), ?),
			last_sync_at = CASE WHEN local_version = ? THEN ? ELSE ? END
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, serverRev, localVersion, timex.Format(syncTime), timex.Format(fallback), id)
	if err != nil {
		return fmt.Errorf("failed to mark record pushed: %w", err)
	}
	return nil
}

// SetSyncEnabled toggles sync on a live record. Enabling clears the cloud
// delete flag and last_sync_at so the record is pushed again; disabling
// stores markCloudDelete.
func (r *SQLiteRepository) SetSyncEnabled(ctx context.Context, id string, enabled, markCloudDelete bool, at time.Time) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if enabled {
		res, err = r.db.ExecContext(ctx, `UPDATE records SET sync_enabled = 1, cloud_delete_pending = 0,
				last_sync_at = NULL, updated_at = ?, local_version = local_version + 1
			WHERE id = ? AND deleted = 0`, timex.Format(at), id)
	} else {
		res, err = r.db.ExecContext(ctx, `UPDATE records SET sync_enabled = 0, cloud_delete_pending = ?,
				updated_at = ?, local_version = local_version + 1
			WHERE id = ? AND deleted = 0`, markCloudDelete, timex.Format(at), id)
	}
	if err != nil {
		return false, fmt.Errorf("failed to set sync flag: %w", err)
	}
	return affected(res)
}

func (r *SQLiteRepository) ClearCloudDeletePending(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE records SET cloud_delete_pending = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear cloud delete flag: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetServerRev(ctx context.Context, id string, serverRev int64) error {
	query := `UPDATE records SET server_rev = MAX(COALESCE(server_rev, 0), ?) WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, serverRev, id); err != nil {
		return fmt.Errorf("failed to set server rev: %w", err)
	}
	return nil
}

// ApplyTombstone records a remote delete: server_rev advances and
// last_sync_at becomes lastSyncAt (nil clears it).
func (r *SQLiteRepository) ApplyTombstone(ctx context.Context, id string, serverRev int64, lastSyncAt *time.Time) error {
	query := `UPDATE records SET server_rev = MAX(COALESCE(server_rev, 0), ?), last_sync_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, serverRev, nullTime(lastSyncAt), id); err != nil {
		return fmt.Errorf("failed to apply remote tombstone: %w", err)
	}
	return nil
}

// OverwriteFromRemote replaces content, timestamps, deletion state and sync
// bookkeeping with the remote's version. Local flags and version are kept.
func (r *SQLiteRepository) OverwriteFromRemote(ctx context.Context, rec *models.Record) error {
	query := `UPDATE records SET content = ?, created_at = ?, updated_at = ?, week_key = ?, deleted = ?,
			server_rev = MAX(COALESCE(server_rev, 0), ?), last_sync_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, rec.Content, timex.Format(rec.CreatedAt), timex.Format(rec.UpdatedAt),
		rec.WeekKey, rec.Deleted, nullRev(rec.ServerRev), nullTime(rec.LastSyncAt), rec.ID)
	if err != nil {
		return fmt.Errorf("failed to overwrite record: %w", err)
	}
	return nil
}

func groupKeyExpr(mode models.GroupingMode) (string, error) {
	switch mode {
	case models.GroupByDay:
		return "substr(r.created_at, 1, 10)", nil
	case models.GroupByMonth:
		return "substr(r.created_at, 1, 7)", nil
	case models.GroupByWeek, "":
		return "r.week_key", nil
	default:
		return "", fmt.Errorf("unknown grouping mode %q", mode)
	}
}

// GroupSummaries counts live records per group key, newest key first.
func (r *SQLiteRepository) GroupSummaries(ctx context.Context, mode models.GroupingMode) ([]models.GroupSummary, error) {
	key, err := groupKeyExpr(mode)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + key + ` AS group_key, COUNT(*) FROM records r
		WHERE r.deleted = 0 GROUP BY group_key ORDER BY group_key DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select group summaries: %w", err)
	}
	defer rows.Close()

	result := make([]models.GroupSummary, 0)
	for rows.Next() {
		var g models.GroupSummary
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, fmt.Errorf("failed to scan group summary: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group summaries: %w", err)
	}
	return result, nil
}

// Summaries lists live records matching f with their tags.
//
// Tag filtering joins the filter tags once per record; in AND mode the
// number of distinct matched names must equal the filter size.
func (r *SQLiteRepository) Summaries(ctx context.Context, f SummaryFilter) ([]models.Record, error) {
	var (
		sb    strings.Builder
		where []string
		args  []any
	)

	sb.WriteString(`SELECT ` + recordColumns + `, ` + tagsSubquery + ` AS tag_list FROM records r`)

	if len(f.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Tags)), ",")
		sb.WriteString(` JOIN record_tags rt_filter ON rt_filter.record_id = r.id
			JOIN tags t_filter ON t_filter.id = rt_filter.tag_id AND t_filter.name IN (` + placeholders + `)`)
		for _, t := range f.Tags {
			args = append(args, t)
		}
	}

	where = append(where, "r.deleted = 0")

	if f.Match != "" {
		where = append(where, "r.id IN (SELECT record_id FROM record_fts WHERE record_fts MATCH ?)")
		args = append(args, f.Match)
	}

	if f.GroupKey != "" {
		key, err := groupKeyExpr(f.Grouping)
		if err != nil {
			return nil, err
		}
		where = append(where, key+" = ?")
		args = append(args, f.GroupKey)
	}

	sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	sb.WriteString(" GROUP BY r.id")

	if len(f.Tags) > 0 && f.TagMode != models.TagFilterOr {
		sb.WriteString(" HAVING COUNT(DISTINCT t_filter.name) = ?")
		args = append(args, len(f.Tags))
	}

	sb.WriteString(" ORDER BY r.updated_at DESC, r.id ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select record summaries: %w", err)
	}
	defer rows.Close()

	result := make([]models.Record, 0)
	for rows.Next() {
		var tagList sql.NullString
		rec, err := scanRecord(rows, &tagList)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record summary: %w", err)
		}
		rec.SystemTags, rec.UserTags = splitTagList(tagList.String)
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record summaries: %w", err)
	}
	return result, nil
}

func splitTagList(s string) (system, user []string) {
	system, user = []string{}, []string{}
	if s == "" {
		return system, user
	}
	for _, item := range strings.Split(s, tagSep) {
		if len(item) < 2 {
			continue
		}
		if item[0] == '1' {
			system = append(system, item[1:])
		} else {
			user = append(user, item[1:])
		}
	}
	sort.Strings(system)
	sort.Strings(user)
	return system, user
}

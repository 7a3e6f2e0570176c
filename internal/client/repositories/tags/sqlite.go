// Package tags is the tag index: the tags table and the record_tags
// association.
//
// Tag names are stored canonical (see client/tags.Normalize) and unique;
// differently spelled inputs for the same tag land on one row. is_system is
// OR-ed forward on every write and never reverts to false.
package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/kentxun/anymind/internal/client/models"
	tagtext "github.com/kentxun/anymind/internal/client/tags"
	"github.com/kentxun/anymind/internal/dbx"
)

// Tag is one row of the tags table.
type Tag struct {
	ID       int64
	Name     string
	IsSystem bool
}

type Repository interface {
	Replace(ctx context.Context, recordID string, system, user []string) error
	ForRecord(ctx context.Context, recordID string) (system, user []string, err error)
	Find(ctx context.Context, name string) (*Tag, error)
	Summaries(ctx context.Context) ([]models.TagSummary, error)
	NormalizeTable(ctx context.Context) (int, error)
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Replace rewrites the record's associations wholesale: existing links are
// dropped and every tag is upserted and linked again. Calling it twice with
// the same sets leaves the same state.
func (r *SQLiteRepository) Replace(ctx context.Context, recordID string, system, user []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM record_tags WHERE record_id = ?`, recordID); err != nil {
		return fmt.Errorf("failed to clear record tags: %w", err)
	}
	if err := r.link(ctx, recordID, system, true); err != nil {
		return err
	}
	return r.link(ctx, recordID, user, false)
}

func (r *SQLiteRepository) link(ctx context.Context, recordID string, names []string, isSystem bool) error {
	for _, raw := range names {
		name := tagtext.Normalize(raw)
		if name == "" {
			continue
		}
		id, err := r.upsert(ctx, name, isSystem)
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO record_tags (record_id, tag_id) VALUES (?, ?)`, recordID, id)
		if err != nil {
			return fmt.Errorf("failed to link tag %s: %w", name, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) upsert(ctx context.Context, name string, isSystem bool) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO tags (name, is_system) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET is_system = MAX(tags.is_system, excluded.is_system)
		RETURNING id`, name, isSystem).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert tag %s: %w", name, err)
	}
	return id, nil
}

// ForRecord returns the record's tags split by the stored is_system flag.
func (r *SQLiteRepository) ForRecord(ctx context.Context, recordID string) (system, user []string, err error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.name, t.is_system FROM record_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.record_id = ?
		ORDER BY t.name`, recordID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to select record tags: %w", err)
	}
	defer rows.Close()

	system, user = []string{}, []string{}
	for rows.Next() {
		var (
			name string
			sys  bool
		)
		if err := rows.Scan(&name, &sys); err != nil {
			return nil, nil, fmt.Errorf("failed to scan record tag: %w", err)
		}
		if sys {
			system = append(system, name)
		} else {
			user = append(user, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate record tags: %w", err)
	}
	return system, user, nil
}

// Find looks a tag up by canonical name; (nil, nil) if absent.
func (r *SQLiteRepository) Find(ctx context.Context, name string) (*Tag, error) {
	var t Tag
	err := r.db.QueryRowContext(ctx, `SELECT id, name, is_system FROM tags WHERE name = ?`,
		tagtext.Normalize(name)).Scan(&t.ID, &t.Name, &t.IsSystem)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}
	return &t, nil
}

// Summaries counts live records per tag, most used first, then by name.
func (r *SQLiteRepository) Summaries(ctx context.Context) ([]models.TagSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.name, t.is_system, COUNT(DISTINCT r.id) AS cnt
		FROM tags t
		JOIN record_tags rt ON rt.tag_id = t.id
		JOIN records r ON r.id = rt.record_id AND r.deleted = 0
		GROUP BY t.id
		ORDER BY cnt DESC, t.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select tag summaries: %w", err)
	}
	defer rows.Close()

	result := make([]models.TagSummary, 0)
	for rows.Next() {
		var s models.TagSummary
		if err := rows.Scan(&s.Name, &s.IsSystem, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag summary: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag summaries: %w", err)
	}
	return result, nil
}

// NormalizeTable merges tag rows whose names share a canonical form. The
// lowest id survives, takes the canonical name and the OR of is_system;
// associations of the losers are re-pointed to it. Rows whose name has no
// canonical form are dropped. Returns the number of rows removed or renamed.
func (r *SQLiteRepository) NormalizeTable(ctx context.Context) (int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, is_system FROM tags ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("failed to select tags: %w", err)
	}

	groups := make(map[string][]Tag)
	var order []string
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.IsSystem); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan tag: %w", err)
		}
		canonical := tagtext.Normalize(t.Name)
		if _, seen := groups[canonical]; !seen {
			order = append(order, canonical)
		}
		groups[canonical] = append(groups[canonical], t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("failed to iterate tags: %w", err)
	}
	rows.Close()

	sort.Strings(order)

	changed := 0
	for _, canonical := range order {
		group := groups[canonical]

		if canonical == "" {
			for _, t := range group {
				if err := r.drop(ctx, t.ID); err != nil {
					return changed, err
				}
				changed++
			}
			continue
		}

		survivor := group[0]
		isSystem := survivor.IsSystem
		for _, loser := range group[1:] {
			isSystem = isSystem || loser.IsSystem
			if err := r.merge(ctx, loser.ID, survivor.ID); err != nil {
				return changed, err
			}
			changed++
		}

		if survivor.Name == canonical && survivor.IsSystem == isSystem {
			continue
		}
		_, err := r.db.ExecContext(ctx, `UPDATE tags SET name = ?, is_system = ? WHERE id = ?`,
			canonical, isSystem, survivor.ID)
		if err != nil {
			return changed, fmt.Errorf("failed to rename tag %d: %w", survivor.ID, err)
		}
		changed++
	}
	return changed, nil
}

func (r *SQLiteRepository) merge(ctx context.Context, from, into int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO record_tags (record_id, tag_id)
		SELECT record_id, ? FROM record_tags WHERE tag_id = ?`, into, from)
	if err != nil {
		return fmt.Errorf("failed to re-point tag %d: %w", from, err)
	}
	return r.drop(ctx, from)
}

func (r *SQLiteRepository) drop(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM record_tags WHERE tag_id = ?`, id); err != nil {
		return fmt.Errorf("failed to unlink tag %d: %w", id, err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete tag %d: %w", id, err)
	}
	return nil
}

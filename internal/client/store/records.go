package store

import (
	"context"
	"time"

	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/client/preview"
	"github.com/kentxun/anymind/internal/client/repositories/records"
	"github.com/kentxun/anymind/internal/client/search"
	"github.com/kentxun/anymind/internal/client/tags"
	"github.com/kentxun/anymind/internal/timex"
)

// CreateRecord stores a new record with tags extracted from content.
func (s *Store) CreateRecord(ctx context.Context, content string) (*models.Record, error) {
	now := s.clock()
	rec := &models.Record{
		ID:           s.newID(),
		Content:      content,
		CreatedAt:    now,
		UpdatedAt:    now,
		WeekKey:      timex.WeekKey(now),
		LocalVersion: 1,
	}
	rec.SystemTags, rec.UserTags = tags.Split(tags.Extract(content))

	err := s.write(ctx, "create record", func(ctx context.Context, r Repositories) error {
		return insertRecord(ctx, r, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func insertRecord(ctx context.Context, r Repositories, rec *models.Record) error {
	if err := r.Records.Insert(ctx, rec); err != nil {
		return err
	}
	if err := r.Tags.Replace(ctx, rec.ID, rec.SystemTags, rec.UserTags); err != nil {
		return err
	}
	if rec.Deleted {
		return r.Index.Remove(ctx, rec.ID)
	}
	return r.Index.Replace(ctx, rec.ID, rec.Content)
}

// UpdateRecord replaces the content of a live record, re-deriving its tags
// and index row. Returns nil when id is unknown or deleted.
func (s *Store) UpdateRecord(ctx context.Context, id, content string) (*models.Record, error) {
	var out *models.Record
	err := s.write(ctx, "update record", func(ctx context.Context, r Repositories) error {
		ok, err := r.Records.UpdateContent(ctx, id, content, s.clock())
		if err != nil || !ok {
			return err
		}
		sys, usr := tags.Split(tags.Extract(content))
		if err := r.Tags.Replace(ctx, id, sys, usr); err != nil {
			return err
		}
		if err := r.Index.Replace(ctx, id, content); err != nil {
			return err
		}
		out, err = r.Records.Get(ctx, id)
		if err != nil || out == nil {
			return err
		}
		return withTags(ctx, r, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SoftDelete tombstones a live record and drops its index row. Tag
// associations stay. Unknown ids are a no-op.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	return s.write(ctx, "delete record", func(ctx context.Context, r Repositories) error {
		ok, err := r.Records.SoftDelete(ctx, id, s.clock())
		if err != nil || !ok {
			return err
		}
		return r.Index.Remove(ctx, id)
	})
}

// FetchRecord returns a live record with its tags, or nil.
func (s *Store) FetchRecord(ctx context.Context, id string) (*models.Record, error) {
	var out *models.Record
	err := s.view(ctx, "fetch record", func(ctx context.Context, r Repositories) error {
		rec, err := r.Records.Get(ctx, id)
		if err != nil || rec == nil || rec.Deleted {
			return err
		}
		out = rec
		return withTags(ctx, r, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) FetchGroupSummaries(ctx context.Context, mode models.GroupingMode) ([]models.GroupSummary, error) {
	res, err := s.read().Records.GroupSummaries(ctx, mode)
	if err != nil {
		return nil, storageErr("group summaries", err)
	}
	return res, nil
}

func (s *Store) FetchTagSummaries(ctx context.Context) ([]models.TagSummary, error) {
	res, err := s.read().Tags.Summaries(ctx)
	if err != nil {
		return nil, storageErr("tag summaries", err)
	}
	return res, nil
}

// FetchRecordSummaries runs q against the database. Tag names in q are
// canonicalized first; AND is the default tag mode.
func (s *Store) FetchRecordSummaries(ctx context.Context, q models.RecordQuery) ([]models.RecordSummary, error) {
	f := records.SummaryFilter{
		Tags:     tags.Union(q.Tags),
		TagMode:  q.TagMode,
		Grouping: q.Grouping,
		GroupKey: q.GroupKey,
	}
	if f.TagMode == "" {
		f.TagMode = models.TagFilterAnd
	}
	if expr, ok := search.MatchExpression(q.Search); ok {
		f.Match = expr
	}

	rows, err := s.read().Records.Summaries(ctx, f)
	if err != nil {
		return nil, storageErr("record summaries", err)
	}

	out := make([]models.RecordSummary, 0, len(rows))
	for i := range rows {
		out = append(out, Summarize(&rows[i]))
	}
	return out, nil
}

// Summarize projects a record into its list row.
func Summarize(rec *models.Record) models.RecordSummary {
	return models.RecordSummary{
		ID:          rec.ID,
		Preview:     preview.Make(rec.Content),
		Tags:        rec.Tags(),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		WeekKey:     rec.WeekKey,
		LastSyncAt:  rec.LastSyncAt,
		SyncEnabled: rec.SyncEnabled,
		SyncStatus:  preview.Status(rec.UpdatedAt, rec.LastSyncAt, rec.SyncEnabled),
	}
}

// FetchPendingSyncChanges returns every record the next push must carry,
// tombstones and cloud-delete requests included.
func (s *Store) FetchPendingSyncChanges(ctx context.Context) ([]models.Record, error) {
	return s.listWithTags(ctx, "pending changes", func(ctx context.Context, r Repositories) ([]models.Record, error) {
		return r.Records.ListPending(ctx)
	})
}

// ExportRecords returns every record, tombstones included, with tags.
func (s *Store) ExportRecords(ctx context.Context) ([]models.Record, error) {
	return s.listWithTags(ctx, "export records", func(ctx context.Context, r Repositories) ([]models.Record, error) {
		return r.Records.ListAll(ctx)
	})
}

func (s *Store) listWithTags(ctx context.Context, op string, list func(context.Context, Repositories) ([]models.Record, error)) ([]models.Record, error) {
	var out []models.Record
	err := s.view(ctx, op, func(ctx context.Context, r Repositories) error {
		recs, err := list(ctx, r)
		if err != nil {
			return err
		}
		for i := range recs {
			if err := withTags(ctx, r, &recs[i]); err != nil {
				return err
			}
		}
		out = recs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSynced records an accepted remote revision.
func (s *Store) MarkSynced(ctx context.Context, id string, serverRev int64, syncTime time.Time) error {
	return s.write(ctx, "mark synced", func(ctx context.Context, r Repositories) error {
		return r.Records.MarkSynced(ctx, id, serverRev, syncTime)
	})
}

// MarkPushed is MarkSynced for a pushed snapshot: if the record was edited
// after the snapshot was taken it stays pending.
func (s *Store) MarkPushed(ctx context.Context, pushed models.Record, serverRev int64, syncTime time.Time) error {
	return s.write(ctx, "mark pushed", func(ctx context.Context, r Repositories) error {
		return r.Records.MarkPushed(ctx, pushed.ID, serverRev, syncTime, pushed.LocalVersion, pushed.UpdatedAt)
	})
}

// SetSyncEnabled toggles sync on a live record. Enabling clears
// cloudDeletePending and lastSyncAt; disabling sets cloudDeletePending to
// markCloudDelete. Returns the updated record or nil when id is unknown.
func (s *Store) SetSyncEnabled(ctx context.Context, id string, enabled, markCloudDelete bool) (*models.Record, error) {
	var out *models.Record
	err := s.write(ctx, "set sync", func(ctx context.Context, r Repositories) error {
		ok, err := r.Records.SetSyncEnabled(ctx, id, enabled, markCloudDelete, s.clock())
		if err != nil || !ok {
			return err
		}
		out, err = r.Records.Get(ctx, id)
		if err != nil || out == nil {
			return err
		}
		return withTags(ctx, r, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ClearCloudDeletePending(ctx context.Context, id string) error {
	return s.write(ctx, "clear cloud delete", func(ctx context.Context, r Repositories) error {
		return r.Records.ClearCloudDeletePending(ctx, id)
	})
}

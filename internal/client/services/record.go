package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kentxun/anymind/internal/client/models"
)

// RecordStore is the part of the local store used by RecordService.
type RecordStore interface {
	CreateRecord(ctx context.Context, content string) (*models.Record, error)
	UpdateRecord(ctx context.Context, id, content string) (*models.Record, error)
	SoftDelete(ctx context.Context, id string) error
	FetchRecord(ctx context.Context, id string) (*models.Record, error)
	FetchGroupSummaries(ctx context.Context, mode models.GroupingMode) ([]models.GroupSummary, error)
	FetchTagSummaries(ctx context.Context) ([]models.TagSummary, error)
	FetchRecordSummaries(ctx context.Context, q models.RecordQuery) ([]models.RecordSummary, error)
	SetSyncEnabled(ctx context.Context, id string, enabled, markCloudDelete bool) (*models.Record, error)
}

// RecordService is the record API offered to front ends.
type RecordService struct {
	store RecordStore
}

func NewRecordService(store RecordStore) *RecordService {
	return &RecordService{store: store}
}

func (s *RecordService) Create(ctx context.Context, content string) (*models.Record, error) {
	rec, err := s.store.CreateRecord(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("error creating record: %w", err)
	}
	return rec, nil
}

// Update returns nil when id does not name a live record.
func (s *RecordService) Update(ctx context.Context, id, content string) (*models.Record, error) {
	rec, err := s.store.UpdateRecord(ctx, id, content)
	if err != nil {
		return nil, fmt.Errorf("error updating record: %w", err)
	}
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("error deleting record: %w", err)
	}
	return nil
}

func (s *RecordService) Get(ctx context.Context, id string) (*models.Record, error) {
	rec, err := s.store.FetchRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving record: %w", err)
	}
	return rec, nil
}

func (s *RecordService) Groups(ctx context.Context, mode models.GroupingMode) ([]models.GroupSummary, error) {
	return s.store.FetchGroupSummaries(ctx, mode)
}

func (s *RecordService) Tags(ctx context.Context) ([]models.TagSummary, error) {
	return s.store.FetchTagSummaries(ctx)
}

// List runs q. When a tag-filtered query comes back empty, the query is
// repeated without tags and the filter is applied in memory, comparing
// names case-insensitively.
//
// TODO: drop the in-memory pass once stores created before tag
// normalization have all been through NormalizeTagTable.
func (s *RecordService) List(ctx context.Context, q models.RecordQuery) ([]models.RecordSummary, error) {
	res, err := s.store.FetchRecordSummaries(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	if len(res) > 0 || len(q.Tags) == 0 {
		return res, nil
	}

	unfiltered := q
	unfiltered.Tags = nil
	all, err := s.store.FetchRecordSummaries(ctx, unfiltered)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}

	out := make([]models.RecordSummary, 0)
	for _, r := range all {
		if matchTags(r.Tags, q.Tags, q.TagMode) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matchTags(have, want []string, mode models.TagFilterMode) bool {
	has := func(w string) bool {
		w = "#" + strings.TrimLeft(strings.TrimSpace(w), "#")
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
		return false
	}

	for _, w := range want {
		ok := has(w)
		if mode == models.TagFilterOr && ok {
			return true
		}
		if mode != models.TagFilterOr && !ok {
			return false
		}
	}
	return mode != models.TagFilterOr
}

// SetSyncEnabled toggles sync for a live record. Disabling asks for a
// remote delete only when the record has been seen by the remote. Returns
// nil when id is unknown.
func (s *RecordService) SetSyncEnabled(ctx context.Context, id string, enabled bool) (*models.Record, error) {
	rec, err := s.store.FetchRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving record: %w", err)
	}
	if rec == nil {
		return nil, nil
	}

	markCloudDelete := !enabled && rec.HasRemote()
	out, err := s.store.SetSyncEnabled(ctx, id, enabled, markCloudDelete)
	if err != nil {
		return nil, fmt.Errorf("error switching sync: %w", err)
	}
	return out, nil
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/dbx"
	"github.com/kentxun/anymind/internal/server/models"
	"github.com/kentxun/anymind/internal/server/repositories/repomanager"
)

// SyncService accepts pushed records and serves pulls for a space. Callers
// authenticate the space first (see SpaceService.Authenticate).
type SyncService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	pullLimitMax int
	now          func() time.Time
}

func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, pullLimitMax int) *SyncService {
	if pullLimitMax <= 0 {
		pullLimitMax = common.DefaultPullLimit
	}
	return &SyncService{db: db, repomanager: m, pullLimitMax: pullLimitMax, now: time.Now}
}

// Push stores every change in one transaction. Each change gets a fresh
// revision of the space; a change is flagged as a conflict when the record
// moved past the base revision the device knew. The change is stored either
// way (last writer wins). It returns the per-change results and the space's
// highest revision.
func (s *SyncService) Push(ctx context.Context, spaceID, deviceID string, in []models.IncomingChange) ([]models.PushResult, int64, error) {
	for _, c := range in {
		if c.ID == "" {
			return nil, 0, fmt.Errorf("change without id: %w", common.ErrInvalidRequest)
		}
	}

	results := make([]models.PushResult, 0, len(in))
	var maxRev int64

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		spaces := s.repomanager.Spaces(tx)
		records := s.repomanager.Records(tx)
		changes := s.repomanager.Changes(tx)

		for _, c := range in {
			// NextRev locks the space row, so concurrent pushes to one
			// space read existing revisions in order.
			rev, err := spaces.NextRev(ctx, spaceID)
			if err != nil {
				return fmt.Errorf("error allocating revision: %w", err)
			}

			existing, err := records.GetRev(ctx, spaceID, c.ID)
			if err != nil {
				return fmt.Errorf("error reading record revision: %w", err)
			}
			conflict := c.BaseRev != nil && existing != nil && *existing > *c.BaseRev

			now := s.now().UTC()
			if err := changes.Insert(ctx, &models.Change{
				SpaceID:         spaceID,
				Rev:             rev,
				RecordID:        c.ID,
				Deleted:         c.Deleted,
				DeviceID:        deviceID,
				ServerUpdatedAt: now,
			}); err != nil {
				return fmt.Errorf("error logging change: %w", err)
			}

			if err := records.Upsert(ctx, &models.Record{
				SpaceID:         spaceID,
				ID:              c.ID,
				Content:         c.Content,
				SystemTags:      c.SystemTags,
				UserTags:        c.UserTags,
				CreatedAt:       c.CreatedAt,
				UpdatedAt:       c.UpdatedAt,
				Deleted:         c.Deleted,
				ServerRev:       rev,
				ServerUpdatedAt: now,
				LastDeviceID:    deviceID,
			}); err != nil {
				return fmt.Errorf("error storing record: %w", err)
			}

			results = append(results, models.PushResult{
				ID:              c.ID,
				ServerRev:       rev,
				ServerUpdatedAt: now,
				Conflict:        conflict,
			})
		}

		var err error
		maxRev, err = spaces.CurrentRev(ctx, spaceID)
		if err != nil {
			return fmt.Errorf("error reading space revision: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return results, maxRev, nil
}

// Pull returns records of the space with a revision above since, oldest
// revision first, plus the space's highest revision as seen by the same
// read-only snapshot. A non-positive limit means the default page size;
// larger limits are clamped.
func (s *SyncService) Pull(ctx context.Context, spaceID string, since int64, limit int) ([]*models.Record, int64, error) {
	if since < 0 {
		since = 0
	}
	if limit <= 0 {
		limit = common.DefaultPullLimit
	}
	if limit > s.pullLimitMax {
		limit = s.pullLimitMax
	}

	var (
		recs   []*models.Record
		maxRev int64
	)
	// One snapshot: a push committing between the two reads would report a
	// revision the page does not contain.
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := dbx.WithTx(ctx, s.db, opts, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		recs, err = s.repomanager.Records(tx).SelectSince(ctx, spaceID, since, limit)
		if err != nil {
			return fmt.Errorf("error selecting records: %w", err)
		}
		maxRev, err = s.repomanager.Spaces(tx).CurrentRev(ctx, spaceID)
		if err != nil {
			return fmt.Errorf("error reading space revision: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return recs, maxRev, nil
}

package records

import (
	"context"
	"time"

	"github.com/kentxun/anymind/internal/client/models"
)

// SummaryFilter narrows Summaries. Tags must already be canonical.
type SummaryFilter struct {
	// Match is an FTS5 match expression; empty disables full-text filtering.
	Match    string
	Tags     []string
	TagMode  models.TagFilterMode
	Grouping models.GroupingMode
	GroupKey string
}

// Repository describes record row operations used by the record store.
type Repository interface {
	Insert(ctx context.Context, r *models.Record) error

	// Get returns the row regardless of its tombstone, or nil when absent.
	Get(ctx context.Context, id string) (*models.Record, error)

	UpdateContent(ctx context.Context, id, content string, at time.Time) (bool, error)
	SoftDelete(ctx context.Context, id string, at time.Time) (bool, error)

	ListPending(ctx context.Context) ([]models.Record, error)
	ListAll(ctx context.Context) ([]models.Record, error)

	MarkSynced(ctx context.Context, id string, serverRev int64, syncTime time.Time) error
	MarkPushed(ctx context.Context, id string, serverRev int64, syncTime time.Time, localVersion int64, fallback time.Time) error
	SetSyncEnabled(ctx context.Context, id string, enabled, markCloudDelete bool, at time.Time) (bool, error)
	ClearCloudDeletePending(ctx context.Context, id string) error

	SetServerRev(ctx context.Context, id string, serverRev int64) error
	ApplyTombstone(ctx context.Context, id string, serverRev int64, lastSyncAt *time.Time) error
	OverwriteFromRemote(ctx context.Context, r *models.Record) error

	GroupSummaries(ctx context.Context, mode models.GroupingMode) ([]models.GroupSummary, error)

	// Summaries returns live records, tags included, newest update first.
	Summaries(ctx context.Context, f SummaryFilter) ([]models.Record, error)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kentxun/anymind/internal/client/client"
	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/common"
	"github.com/kentxun/anymind/internal/logging"
)

// SyncConfig is supplied on every pass; the service keeps no settings.
type SyncConfig struct {
	Enabled     bool
	ServerURL   string
	SpaceID     string
	SpaceSecret string
	DeviceID    string
	PullLimit   int
}

// Configured reports whether a pass can talk to a remote.
func (c SyncConfig) Configured() bool {
	return c.Enabled &&
		strings.TrimSpace(c.ServerURL) != "" &&
		strings.TrimSpace(c.SpaceID) != "" &&
		strings.TrimSpace(c.SpaceSecret) != ""
}

func (c SyncConfig) credentials() client.Credentials {
	return client.Credentials{
		ServerURL:   strings.TrimSpace(c.ServerURL),
		SpaceID:     strings.TrimSpace(c.SpaceID),
		SpaceSecret: c.SpaceSecret,
		DeviceID:    c.DeviceID,
	}
}

type SyncStatus string

const (
	SyncDisabled SyncStatus = "disabled"
	SyncOK       SyncStatus = "ok"
	SyncFailed   SyncStatus = "failed"
)

// SyncResult summarizes one pass.
type SyncResult struct {
	Status    SyncStatus
	Message   string
	Pushed    int
	Pulled    int
	Conflicts int
	Cursor    int64
	Err       error
	At        time.Time
}

// SyncStore is the part of the local store used by the reconciler.
type SyncStore interface {
	FetchPendingSyncChanges(ctx context.Context) ([]models.Record, error)
	MarkPushed(ctx context.Context, pushed models.Record, serverRev int64, syncTime time.Time) error
	ClearCloudDeletePending(ctx context.Context, id string) error
	CreateConflictCopy(ctx context.Context, original models.Record) (*models.Record, error)
	ApplyRemoteChange(ctx context.Context, change models.RemoteChange) error
	LoadSyncCursor(ctx context.Context) (int64, error)
	SaveSyncCursor(ctx context.Context, cursor int64) error
}

// SyncService runs reconciliation passes. Passes are serialized: a second
// caller waits for the running pass to finish.
type SyncService struct {
	mu     sync.Mutex
	store  SyncStore
	client client.Client
	log    logging.Logger
	now    func() time.Time

	lastMu sync.RWMutex
	last   *SyncResult
}

func NewSyncService(store SyncStore, c client.Client, log logging.Logger) *SyncService {
	return &SyncService{store: store, client: c, log: log, now: time.Now}
}

// LastResult returns the outcome of the most recent pass, or nil.
func (s *SyncService) LastResult() *SyncResult {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

// Sync runs one push-then-pull pass. An unconfigured sync is reported as
// SyncDisabled, not as an error. Transport and storage failures end the
// pass with SyncFailed; local data is left as it was before the failing
// step and the next pass retries.
func (s *SyncService) Sync(ctx context.Context, cfg SyncConfig) SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.run(ctx, cfg)
	res.At = s.now().UTC()

	s.lastMu.Lock()
	s.last = &res
	s.lastMu.Unlock()
	return res
}

func (s *SyncService) run(ctx context.Context, cfg SyncConfig) SyncResult {
	if !cfg.Configured() {
		return SyncResult{Status: SyncDisabled, Message: "Sync is not configured", Err: common.ErrSyncNotConfigured}
	}
	creds := cfg.credentials()
	limit := cfg.PullLimit
	if limit <= 0 {
		limit = common.DefaultPullLimit
	}

	loaded, err := s.store.LoadSyncCursor(ctx)
	if err != nil {
		return s.failed(ctx, "load cursor", err, SyncResult{})
	}
	res := SyncResult{Cursor: loaded}

	pushMax, err := s.push(ctx, creds, &res)
	if err != nil {
		return s.failed(ctx, "push", err, res)
	}

	pullMax, applied, err := s.pull(ctx, creds, loaded, limit, &res)
	if err != nil {
		// Only changes that were fully applied move the cursor.
		if applied > loaded {
			if serr := s.store.SaveSyncCursor(ctx, applied); serr == nil {
				res.Cursor = applied
			}
		}
		return s.failed(ctx, "pull", err, res)
	}

	next := max(loaded, pushMax, pullMax)
	if next > 0 && next > loaded {
		if err := s.store.SaveSyncCursor(ctx, next); err != nil {
			return s.failed(ctx, "save cursor", err, res)
		}
		res.Cursor = next
	}

	res.Status = SyncOK
	res.Message = fmt.Sprintf("Synced: %d pushed, %d pulled", res.Pushed, res.Pulled)
	if res.Conflicts > 0 {
		res.Message += fmt.Sprintf(", %d conflict copies", res.Conflicts)
	}
	s.log.Info(ctx, "sync pass finished", "pushed", res.Pushed, "pulled", res.Pulled,
		"conflicts", res.Conflicts, "cursor", res.Cursor)
	return res
}

func (s *SyncService) failed(ctx context.Context, step string, err error, res SyncResult) SyncResult {
	s.log.Warn(ctx, "sync pass failed", "step", step, "error", err)
	res.Status = SyncFailed
	res.Err = fmt.Errorf("%s: %w", step, err)
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		res.Message = "Sync failed: space credentials were rejected"
	case errors.Is(err, common.ErrNotFound):
		res.Message = "Sync failed: space does not exist on the server"
	default:
		res.Message = "Sync failed: " + err.Error()
	}
	return res
}

// push sends the pending set and records the verdicts. It returns the
// highest revision acknowledged.
func (s *SyncService) push(ctx context.Context, creds client.Credentials, res *SyncResult) (int64, error) {
	pending, err := s.store.FetchPendingSyncChanges(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	byID := make(map[string]models.Record, len(pending))
	changes := make([]models.LocalChange, 0, len(pending))
	for _, rec := range pending {
		byID[rec.ID] = rec
		changes = append(changes, models.LocalChange{
			ID:         rec.ID,
			Content:    rec.Content,
			SystemTags: rec.SystemTags,
			UserTags:   rec.UserTags,
			CreatedAt:  rec.CreatedAt,
			UpdatedAt:  rec.UpdatedAt,
			Deleted:    rec.Deleted || rec.CloudDeletePending,
			BaseRev:    rec.ServerRev,
		})
	}

	out, err := s.client.Push(ctx, creds, changes)
	if err != nil {
		return 0, err
	}

	syncTime := s.now().UTC()
	var maxRev int64
	for _, ack := range out.Acks {
		maxRev = max(maxRev, ack.ServerRev)

		original, ok := byID[ack.ID]
		if !ok {
			s.log.Warn(ctx, "push result for unknown record", "id", ack.ID)
			continue
		}
		if err := s.store.MarkPushed(ctx, original, ack.ServerRev, syncTime); err != nil {
			return 0, err
		}
		if original.CloudDeletePending {
			if err := s.store.ClearCloudDeletePending(ctx, original.ID); err != nil {
				return 0, err
			}
		}
		if ack.Conflict {
			cp, err := s.store.CreateConflictCopy(ctx, original)
			if err != nil {
				return 0, err
			}
			res.Conflicts++
			s.log.Info(ctx, "conflict copy created", "id", original.ID, "copy", cp.ID)
		}
		res.Pushed++
	}
	return max(maxRev, out.ServerRevMax), nil
}

// pull fetches pages since the cursor until a short page and applies them
// in order. It returns the remote's highest revision and the revision of
// the last applied change. Application stops at the first failing change.
func (s *SyncService) pull(ctx context.Context, creds client.Credentials, since int64, limit int, res *SyncResult) (int64, int64, error) {
	var (
		serverMax int64
		applied   = since
	)
	for {
		page, err := s.client.Pull(ctx, creds, since, limit)
		if err != nil {
			return 0, applied, err
		}
		serverMax = max(serverMax, page.ServerRevMax)

		for _, ch := range page.Changes {
			if err := s.store.ApplyRemoteChange(ctx, ch); err != nil {
				return 0, applied, fmt.Errorf("apply %s: %w", ch.ID, err)
			}
			applied = max(applied, ch.ServerRev)
			res.Pulled++
		}

		if len(page.Changes) < limit {
			return serverMax, applied, nil
		}
		last := page.Changes[len(page.Changes)-1].ServerRev
		if last <= since {
			s.log.Warn(ctx, "remote returned a full page without progress", "since", since, "last", last)
			return serverMax, applied, nil
		}
		since = last
	}
}

// CreateSpace asks the remote at serverURL for a new space.
func (s *SyncService) CreateSpace(ctx context.Context, serverURL, name string) (*models.Space, error) {
	if strings.TrimSpace(serverURL) == "" {
		return nil, common.ErrSyncNotConfigured
	}
	sp, err := s.client.CreateSpace(ctx, strings.TrimSpace(serverURL), strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("error creating space: %w", err)
	}
	return sp, nil
}

// Ping checks that the configured remote answers.
func (s *SyncService) Ping(ctx context.Context, cfg SyncConfig) error {
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return common.ErrSyncNotConfigured
	}
	return s.client.Ping(ctx, strings.TrimSpace(cfg.ServerURL))
}

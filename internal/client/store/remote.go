package store

import (
	"context"
	"fmt"

	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/client/tags"
	"github.com/kentxun/anymind/internal/timex"
)

// ConflictHeader prefixes the content of a conflict copy.
const ConflictHeader = "[CONFLICT COPY] Original ID: "

// CreateConflictCopy stores a new, non-syncing record holding original's
// content under a conflict header, tagged with original's tags plus
// #conflict.
func (s *Store) CreateConflictCopy(ctx context.Context, original models.Record) (*models.Record, error) {
	now := s.clock()
	rec := &models.Record{
		ID:           s.newID(),
		Content:      fmt.Sprintf("%s%s\n\n%s", ConflictHeader, original.ID, original.Content),
		CreatedAt:    now,
		UpdatedAt:    now,
		WeekKey:      timex.WeekKey(now),
		LocalVersion: 1,
		SystemTags:   tags.Union(original.SystemTags, []string{tags.ConflictTag}),
		UserTags:     tags.Union(original.UserTags),
	}

	err := s.write(ctx, "create conflict copy", func(ctx context.Context, r Repositories) error {
		return insertRecord(ctx, r, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ApplyRemoteChange merges one pulled change into the store:
//
//   - local record with sync off: only server_rev is recorded;
//   - remote tombstone: server_rev is recorded and last_sync_at is set when
//     the local copy is deleted too, cleared otherwise so it is pushed again;
//     unknown ids are ignored;
//   - live remote content for a known record: content, timestamps, deletion
//     state and tags are overwritten, unless the change is older than the
//     local server_rev, or not newer while the local copy is still pending
//     (an echo of this device's own push); then only server_rev is recorded;
//   - unknown record: inserted with sync enabled and local version 0.
func (s *Store) ApplyRemoteChange(ctx context.Context, change models.RemoteChange) error {
	return s.write(ctx, "apply remote change", func(ctx context.Context, r Repositories) error {
		existing, err := r.Records.Get(ctx, change.ID)
		if err != nil {
			return err
		}
		now := s.clock()

		if existing != nil && !existing.SyncEnabled {
			return r.Records.SetServerRev(ctx, change.ID, change.ServerRev)
		}

		if change.Deleted {
			if existing == nil {
				return nil
			}
			if existing.Deleted {
				return r.Records.ApplyTombstone(ctx, change.ID, change.ServerRev, &now)
			}
			return r.Records.ApplyTombstone(ctx, change.ID, change.ServerRev, nil)
		}

		if existing != nil && existing.ServerRev != nil {
			local := *existing.ServerRev
			if change.ServerRev < local {
				s.log.Debug(ctx, "skipping stale remote change", "id", change.ID,
					"remote_rev", change.ServerRev, "local_rev", local)
				return nil
			}
			// Edited after the push was built: keep the edit pending.
			if change.ServerRev == local && existing.IsPending() {
				s.log.Debug(ctx, "keeping local edit over pushed revision", "id", change.ID, "rev", local)
				return r.Records.SetServerRev(ctx, change.ID, change.ServerRev)
			}
		}

		// A remote updated_at ahead of the local clock would leave the record
		// pending after every pass.
		syncTime := now
		if change.UpdatedAt.After(syncTime) {
			syncTime = change.UpdatedAt.UTC()
		}
		rev := change.ServerRev
		rec := &models.Record{
			ID:          change.ID,
			Content:     change.Content,
			CreatedAt:   change.CreatedAt.UTC(),
			UpdatedAt:   change.UpdatedAt.UTC(),
			WeekKey:     timex.WeekKey(change.CreatedAt),
			ServerRev:   &rev,
			LastSyncAt:  &syncTime,
			SyncEnabled: true,
		}
		rec.SystemTags, rec.UserTags = remoteTags(change)

		if existing == nil {
			return insertRecord(ctx, r, rec)
		}

		if err := r.Records.OverwriteFromRemote(ctx, rec); err != nil {
			return err
		}
		if err := r.Tags.Replace(ctx, rec.ID, rec.SystemTags, rec.UserTags); err != nil {
			return err
		}
		return r.Index.Replace(ctx, rec.ID, rec.Content)
	})
}

// remoteTags keeps the remote's system/user assignment, canonicalized.
func remoteTags(change models.RemoteChange) (system, user []string) {
	return tags.Union(change.SystemTags), tags.Union(change.UserTags)
}

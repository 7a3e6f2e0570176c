package httpapi

import (
	"github.com/kentxun/anymind/internal/protocol"
	"github.com/kentxun/anymind/internal/server/models"
	"github.com/kentxun/anymind/internal/timex"
)

func toIncoming(in []protocol.SyncChange) []models.IncomingChange {
	out := make([]models.IncomingChange, 0, len(in))
	for _, c := range in {
		out = append(out, models.IncomingChange{
			ID:         c.ID,
			Content:    c.Content,
			SystemTags: c.SystemTags,
			UserTags:   c.UserTags,
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
			Deleted:    c.Deleted,
			BaseRev:    c.BaseRev,
		})
	}
	return out
}

func toPushResults(in []models.PushResult) []protocol.PushResult {
	out := make([]protocol.PushResult, 0, len(in))
	for _, r := range in {
		out = append(out, protocol.PushResult{
			ID:              r.ID,
			ServerRev:       r.ServerRev,
			ServerUpdatedAt: timex.Format(r.ServerUpdatedAt),
			Conflict:        r.Conflict,
		})
	}
	return out
}

func toPullChanges(in []*models.Record) []protocol.PullChange {
	out := make([]protocol.PullChange, 0, len(in))
	for _, r := range in {
		out = append(out, protocol.PullChange{
			ID:              r.ID,
			Content:         r.Content,
			SystemTags:      orEmpty(r.SystemTags),
			UserTags:        orEmpty(r.UserTags),
			CreatedAt:       r.CreatedAt,
			UpdatedAt:       r.UpdatedAt,
			Deleted:         r.Deleted,
			ServerRev:       r.ServerRev,
			ServerUpdatedAt: timex.Format(r.ServerUpdatedAt),
		})
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

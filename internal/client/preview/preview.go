// Package preview renders the short, list-friendly view of a record: its
// preview line and sync status.
package preview

import (
	"strings"
	"time"

	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/client/tags"
)

// MaxRunes is the preview length before truncation.
const MaxRunes = 120

// Empty is shown for records without visible text.
const Empty = "(empty)"

// Make returns the first line of content that is not tag-only, trimmed and
// truncated to MaxRunes runes followed by "...". When every line is tag-only
// the whole content is used.
func Make(content string) string {
	candidate := content
	for _, line := range strings.Split(content, "\n") {
		if !tags.IsTagOnlyLine(line) {
			candidate = line
			break
		}
	}

	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return Empty
	}
	r := []rune(trimmed)
	if len(r) > MaxRunes {
		return string(r[:MaxRunes]) + "..."
	}
	return trimmed
}

// Status classifies a record for display.
func Status(updatedAt time.Time, lastSyncAt *time.Time, syncEnabled bool) models.SyncStatus {
	if !syncEnabled {
		return models.SyncDisabled
	}
	if lastSyncAt == nil || updatedAt.After(*lastSyncAt) {
		return models.SyncPending
	}
	return models.SyncSynced
}

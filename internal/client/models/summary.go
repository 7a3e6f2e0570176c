package models

import "time"

// SyncStatus is the display state of a record.
type SyncStatus string

const (
	SyncDisabled SyncStatus = "Sync disabled"
	SyncPending  SyncStatus = "Not synced"
	SyncSynced   SyncStatus = "Synced"
)

type GroupSummary struct {
	Key   string
	Count int
}

type TagSummary struct {
	Name     string
	IsSystem bool
	Count    int
}

// RecordSummary is a list row.
type RecordSummary struct {
	ID          string
	Preview     string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	WeekKey     string
	LastSyncAt  *time.Time
	SyncEnabled bool
	SyncStatus  SyncStatus
}

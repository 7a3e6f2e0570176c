// Package models defines client-side data models shared by the record store,
// the sync reconciler and the CLI.
package models

import "time"

// Record is one note in the local store.
type Record struct {
	// ID is an opaque, globally unique identifier (UUID for local records).
	ID string

	// Content is the raw note text, inline #tags included.
	Content string

	// CreatedAt and UpdatedAt are UTC timestamps.
	CreatedAt time.Time
	UpdatedAt time.Time

	// WeekKey is the ISO week label derived from CreatedAt, e.g. "2024-W05".
	WeekKey string

	// Deleted marks a tombstone kept for sync bookkeeping.
	Deleted bool

	// LocalVersion is bumped on every local mutation. Never transmitted.
	LocalVersion int64

	// ServerRev is the remote revision, nil until the remote has seen the record.
	ServerRev *int64

	// LastSyncAt is the time of the last successful reconciliation.
	LastSyncAt *time.Time

	// SyncEnabled opts the record into push/pull.
	SyncEnabled bool

	// CloudDeletePending asks the next push to tombstone the remote copy
	// after sync was switched off locally.
	CloudDeletePending bool

	SystemTags []string
	UserTags   []string
}

// Tags returns system tags followed by user tags.
func (r *Record) Tags() []string {
	out := make([]string, 0, len(r.SystemTags)+len(r.UserTags))
	out = append(out, r.SystemTags...)
	return append(out, r.UserTags...)
}

// HasRemote reports whether the record has ever reached the remote.
func (r *Record) HasRemote() bool {
	return r.ServerRev != nil || r.LastSyncAt != nil
}

// IsPending mirrors the pending-sync predicate of the store.
func (r *Record) IsPending() bool {
	if !r.SyncEnabled && !r.CloudDeletePending {
		return false
	}
	return r.LastSyncAt == nil || r.UpdatedAt.After(*r.LastSyncAt) || r.CloudDeletePending
}

// SyncState is the per-record participation state of the sync state machine.
type SyncState int

const (
	// StateUnsynced: sync off, nothing owed to the remote.
	StateUnsynced SyncState = iota
	// StateEnabled: record takes part in push/pull.
	StateEnabled
	// StatePendingRemoteDelete: sync off, remote copy still has to be tombstoned.
	StatePendingRemoteDelete
)

func (s SyncState) String() string {
	switch s {
	case StateEnabled:
		return "enabled"
	case StatePendingRemoteDelete:
		return "pending-remote-delete"
	default:
		return "unsynced"
	}
}

// State returns the record's sync participation state.
func (r *Record) State() SyncState {
	switch {
	case r.SyncEnabled:
		return StateEnabled
	case r.CloudDeletePending:
		return StatePendingRemoteDelete
	default:
		return StateUnsynced
	}
}

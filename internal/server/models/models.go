// Package models defines the server-side persistence models of the sync
// remote.
package models

import "time"

// Space is an isolated record namespace guarded by a shared secret. Only the
// bcrypt hash of the secret is stored.
type Space struct {
	ID         string
	Name       string
	SecretHash string
	CurrentRev int64
	CreatedAt  time.Time
}

// Record is the remote's current state of one note. CreatedAt and UpdatedAt
// are kept as the client sent them.
type Record struct {
	SpaceID         string
	ID              string
	Content         string
	SystemTags      []string
	UserTags        []string
	CreatedAt       string
	UpdatedAt       string
	Deleted         bool
	ServerRev       int64
	ServerUpdatedAt time.Time
	LastDeviceID    string
}

// Change is one entry of a space's revision log.
type Change struct {
	SpaceID         string
	Rev             int64
	RecordID        string
	Deleted         bool
	DeviceID        string
	ServerUpdatedAt time.Time
}

// PushResult is the verdict for one pushed record.
type PushResult struct {
	ID              string
	ServerRev       int64
	ServerUpdatedAt time.Time
	Conflict        bool
}

// IncomingChange is a record as pushed by a device. BaseRev is the revision
// the device last saw, nil for records it never synced.
type IncomingChange struct {
	ID         string
	Content    string
	SystemTags []string
	UserTags   []string
	CreatedAt  string
	UpdatedAt  string
	Deleted    bool
	BaseRev    *int64
}

// Package metadata stores process-wide key/value state of the local store:
// the sync cursor and client settings collected by the CLI.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeySyncCursor  = "sync_cursor"
	KeyServerURL   = "server_url"
	KeySpaceID     = "space_id"
	KeySpaceSecret = "space_secret"
	KeyDeviceID    = "device_id"
	KeySyncEnabled = "sync_enabled"
)

type Repository interface {
	Get(ctx context.Context, key string) (*string, error)
	// Put upserts every pair; an empty value removes the key.
	Put(ctx context.Context, values map[string]string) error
	List(ctx context.Context) (map[string]string, error)
}

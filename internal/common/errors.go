// Package common defines shared constants and sentinel errors used across
// client and server layers of anymind. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrStorage wraps failures of the underlying persistence engine.
	ErrStorage = errors.New("storage failure")

	// ErrTransport marks a failed exchange with the sync remote: network
	// errors, non-2xx statuses and undecodable responses.
	ErrTransport = errors.New("transport failure")

	// ErrSyncNotConfigured is reported when sync is switched off or lacks
	// server URL or space credentials.
	ErrSyncNotConfigured = errors.New("sync not configured")

	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
)

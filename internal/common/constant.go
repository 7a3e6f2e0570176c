// Package common contains shared constants and sentinel errors used across
// anymind components.
package common

import "time"

const (
	// DefaultPullLimit bounds a single pull page when the caller does not
	// supply a limit.
	DefaultPullLimit = 200

	// DefaultHTTPTimeout applies to every outbound sync request.
	DefaultHTTPTimeout = 30 * time.Second

	// SpaceIDPrefix and SpaceSecretPrefix mark credentials minted by the
	// sync server.
	SpaceIDPrefix     = "spc_"
	SpaceSecretPrefix = "sec_"
)

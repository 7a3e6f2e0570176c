// Package migrations embeds the Postgres schema of the sync server. The
// repository manager applies it with goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

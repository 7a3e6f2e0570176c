// Package cli provides the interactive anymind command-line client.
//
// It wires configuration, the local record store, the sync and backup
// services, and a REPL. Notes are written locally first; a background
// ticker and the manual "sync" command reconcile them with the remote space.
//
// Key features:
//   - Create / edit / delete / show notes with inline #tags
//   - List with tag (AND/OR), group and full-text filters
//   - Group and tag summaries
//   - Per-record sync toggles, connect to or create a space
//   - Snapshot backup to S3-compatible storage
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

// Package services holds the client use cases built on the local store:
// RecordService for front ends, SyncService for reconciliation with a
// remote space and BackupService for snapshots to S3-compatible storage.
package services

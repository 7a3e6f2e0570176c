// Package records provides SQL access to the local records table.
//
// # Overview
//
// SQLiteRepository works over a dbx.DBTX so the record store can bind it to
// the transaction that also rewrites tag associations and the full-text
// index. The repository itself never opens transactions.
//
// # Data Model
//
// Timestamps are stored as canonical ISO-8601 text (see timex) so range
// comparisons can run in SQL. Rows are never hard-deleted: Deleted marks a
// tombstone and every listing query filters it out, while the sync queries
// (ListPending, ListAll, Get) still see tombstones.
//
// server_rev only moves forward: every statement that writes it takes the
// maximum of the stored and the incoming revision.
//
// Typical Usage
//
//	repo := records.NewSQLiteRepository(tx)
//	_ = repo.Insert(ctx, rec)
//	ok, _ := repo.UpdateContent(ctx, id, content, now)
//	pending, _ := repo.ListPending(ctx)
package records

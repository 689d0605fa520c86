// Package worklist models the synchronization of studies with the external
// modality worklist service.
//
// The package includes:
//   - Operation: the kind of order event sent to the worklist (save, update, void, ...)
//   - Outcome: the result reported by a worklist transport for one send
//   - SyncStatus: the outcome of the last attempted send for a study, as a
//     (state, operation) pair with a stable code such as OUT_OF_SYNC_VOID_FAILED
//
// Only the most recent operation is retained on a study; there is no history.
// An out-of-sync status can only be produced by folding a real transport outcome
// or by restoring a persisted code, never speculatively.
package worklist

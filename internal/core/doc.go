// Package core provides the business logic for ERP bulk imports.
//
// This package holds the import pipeline independent of any transport or
// storage. It can be used by the HTTP server, the CLI, or tests without
// modification.
//
// # Architecture
//
//   - Cache: reference tables and the log of one batch, built by [BuildCache].
//   - Importer: field validators, cross-field checks and record assembly
//     ([Importer.PreparePartner], [Importer.PrepareProduct]).
//   - Registry: import kinds registered at init time with [Register].
//   - Service: batch entry point ([Service.Run]) and batch history.
//   - Report: the log grouped by line and by field ([GroupLogs]).
//
// # Batch Flow
//
//  1. [Service.Run] takes a slot from the [ImportLimiter]
//  2. [BuildCache] loads reference data; a missing resolver credential aborts
//  3. Each row is prepared, creations staged on it are committed, and the
//     record is created; ids flow back into the cache for later rows
//  4. The log is grouped into a [Report]
//
// Rows are processed strictly in order. The cache has no locking and must
// not be shared between batches.
//
// # Log Entries
//
// Row and field problems never return errors. They are appended to the
// cache log as [LogEntry] values. Reset entries mark values that were
// discarded; the others flag kept values for human review.
//
// # Error Handling
//
// Batch-level failures are sentinel errors ([ErrMissingCredential],
// [ErrConflictingBankFields], ...). [MapError] turns them into coded user
// messages for the HTTP layer.
package core

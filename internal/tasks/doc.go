// Package tasks runs long songbook operations with real-time progress reporting.
//
// # Bulk Export
//
// [Exporter.BulkExport] writes many songbooks at once:
//
//  1. Resolves the requested session keys, or every songbook when none are given
//  2. Loads each songbook's requests under a [rate.Limiter] so the database is not hammered
//  3. Hands loaded songbooks to a pool of workers that write CSV, Markdown or text files
//  4. Writes export_manifest.json summarizing every success and failure
//
// One failing songbook never aborts the others; failures are recorded in the result and manifest.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking, so a slow or absent reader never stalls an export.
package tasks

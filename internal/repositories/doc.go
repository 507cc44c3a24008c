// Package repositories implements SQLite persistence for the song library and songbook sessions.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [SongRepository] : Song library with title/artist search
//   - [SongbookRepository] : Party sessions with session key lookups
//   - [SongEntryRepository] : Requests linking a song to a songbook, at most once per pair
//
// Sequence numbers provide stable, human-readable ordering (e.g., song #42, request #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories

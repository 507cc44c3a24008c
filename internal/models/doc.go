// Package models defines domain entities and persistence interfaces for the songbook service.
//
// Persistent entities:
//   - [Song] : Library song with title, artist, and raw tab content
//   - [Songbook] : Party session identified by a short session key, in power hour or noodle mode
//   - [SongEntry] : A guest's request for a song within a songbook, optionally flagged
//
// All persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models

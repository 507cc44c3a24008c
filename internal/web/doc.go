// Package web renders the song library and tabs as server-side HTML pages.
//
// The pages mirror the TUI: a searchable song list and a tab view that shows
// a few columns at a time with previous/next paging, a chord toggle, and
// transposition. All view state lives in the query string, so every page is a
// plain GET and can be bookmarked.
//
// Routes
//
//	GET /              → song list, ?q= searches title and artist
//	GET /songs/{id}    → tab columns, ?first=&transpose=&chords=
//
// Templates are embedded from templates/ and share layout.html.
package web

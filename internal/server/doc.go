// Package server provides HTTP routing, middleware, and the JSON API for the song library and songbook sessions.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] writes one structured log line per request and [Recover] turns panics into 500 responses.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so handlers read path
// wildcards with [http.Request.PathValue] and unsupported methods get a 405.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// Handlers dispatch on [http.Request.Pattern].
//
// # API
//
//	GET    /healthz
//	GET    /api/songs?artist=
//	GET    /api/songs/search?q=
//	GET    /api/songs/{id}
//	GET    /api/songs/{id}/columns?lines=&transpose=&first=&visible=&hide_chords=
//	GET    /api/songbooks
//	POST   /api/songbooks
//	GET    /api/songbooks/{key}
//	GET    /api/songbooks/{key}/details
//	GET    /api/songbooks/{key}/stats
//	POST   /api/song_entries
//	PATCH  /api/song_entries/{id}
//	DELETE /api/song_entries/{id}
//
// Missing records answer 404, a repeated song request answers 409, and invalid
// input (including a non-positive lines value) answers 400.
package server

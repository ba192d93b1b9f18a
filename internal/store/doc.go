// Package store holds the client-side catalog state shared by the CLI, the catalog server and the TUI.
//
// A [Store] is built once by the application root with [New] and injected where needed.
// It is mutated only through its actions and read through [Store.Snapshot].
//
// # Per-Category Records
//
// Each category (trending, every genre bucket, the current detail, search results and the genre
// catalog) carries its own [Record] with a [Status] of idle, loading, loaded or error. A fetch in
// one category never changes the status of another.
//
// # Stale Completions
//
// Every fetch takes a generation number for its category. When a newer fetch of the same
// category has started by the time a response arrives, the older response is dropped.
//
// # Shared Error Slot
//
// [State.Error] keeps the message of the most recent failure for views that show a single banner.
// Starting a fetch clears it. Detail fetches never set it: a failed detail is stored as a loaded
// record holding the [models.DetailUnavailable] sentinel.
//
// # Genre Buckets
//
// [FetchAllGenreMovies] fans out over the three home buckets with errgroup and commits all three
// in one update, or none of them when any request fails.
package store

// Package repositories implements SQLite persistence for the authentication shell.
//
// Key Implementations:
//   - [SessionRepository] : login sessions keyed by the opaque cookie value; expired rows are never returned
//   - [FavoriteRepository] : movies bookmarked per user, unique on (subject, movie_id)
//   - [OAuthStateRepository] : pending login attempts, each state consumed at most once
//
// Favorites carry a sequence number for stable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories

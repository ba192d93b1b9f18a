// Package models defines the domain types for the movie catalog.
//
// The package contains two categories of types:
//
// 1. Catalog DTOs decoded from the movie database API:
//   - [Movie] : summary shape used by lists (trending, genre discovery, search)
//   - [MovieDetail] : full record for a single movie, including appended credits and videos
//   - [Genre] : identifier and display name
//   - [MoviePage] : paginated envelope returned by search and discovery
//   - [DetailUnavailable] : the value that stands in for a detail that could not be loaded
//
// 2. Persistent entities backing the authentication shell:
//   - [Session] : a logged-in user, keyed by an opaque cookie value
//   - [Favorite] : a movie bookmarked by a user
//
// Persistent entities implement [Model] providing ID, timestamps and validation.
// The [Repository] interface defines the data access operations for them.
package models

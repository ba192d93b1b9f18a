// Package services implements the [MovieService] interface against the TMDB v3 REST API.
//
// # Movie Service Interface
//
// The catalog is read through five operations: weekly trending, genre discovery, movie details,
// title search and the genre list. [TMDBService] implements all of them with a single doRequest
// helper that attaches the api_key and language query parameters to every request.
//
// # Error Handling
//
// Every operation returns (T, error). Failures are [*APIError] values tagged with an [ErrorKind]:
//   - [KindRequest] : the request could not be built or the rate limiter wait was cancelled
//   - [KindNetwork] : the transport failed before a response arrived
//   - [KindStatus] : the API answered with a non-2xx status (status_message is surfaced)
//   - [KindDecode] : the body was not the expected JSON shape
//
// All of them match [shared.ErrAPIRequest] with errors.Is. A 404 from /movie/{id} also
// matches [shared.ErrMovieNotFound].
//
// # Detail Sentinel
//
// [DetailsOrUnavailable] wraps MovieDetails and never fails: on error it returns a
// [models.DetailUnavailable] value so views can render a per-movie "not found" state.
//
// # Request Pacing
//
// A token bucket from golang.org/x/time/rate gates every request. Waiting honours context
// cancellation. There is no retry.
//
// # Raw Access
//
// [APIService] performs unparsed GET requests with the same credentials, used by the
// `api` command to inspect payloads.
package services

// Package server is the local JSON catalog server with its login shell.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] patterns ("GET /movie/{id}") so method
// filtering and path wildcards come from the standard mux.
//
// # Routes
//
//	GET    /                 home: featured carousel, trending, three genre rows
//	GET    /movie/{id}       detail view; 404 with the unavailable sentinel when it cannot be loaded
//	GET    /search?q=        title search; empty q answers an empty list without a remote call
//	GET    /genres           genre catalog
//	GET    /404              not found page; every unknown path redirects here
//	GET    /favorites        saved movies (session required)
//	POST   /favorites/{id}   save a movie (session required)
//	DELETE /favorites/{id}   forget a movie (session required)
//	GET    /login, /callback, /logout
//
// Requests without a session on protected routes are redirected to "/".
//
// # Authentication
//
// [Authenticator] implements the OAuth2 authorization code flow against an external identity
// provider. The state parameter is persisted together with the page to return to and is consumed
// exactly once by the callback. A successful callback creates a session and sets its ID in an
// HTTP-only cookie read by [SessionMiddleware].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server

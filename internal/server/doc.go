// Package server provides HTTP routing, middleware and an in-memory implementation of the
// media tracking REST API for offline use and tests.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so handlers can read
// path values such as {id} with [http.Request.PathValue].
//
// # Mock API
//
// [NewAPI] mounts the same endpoints the client consumes under /api:
//
//   - POST /auth/login, /auth/register : issue HS256 tokens
//   - GET /genres : seeded reference data
//   - GET|POST /movies, GET|PUT|DELETE /movies/{id} : and the /series mirror
//
// Everything but /auth requires a bearer token. Items are scoped to the user that created them;
// editing or deleting someone else's item answers 404.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server

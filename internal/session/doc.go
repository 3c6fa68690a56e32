// Package session owns the authenticated session of the client and the route guard.
//
// # Session Manager
//
// [Manager] is the single owner of the session token. It is created once at startup from a persistent [Store]
// (the SQLite backed repositories.TokenRepository in production, [MemoryStore] in tests), caches the token in memory,
// and writes every change through to the store. The HTTP layer reads the token through [Manager] as an
// [oauth2.TokenSource]; nothing else touches the store directly.
//
// # Routes and the Guard
//
// [Route] names the screens of the client. [Guard] maps a requested route to the route actually shown:
// authenticated routes fall back to [RouteLogin] when no token is present. [Navigator] tracks the current route and
// applies the guard on every navigation; it is safe to call from the goroutines that run HTTP requests.
package session

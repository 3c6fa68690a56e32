package session

import "sync"

// Route names a screen of the client.
type Route string

const (
	RouteLogin    Route = "login"
	RouteRegister Route = "register"
	RouteHome     Route = "home"
	RouteMovies   Route = "movies"
	RouteSeries   Route = "series"
)

// Public reports whether the route is reachable without a session.
func (r Route) Public() bool {
	return r == RouteLogin || r == RouteRegister
}

// Guard returns route when it may be shown, or [RouteLogin] when it requires a session that is absent.
func Guard(m *Manager, route Route) Route {
	if route.Public() || (m != nil && m.Authenticated()) {
		return route
	}
	return RouteLogin
}

// Navigator tracks the current route. Every navigation passes through [Guard].
type Navigator struct {
	mu      sync.Mutex
	session *Manager
	current Route
}

// NewNavigator starts at start, guarded.
func NewNavigator(m *Manager, start Route) *Navigator {
	return &Navigator{session: m, current: Guard(m, start)}
}

// Current returns the route being shown.
func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate moves to route, or to login if the guard refuses it. It returns the route actually shown.
func (n *Navigator) Navigate(route Route) Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = Guard(n.session, route)
	return n.current
}

// RedirectToLogin forces the login screen unless an unauthenticated screen is already shown.
func (n *Navigator) RedirectToLogin() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.current.Public() {
		n.current = RouteLogin
	}
}

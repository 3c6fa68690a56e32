package services

import (
	"net/http"
	"strings"

	"github.com/desertthunder/watchlog/internal/session"
	"golang.org/x/oauth2"
)

// authTransport decides per request whether the bearer token is attached.
type authTransport struct {
	base    http.RoundTripper
	bearer  http.RoundTripper
	session *session.Manager
}

func newAuthTransport(base http.RoundTripper, m *session.Manager) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{
		base:    base,
		bearer:  &oauth2.Transport{Source: m.TokenSource(), Base: base},
		session: m,
	}
}

// IsAuthPath reports whether path targets an authentication endpoint.
func IsAuthPath(path string) bool {
	return strings.Contains(path, "/auth/")
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if IsAuthPath(req.URL.Path) || !t.session.Authenticated() {
		if req.Header.Get("Authorization") != "" {
			req = req.Clone(req.Context())
			req.Header.Del("Authorization")
		}
		return t.base.RoundTrip(req)
	}
	return t.bearer.RoundTrip(req)
}

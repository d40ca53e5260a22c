// Package httpbridge mounts the scope engine inside an HTTP server.
// It derives a Location from each request, threads nested scopes
// through the request context, and plays well with chi's Route
// grouping: each Scoped middleware derives its scope under whatever
// scope an enclosing group already established.
package httpbridge

import (
	"context"
	"net/http"

	"github.com/davidsavoie1/params-router/pkg/location"
	"github.com/davidsavoie1/params-router/pkg/scope"
)

// FromRequest derives a Location from an incoming request. The
// fragment never reaches the server, so Hash is always empty.
func FromRequest(r *http.Request) location.Location {
	return location.Location{
		Path:   r.URL.Path,
		Search: r.URL.RawQuery,
	}
}

type scopeKey struct{}

// WithScope returns a context carrying s.
func WithScope(ctx context.Context, s *scope.Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFrom returns the scope carried by ctx, or nil.
func ScopeFrom(ctx context.Context) *scope.Scope {
	s, _ := ctx.Value(scopeKey{}).(*scope.Scope)
	return s
}

// Params returns the pathname-derived parameters of the request's
// scope, or an empty mapping when no scope middleware ran.
func Params(r *http.Request) location.Params {
	if s := ScopeFrom(r.Context()); s != nil {
		return s.Params
	}
	return location.Params{}
}

// Scoped derives a scope for every request and stores it in the
// request context. The parent, if any, is the scope an enclosing
// Scoped middleware already derived, so nested chi route groups form
// a scope hierarchy matching the URL hierarchy.
func Scoped(c *scope.Composer, spec scope.Spec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := FromRequest(r)
			parent := ScopeFrom(r.Context())

			s, err := c.Derive(spec, parent, &loc)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), s)))
		})
	}
}

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/panelverse/panelverse-server/internal/auth"
	"github.com/panelverse/panelverse-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyIdentity contextKey = "identity"

// requireAuth is middleware that validates the bearer token and attaches the
// caller identity to the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := s.verifyRequest(r)
		if !ok {
			response.Unauthorized(w, "Invalid or missing token", s.logger)
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), ident)))
	})
}

// optionalAuth attaches the caller identity when a valid token is present and
// lets anonymous requests through. Handlers that need the identity for a
// specific parameter check for it themselves.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ident, ok := s.verifyRequest(r); ok {
			r = r.WithContext(withIdentity(r.Context(), ident))
		}
		next.ServeHTTP(w, r)
	})
}

// throttleUploads applies the per-author upload rate limit. Must run after
// requireAuth so the key is the verified identity, not a spoofable header.
func (s *Server) throttleUploads(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, _ := identityFrom(r.Context())
		if !s.uploadLimiter.Allow(ident.ID) {
			response.Error(w, http.StatusTooManyRequests, "Upload rate limit exceeded", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// verifyRequest extracts and verifies the bearer token.
func (s *Server) verifyRequest(r *http.Request) (auth.Identity, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return auth.Identity{}, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return auth.Identity{}, false
	}

	ident, err := s.verifier.Verify(parts[1])
	if err != nil {
		return auth.Identity{}, false
	}
	return ident, true
}

func withIdentity(ctx context.Context, ident auth.Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, ident)
}

// identityFrom extracts the authenticated identity from request context.
func identityFrom(ctx context.Context) (auth.Identity, bool) {
	ident, ok := ctx.Value(contextKeyIdentity).(auth.Identity)
	return ident, ok
}

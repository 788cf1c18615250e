package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/video-stream/shelf/internal/auth"
	"github.com/video-stream/shelf/internal/logging"
)

type contextKey string

const identityKey contextKey = "identity"

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// SessionToken returns the raw session cookie value, or "".
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// Identify resolves the caller through provider and stores the identity in
// the request context. Broken or missing sessions continue as anonymous.
func Identify(provider auth.IdentityProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := provider.Resolve(r.Context(), SessionToken(r))
			if err != nil {
				logging.Err(log.Ctx(r.Context()).Error(), err).Msg("session lookup failed")
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			if id != nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r) == nil {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePrivileged rejects callers without the privilege flag.
func RequirePrivileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := GetIdentity(r)
		if id == nil {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		if !id.IsPrivileged {
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func GetIdentity(r *http.Request) *auth.Identity {
	id, ok := r.Context().Value(identityKey).(*auth.Identity)
	if !ok {
		return nil
	}
	return id
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/artemk/movebid/internal/identity"
	"github.com/artemk/movebid/internal/models"
)

type contextKey string

const principalKey contextKey = "principal"

const UserIDHeader = "X-User-ID"

// Authenticator resolves the bearer token on each request through the
// identity provider and attaches the principal to the context. When require
// is false, requests without a token pass through unauthenticated; handlers
// then skip ownership checks (local development mode).
type Authenticator struct {
	provider identity.Provider
	require  bool
}

func NewAuthenticator(provider identity.Provider, require bool) *Authenticator {
	return &Authenticator{provider: provider, require: require}
}

func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if a.require {
				writeUnauthorized(w, "missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.provider.Authenticate(r.Context(), r.Header.Get(UserIDHeader), token)
		if err != nil {
			writeUnauthorized(w, err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
	})
}

// WithPrincipal returns a context carrying user as the authenticated
// principal.
func WithPrincipal(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}

// PrincipalFrom returns the authenticated user, or nil when the request was
// not authenticated.
func PrincipalFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(principalKey).(*models.User)
	return user
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hatbajar/marketplace/internal/domain"
	"github.com/hatbajar/marketplace/internal/pkg/ctxlog"
)

// CORSMiddleware creates CORS middleware that handles preflight requests
// and adds appropriate CORS headers to responses.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if originsSet[origin] || originsSet["*"] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type contextKey string

// IdentityKey stores the verified caller identity in the request context.
const IdentityKey contextKey = "identity"

// TokenVerifier validates a bearer token and returns the verified identity.
// Expired, malformed and bad-signature tokens are indistinguishable to
// callers: all verification failures surface as 401.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// PrincipalSource resolves the stored role for a subject.
type PrincipalSource interface {
	RoleBySubject(ctx context.Context, subject string) (domain.Role, error)
}

// ErrPrincipalNotFound is returned by PrincipalSource implementations when
// no record exists for the subject.
var ErrPrincipalNotFound = errors.New("principal not found")

// Authenticate creates authentication middleware. A missing or malformed
// Authorization header is rejected before the verifier is ever called.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			identity, err := verifier.Verify(r.Context(), parts[1])
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			identity.Subject = domain.NormalizeSubject(identity.Subject)

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates role-check middleware. It must run after Authenticate.
// The principal record is looked up by subject on every invocation, exactly
// once, with no caching. A missing record is 404, a role mismatch 403.
func RequireRole(principals PrincipalSource, role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			got, err := principals.RoleBySubject(r.Context(), identity.Subject)
			if err != nil {
				if errors.Is(err, ErrPrincipalNotFound) {
					respondError(w, http.StatusNotFound, "user not found")
					return
				}
				ctxlog.FromContext(r.Context()).Error("role lookup failed",
					"subject", identity.Subject,
					"error", err,
				)
				respondError(w, http.StatusInternalServerError, "internal error")
				return
			}

			if got != role {
				respondError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity extracts the verified identity from context.
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.Identity)
	return identity, ok
}

// Subject returns the caller's subject, or empty if unauthenticated.
func Subject(ctx context.Context) string {
	identity, _ := GetIdentity(ctx)
	return identity.Subject
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": message},
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

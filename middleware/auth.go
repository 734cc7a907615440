package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/VyacheslavBabenko/beejee/models"
	"github.com/VyacheslavBabenko/beejee/services"
)

// ContextKey is a custom type to avoid context key collisions.
type ContextKey string

// ClaimsKey is the key the decoded token claims are stored under.
const ClaimsKey ContextKey = "claims"

// TokenVerifier decodes a bearer token into claims.
type TokenVerifier interface {
	Verify(token string) (*models.Claims, error)
}

// ErrorWriter renders a service error as a response. It is supplied by the
// HTTP layer so middleware and handlers share one envelope format.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Authenticate checks for a valid JWT in the Authorization header and adds
// the decoded claims to the request context.
func Authenticate(v TokenVerifier, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				writeErr(w, r, services.Unauthorized("Authorization required", nil))
				return
			}

			claims, err := v.Verify(tokenString)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose claims do not carry role. It must run
// after Authenticate.
func RequireRole(role string, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeErr(w, r, services.Unauthorized("Authorization required", nil))
				return
			}
			if claims.Role != role {
				writeErr(w, r, services.Forbidden("Access denied. Administrator rights required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*models.Claims)
	return claims, ok && claims != nil
}

// The token is in the format "Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/quotables/quotes-api/pkg/jwtx"
)

// RevocationChecker reports whether a token's jti has been revoked in the
// ledger. Unknown jtis are treated as revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthnMiddleware verifies the Bearer token on each request and injects the
// subject, roles and claims into the request context. Tokens that fail
// signature or expiry checks, or whose jti is revoked (or absent from the
// ledger), are rejected with 401.
func AuthnMiddleware(verifier jwtx.Verifier, revocations RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				WriteError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if revoked {
				WriteError(w, http.StatusUnauthorized, "token has been revoked")
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, CtxKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, CtxKeyRoles, claims.Roles)
			ctx = context.WithValue(ctx, CtxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme comparison is case-insensitive.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

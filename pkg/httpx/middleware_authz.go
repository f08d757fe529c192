package httpx

import "net/http"

// RequireAnyRole gates a handler behind a set of required roles. The request
// is allowed when the token's roles intersect the required set. A token with
// no roles is always denied.
func RequireAnyRole(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !RoleAllowed(required, RolesFromContext(r.Context())) {
				WriteError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RoleAllowed reports whether any held role appears in the required set.
func RoleAllowed(required, held []string) bool {
	if len(held) == 0 {
		return false
	}
	for _, want := range required {
		for _, have := range held {
			if want == have {
				return true
			}
		}
	}
	return false
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/service"
	"github.com/quotables/quotes-api/internal/quotes/store"
	"github.com/quotables/quotes-api/pkg/httpx"
	"github.com/quotables/quotes-api/pkg/jwtx"
	"github.com/quotables/quotes-api/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService  *service.AuthService
	UserService  *service.UserService
	QuoteService *service.QuoteService
	Ledger       *service.LedgerService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerQuotes()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn verifies the bearer token and consults the revocation ledger.
func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.verifier, r.Ledger)
}

func (r *Router) registerAuth() {
	auth := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints carry the tightest limits.
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(http.HandlerFunc(auth.HandleSignup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(auth.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// The refresh and revoke endpoints authenticate with the presented
	// token itself; the service checks the token_type claim.
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(auth.HandleRefresh),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/auth/revoke/access",
		httpx.Chain(http.HandlerFunc(auth.HandleRevokeAccess),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/auth/revoke/refresh",
		httpx.Chain(http.HandlerFunc(auth.HandleRevokeRefresh),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/keys/trial", r.admin(http.HandlerFunc(auth.HandleTrialKey)))
	r.Mux.Handle("POST /v1/auth/keys/permanent", r.admin(http.HandlerFunc(auth.HandlePermanentKey)))

	users := &UsersHandler{UserService: r.UserService, Ledger: r.Ledger}
	r.Mux.Handle("GET /v1/auth/users", r.admin(http.HandlerFunc(users.HandleList)))
	r.Mux.Handle("GET /v1/auth/users/{id}", r.admin(http.HandlerFunc(users.HandleGet)))
	r.Mux.Handle("PUT /v1/auth/users/{id}", r.admin(http.HandlerFunc(users.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/auth/users/{id}", r.admin(http.HandlerFunc(users.HandleDelete)))
	r.Mux.Handle("GET /v1/auth/users/{id}/tokens", r.admin(http.HandlerFunc(users.HandleListTokens)))
	r.Mux.Handle("POST /v1/auth/tokens/prune", r.admin(http.HandlerFunc(users.HandlePrune)))
}

func (r *Router) registerQuotes() {
	quotes := &QuotesHandler{QuoteService: r.QuoteService}

	r.Mux.Handle("GET /v1/quotes", r.reader(http.HandlerFunc(quotes.HandleList)))
	r.Mux.Handle("GET /v1/quotes/random", r.reader(http.HandlerFunc(quotes.HandleRandom)))
	r.Mux.Handle("GET /v1/quotes/{id}", r.reader(http.HandlerFunc(quotes.HandleGet)))

	r.Mux.Handle("POST /v1/quotes", r.admin(http.HandlerFunc(quotes.HandleCreate)))
	r.Mux.Handle("PUT /v1/quotes/{id}", r.admin(http.HandlerFunc(quotes.HandleReplace)))
	r.Mux.Handle("PATCH /v1/quotes/{id}", r.admin(http.HandlerFunc(quotes.HandlePatch)))
	r.Mux.Handle("DELETE /v1/quotes/{id}", r.admin(http.HandlerFunc(quotes.HandleDelete)))

	authors := &AuthorsHandler{QuoteService: r.QuoteService}
	r.Mux.Handle("GET /v1/authors", r.reader(http.HandlerFunc(authors.HandleList)))
	r.Mux.Handle("GET /v1/tags", r.reader(TagsHandler()))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

// reader gates read endpoints behind the basic or admin role.
func (r *Router) reader(h http.Handler) http.Handler {
	return httpx.Chain(h,
		r.authn(),
		httpx.RequireAnyRole(domain.RoleBasic, domain.RoleAdmin),
		httpx.RateLimitByUser(httpx.PublicLimit),
	)
}

// admin gates management endpoints behind the admin role.
func (r *Router) admin(h http.Handler) http.Handler {
	return httpx.Chain(h,
		r.authn(),
		httpx.RequireAnyRole(domain.RoleAdmin),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

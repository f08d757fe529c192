package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/service"
	"github.com/quotables/quotes-api/pkg/httpx"
	"github.com/quotables/quotes-api/pkg/jwtx"
)

// AuthHandler serves signup, login and the token lifecycle endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Active:    u.Active,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
	}
}

func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	user, err := h.AuthService.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing token")
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), claims)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) HandleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	h.revoke(w, r, jwtx.TokenTypeAccess)
}

func (h *AuthHandler) HandleRevokeRefresh(w http.ResponseWriter, r *http.Request) {
	h.revoke(w, r, jwtx.TokenTypeRefresh)
}

func (h *AuthHandler) revoke(w http.ResponseWriter, r *http.Request, tokenType string) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing token")
		return
	}

	if err := h.AuthService.RevokeToken(r.Context(), claims, tokenType); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "token revoked"})
}

type apiKeyResponse struct {
	Key       string     `json:"key"`
	TokenType string     `json:"token_type"`
	ExpiresAt *time.Time `json:"expires_at"` // null for permanent keys
}

func (h *AuthHandler) HandleTrialKey(w http.ResponseWriter, r *http.Request) {
	h.mintKey(w, r, h.AuthService.TrialKey)
}

func (h *AuthHandler) HandlePermanentKey(w http.ResponseWriter, r *http.Request) {
	h.mintKey(w, r, h.AuthService.PermanentKey)
}

type mintKeyRequest struct {
	UserID string `json:"user_id"`
}

func (h *AuthHandler) mintKey(w http.ResponseWriter, r *http.Request, mint func(ctx context.Context, userID string) (string, domain.TokenRecord, error)) {
	// Keys default to the caller; admins may mint for another user.
	userID := httpx.UserIDFromContext(r.Context())
	var req mintKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.UserID != "" {
		userID = req.UserID
	}

	key, record, err := mint(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, apiKeyResponse{
		Key:       key,
		TokenType: "Bearer",
		ExpiresAt: record.ExpiresAt,
	})
}

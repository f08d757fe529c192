package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/service"
	"github.com/quotables/quotes-api/pkg/httpx"
)

// UsersHandler serves the admin user management and token ledger endpoints.
type UsersHandler struct {
	UserService *service.UserService
	Ledger      *service.LedgerService
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := parsePageRequest(r, defaultPageSize)

	users, err := h.UserService.List(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	records := make([]userResponse, 0, len(users.Records))
	for _, u := range users.Records {
		records = append(records, toUserResponse(u))
	}
	meta := users.Meta
	meta.Links = pageLinks(r, meta)
	httpx.WriteJSON(w, http.StatusOK, domain.Page[userResponse]{Meta: meta, Records: records})
}

func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

type updateUserRequest struct {
	Roles  []string `json:"roles"`
	Active *bool    `json:"active"`
}

func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Roles == nil && req.Active == nil {
		httpx.WriteError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	user, err := h.UserService.Update(r.Context(), r.PathValue("id"), service.UserPatch{
		Roles:  req.Roles,
		Active: req.Active,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type tokenRecordResponse struct {
	ID        string     `json:"id"`
	JTI       string     `json:"jti"`
	TokenType string     `json:"token_type"`
	Revoked   bool       `json:"revoked"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (h *UsersHandler) HandleListTokens(w http.ResponseWriter, r *http.Request) {
	page := parsePageRequest(r, defaultPageSize)

	records, total, err := h.Ledger.ListForUser(r.Context(), r.PathValue("id"), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tokenRecordResponse, 0, len(records))
	for _, t := range records {
		out = append(out, tokenRecordResponse{
			ID:        t.ID,
			JTI:       t.JTI,
			TokenType: t.TokenType,
			Revoked:   t.Revoked,
			ExpiresAt: t.ExpiresAt,
			CreatedAt: t.CreatedAt,
		})
	}
	meta := domain.NewPageMeta(page, total)
	meta.Links = pageLinks(r, meta)
	httpx.WriteJSON(w, http.StatusOK, domain.Page[tokenRecordResponse]{Meta: meta, Records: out})
}

func (h *UsersHandler) HandlePrune(w http.ResponseWriter, r *http.Request) {
	n, err := h.Ledger.PruneExpired(r.Context(), time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"pruned": n})
}

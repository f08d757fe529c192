package http

import (
	"net/http"

	"github.com/quotables/quotes-api/internal/quotes/service"
	"github.com/quotables/quotes-api/pkg/httpx"
)

// AuthorsHandler serves the author name index.
type AuthorsHandler struct {
	QuoteService *service.QuoteService
}

func (h *AuthorsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := parsePageRequest(r, defaultAuthorsPageSize)
	asc := service.ParseSortOrder(r.URL.Query().Get("sort_order"))

	authors, err := h.QuoteService.ListAuthors(r.Context(), asc, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	authors.Meta.Links = pageLinks(r, authors.Meta)
	httpx.WriteJSON(w, http.StatusOK, authors)
}

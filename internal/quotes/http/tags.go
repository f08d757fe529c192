package http

import (
	"net/http"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/pkg/httpx"
)

// TagsHandler returns the curated tag list clients may filter by.
func TagsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string][]string{"tags": domain.CuratedTags})
	}
}

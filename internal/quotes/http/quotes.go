package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/service"
	"github.com/quotables/quotes-api/pkg/httpx"
)

// QuotesHandler serves the quote catalogue endpoints.
type QuotesHandler struct {
	QuoteService *service.QuoteService
}

type quoteResponse struct {
	ID          string   `json:"id"`
	QuoteText   string   `json:"quote_text"`
	AuthorName  string   `json:"author_name"`
	AuthorImage string   `json:"author_image,omitempty"`
	Tags        []string `json:"tags"`
}

func toQuoteResponse(q domain.Quote) quoteResponse {
	return quoteResponse{
		ID:          q.ID,
		QuoteText:   q.QuoteText,
		AuthorName:  q.AuthorName,
		AuthorImage: q.AuthorImage,
		Tags:        q.Tags,
	}
}

// filterFromQuery builds the listing filter from tags, author and query
// parameters.
func filterFromQuery(r *http.Request) domain.QuoteFilter {
	q := r.URL.Query()
	return service.BuildQuoteFilter(q.Get("tags"), q.Get("author"), q.Get("query"))
}

func (h *QuotesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := parsePageRequest(r, defaultPageSize)

	quotes, err := h.QuoteService.List(r.Context(), filterFromQuery(r), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	records := make([]quoteResponse, 0, len(quotes.Records))
	for _, q := range quotes.Records {
		records = append(records, toQuoteResponse(q))
	}
	meta := quotes.Meta
	meta.Links = pageLinks(r, meta)
	httpx.WriteJSON(w, http.StatusOK, domain.Page[quoteResponse]{Meta: meta, Records: records})
}

func (h *QuotesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	quote, err := h.QuoteService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toQuoteResponse(quote))
}

func (h *QuotesHandler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	quote, err := h.QuoteService.Random(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toQuoteResponse(quote))
}

type quoteRequest struct {
	QuoteText   string   `json:"quote_text"`
	AuthorName  string   `json:"author_name"`
	AuthorImage string   `json:"author_image"`
	Tags        []string `json:"tags"`
}

func (h *QuotesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.QuoteText = strings.TrimSpace(req.QuoteText)
	req.AuthorName = strings.TrimSpace(req.AuthorName)
	if req.QuoteText == "" || req.AuthorName == "" {
		httpx.WriteError(w, http.StatusBadRequest, "quote_text and author_name are required")
		return
	}

	quote, err := h.QuoteService.Create(r.Context(), req.QuoteText, req.AuthorName, req.AuthorImage, req.Tags)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"id": quote.ID})
}

func (h *QuotesHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.QuoteText = strings.TrimSpace(req.QuoteText)
	req.AuthorName = strings.TrimSpace(req.AuthorName)
	if req.QuoteText == "" || req.AuthorName == "" {
		httpx.WriteError(w, http.StatusBadRequest, "quote_text and author_name are required")
		return
	}

	quote, err := h.QuoteService.Replace(r.Context(), r.PathValue("id"), req.QuoteText, req.AuthorName, req.AuthorImage, req.Tags)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toQuoteResponse(quote))
}

type quotePatchRequest struct {
	QuoteText   *string  `json:"quote_text"`
	AuthorName  *string  `json:"author_name"`
	AuthorImage *string  `json:"author_image"`
	Tags        []string `json:"tags"`
}

func (h *QuotesHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	var req quotePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quote, err := h.QuoteService.Patch(r.Context(), r.PathValue("id"), service.QuotePatch{
		QuoteText:   req.QuoteText,
		AuthorName:  req.AuthorName,
		AuthorImage: req.AuthorImage,
		Tags:        req.Tags,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toQuoteResponse(quote))
}

func (h *QuotesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.QuoteService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

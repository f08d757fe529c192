package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/quotables/quotes-api/internal/quotes/domain"
)

// Default page sizes per listing. Authors pages are larger because names
// collapse after de-duplication.
const (
	defaultPageSize        = 5
	defaultAuthorsPageSize = 20
)

// parsePageRequest reads page and page_size from the query string. Invalid
// or missing values fall back to page 1 and the given default size.
func parsePageRequest(r *http.Request, defaultSize int) domain.PageRequest {
	page := domain.PageRequest{Size: defaultSize}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page.Number = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		page.Size = v
	}
	return page.Normalize(defaultSize)
}

// pageLinks fills the page's navigation URLs, reproducing the request's own
// query parameters so next and prev rerun the same filters.
func pageLinks(r *http.Request, meta domain.PageMeta) domain.PageLinks {
	links := domain.PageLinks{
		Self: pageURL(r, meta.PageNumber, meta.PageSize),
	}
	if meta.HasPrev() {
		prev := pageURL(r, meta.PageNumber-1, meta.PageSize)
		links.Prev = &prev
	}
	if meta.HasNext() {
		next := pageURL(r, meta.PageNumber+1, meta.PageSize)
		links.Next = &next
	}
	return links
}

func pageURL(r *http.Request, page, size int) string {
	u := url.URL{Path: r.URL.Path}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return u.String()
}

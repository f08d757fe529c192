package domain

// PageRequest selects one page of a listing. Number is 1-based.
type PageRequest struct {
	Number int
	Size   int
}

// Offset returns the number of records to skip.
func (p PageRequest) Offset() int {
	return (p.Number - 1) * p.Size
}

// Normalize clamps out-of-range values to the given default size.
func (p PageRequest) Normalize(defaultSize int) PageRequest {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultSize
	}
	return p
}

// PageLinks carries the navigation URLs for a page. Prev and Next are nil on
// the first and last page respectively.
type PageLinks struct {
	Self string  `json:"self"`
	Prev *string `json:"prev"`
	Next *string `json:"next"`
}

type PageMeta struct {
	PageNumber   int       `json:"page_number"`
	PageSize     int       `json:"page_size"`
	TotalPages   int       `json:"total_pages"`
	TotalRecords int       `json:"total_records"`
	Links        PageLinks `json:"links"`
}

// Page is the envelope every listing endpoint returns.
type Page[T any] struct {
	Meta    PageMeta `json:"meta"`
	Records []T      `json:"records"`
}

// NewPageMeta derives the pagination counters for a request against a total
// record count. Links are filled in by the transport layer.
func NewPageMeta(req PageRequest, totalRecords int) PageMeta {
	totalPages := 0
	if req.Size > 0 {
		totalPages = (totalRecords + req.Size - 1) / req.Size
	}
	return PageMeta{
		PageNumber:   req.Number,
		PageSize:     req.Size,
		TotalPages:   totalPages,
		TotalRecords: totalRecords,
	}
}

// HasPrev reports whether a previous page exists.
func (m PageMeta) HasPrev() bool { return m.PageNumber > 1 }

// HasNext reports whether a following page exists.
func (m PageMeta) HasNext() bool { return m.PageNumber < m.TotalPages }

package domain

// QuoteFilter is the normalised form of the listing query parameters. At most
// one of TagsAny and TagsAll is set. Query requests a ranked full-text match
// and takes precedence over the other fields when combined upstream.
type QuoteFilter struct {
	TagsAny []string // match quotes carrying at least one of these tags
	TagsAll []string // match quotes carrying every one of these tags
	Author  string   // exact author name
	Query   string   // free-text search over quote text
}

// IsZero reports whether no filtering was requested.
func (f QuoteFilter) IsZero() bool {
	return len(f.TagsAny) == 0 && len(f.TagsAll) == 0 && f.Author == "" && f.Query == ""
}

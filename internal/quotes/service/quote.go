package service

import (
	"context"
	"strings"
	"time"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/store"
	"github.com/quotables/quotes-api/pkg/idx"
	"github.com/quotables/quotes-api/pkg/slogx"
)

// QuoteService owns the quote catalogue: CRUD, filtered listings, random
// picks and the author index.
type QuoteService struct {
	Store store.Store
}

// BuildQuoteFilter normalises the raw listing parameters. Tag syntax:
// "a|b" matches quotes carrying any of the tags, "a,b" only quotes carrying
// all of them, a single token an exact tag. author is an exact name match
// and query requests ranked full-text search.
func BuildQuoteFilter(tags, author, query string) domain.QuoteFilter {
	var filter domain.QuoteFilter

	if tags != "" {
		switch {
		case strings.Contains(tags, "|"):
			filter.TagsAny = splitTagList(tags, "|")
		case strings.Contains(tags, ","):
			filter.TagsAll = splitTagList(tags, ",")
		default:
			filter.TagsAny = []string{strings.TrimSpace(tags)}
		}
	}

	filter.Author = strings.TrimSpace(author)
	filter.Query = strings.TrimSpace(query)
	return filter
}

func splitTagList(tags, sep string) []string {
	parts := strings.Split(tags, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseSortOrder interprets the author listing's sort_order parameter.
// Accepts asc/desc, ascending/descending and 1/-1, case-insensitively.
// Anything else sorts ascending.
func ParseSortOrder(raw string) (asc bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "desc", "descending", "-1":
		return false
	default:
		return true
	}
}

func (s *QuoteService) Get(ctx context.Context, id string) (domain.Quote, error) {
	return s.Store.Quotes().GetQuoteByID(ctx, id)
}

// Create stores a new quote. Quotes without tags get the default tag.
func (s *QuoteService) Create(ctx context.Context, text, authorName, authorImage string, tags []string) (domain.Quote, error) {
	now := time.Now().UTC()
	quote := domain.Quote{
		ID:          idx.New().String(),
		QuoteText:   text,
		AuthorName:  authorName,
		AuthorImage: authorImage,
		Tags:        normalizeTags(tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Quotes().CreateQuote(ctx, quote); err != nil {
		return domain.Quote{}, err
	}
	slogx.FromContext(ctx).Info("quote created", "quote_id", quote.ID, "author", quote.AuthorName)
	return quote, nil
}

// Replace overwrites every field of the quote.
func (s *QuoteService) Replace(ctx context.Context, id, text, authorName, authorImage string, tags []string) (domain.Quote, error) {
	quote := domain.Quote{
		ID:          id,
		QuoteText:   text,
		AuthorName:  authorName,
		AuthorImage: authorImage,
		Tags:        normalizeTags(tags),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Quotes().UpdateQuote(ctx, quote); err != nil {
		return domain.Quote{}, err
	}
	return s.Store.Quotes().GetQuoteByID(ctx, id)
}

// QuotePatch carries the optional fields of a partial update. Nil fields are
// left untouched.
type QuotePatch struct {
	QuoteText   *string
	AuthorName  *string
	AuthorImage *string
	Tags        []string
}

// Patch applies a partial update on top of the stored quote.
func (s *QuoteService) Patch(ctx context.Context, id string, patch QuotePatch) (domain.Quote, error) {
	quote, err := s.Store.Quotes().GetQuoteByID(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}

	if patch.QuoteText != nil {
		quote.QuoteText = *patch.QuoteText
	}
	if patch.AuthorName != nil {
		quote.AuthorName = *patch.AuthorName
	}
	if patch.AuthorImage != nil {
		quote.AuthorImage = *patch.AuthorImage
	}
	if patch.Tags != nil {
		quote.Tags = normalizeTags(patch.Tags)
	}
	quote.UpdatedAt = time.Now().UTC()

	if err := s.Store.Quotes().UpdateQuote(ctx, quote); err != nil {
		return domain.Quote{}, err
	}
	return s.Store.Quotes().GetQuoteByID(ctx, id)
}

func (s *QuoteService) Delete(ctx context.Context, id string) error {
	return s.Store.Quotes().DeleteQuote(ctx, id)
}

// List returns one page of quotes matching the filter.
func (s *QuoteService) List(ctx context.Context, filter domain.QuoteFilter, page domain.PageRequest) (domain.Page[domain.Quote], error) {
	quotes, total, err := s.Store.Quotes().ListQuotes(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.Quote]{}, err
	}
	return domain.Page[domain.Quote]{
		Meta:    domain.NewPageMeta(page, total),
		Records: quotes,
	}, nil
}

// Random picks one quote at random among those matching the filter.
func (s *QuoteService) Random(ctx context.Context, filter domain.QuoteFilter) (domain.Quote, error) {
	return s.Store.Quotes().RandomQuote(ctx, filter)
}

// ListAuthors pages through the catalogue ordered by author name and
// collapses repeats within the page. total_pages still reflects the full
// quote count while total_records is the number of names on this page.
func (s *QuoteService) ListAuthors(ctx context.Context, asc bool, page domain.PageRequest) (domain.Page[string], error) {
	quotes, total, err := s.Store.Quotes().ListQuotesByAuthorName(ctx, asc, page)
	if err != nil {
		return domain.Page[string]{}, err
	}

	authors := make([]string, 0, len(quotes))
	seen := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		if _, ok := seen[q.AuthorName]; ok {
			continue
		}
		seen[q.AuthorName] = struct{}{}
		authors = append(authors, q.AuthorName)
	}

	meta := domain.NewPageMeta(page, total)
	meta.TotalRecords = len(authors)
	return domain.Page[string]{Meta: meta, Records: authors}, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return []string{domain.DefaultTag}
	}
	return out
}

package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/store"
	"github.com/stretchr/testify/require"
)

func TestBuildQuoteFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tags   string
		author string
		query  string
		want   domain.QuoteFilter
	}{
		{
			name: "no parameters",
			want: domain.QuoteFilter{},
		},
		{
			name: "pipe separated tags match any",
			tags: "love|life|hope",
			want: domain.QuoteFilter{TagsAny: []string{"love", "life", "hope"}},
		},
		{
			name: "comma separated tags match all",
			tags: "love,life",
			want: domain.QuoteFilter{TagsAll: []string{"love", "life"}},
		},
		{
			name: "single tag exact",
			tags: "humor",
			want: domain.QuoteFilter{TagsAny: []string{"humor"}},
		},
		{
			name: "pipe wins over comma",
			tags: "love,life|hope",
			want: domain.QuoteFilter{TagsAny: []string{"love,life", "hope"}},
		},
		{
			name:   "author exact match",
			author: "Marcus Aurelius",
			want:   domain.QuoteFilter{Author: "Marcus Aurelius"},
		},
		{
			name:  "free text search",
			query: "the unexamined life",
			want:  domain.QuoteFilter{Query: "the unexamined life"},
		},
		{
			name:   "combined",
			tags:   "philosophy",
			author: "Socrates",
			want:   domain.QuoteFilter{TagsAny: []string{"philosophy"}, Author: "Socrates"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BuildQuoteFilter(tt.tags, tt.author, tt.query))
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "asc", "ASC", "ascending", "1", "garbage"} {
		require.True(t, ParseSortOrder(raw), "raw=%q", raw)
	}
	for _, raw := range []string{"desc", "DESC", "Descending", "-1"} {
		require.False(t, ParseSortOrder(raw), "raw=%q", raw)
	}
}

func seedQuotes(t *testing.T, svc *QuoteService) {
	t.Helper()
	ctx := context.Background()

	seed := []struct {
		text   string
		author string
		tags   []string
	}{
		{"The obstacle is the way.", "Marcus Aurelius", []string{"philosophy", "life"}},
		{"Waste no more time arguing what a good man should be.", "Marcus Aurelius", []string{"philosophy"}},
		{"The unexamined life is not worth living.", "Socrates", []string{"philosophy", "life", "wisdom"}},
		{"Stay hungry, stay foolish.", "Steve Jobs", []string{"motivational"}},
		{"Untagged wisdom.", "Anonymous", nil},
	}
	for _, s := range seed {
		_, err := svc.Create(ctx, s.text, s.author, "", s.tags)
		require.NoError(t, err)
	}
}

func TestQuoteListFilters(t *testing.T) {
	ctx := context.Background()
	svc := &QuoteService{Store: newTestStore(t)}
	seedQuotes(t, svc)

	page := domain.PageRequest{Number: 1, Size: 10}

	t.Run("tags any", func(t *testing.T) {
		got, err := svc.List(ctx, BuildQuoteFilter("life|motivational", "", ""), page)
		require.NoError(t, err)
		require.Equal(t, 3, got.Meta.TotalRecords)
	})

	t.Run("tags all", func(t *testing.T) {
		got, err := svc.List(ctx, BuildQuoteFilter("philosophy,life", "", ""), page)
		require.NoError(t, err)
		require.Equal(t, 2, got.Meta.TotalRecords)
		for _, q := range got.Records {
			require.Contains(t, q.Tags, "philosophy")
			require.Contains(t, q.Tags, "life")
		}
	})

	t.Run("single tag", func(t *testing.T) {
		got, err := svc.List(ctx, BuildQuoteFilter("motivational", "", ""), page)
		require.NoError(t, err)
		require.Equal(t, 1, got.Meta.TotalRecords)
		require.Equal(t, "Steve Jobs", got.Records[0].AuthorName)
	})

	t.Run("author exact", func(t *testing.T) {
		got, err := svc.List(ctx, BuildQuoteFilter("", "Marcus Aurelius", ""), page)
		require.NoError(t, err)
		require.Equal(t, 2, got.Meta.TotalRecords)
	})

	t.Run("author and tag combine", func(t *testing.T) {
		got, err := svc.List(ctx, BuildQuoteFilter("life", "Marcus Aurelius", ""), page)
		require.NoError(t, err)
		require.Equal(t, 1, got.Meta.TotalRecords)
		require.Equal(t, "The obstacle is the way.", got.Records[0].QuoteText)
	})

	t.Run("free text search ranks matches", func(t *testing.T) {
		got, err := svc.List(ctx, BuildQuoteFilter("", "", "unexamined life"), page)
		require.NoError(t, err)
		require.Equal(t, 1, got.Meta.TotalRecords)
		require.Equal(t, "Socrates", got.Records[0].AuthorName)
	})

	t.Run("no-match search is empty not an error", func(t *testing.T) {
		got, err := svc.List(ctx, BuildQuoteFilter("", "", "zebra quantum"), page)
		require.NoError(t, err)
		require.Zero(t, got.Meta.TotalRecords)
		require.Empty(t, got.Records)
	})

	t.Run("missing tags default to other", func(t *testing.T) {
		got, err := svc.List(ctx, BuildQuoteFilter(domain.DefaultTag, "", ""), page)
		require.NoError(t, err)
		require.Equal(t, 1, got.Meta.TotalRecords)
		require.Equal(t, []string{domain.DefaultTag}, got.Records[0].Tags)
	})
}

func TestQuoteCRUD(t *testing.T) {
	ctx := context.Background()
	svc := &QuoteService{Store: newTestStore(t)}

	quote, err := svc.Create(ctx, "To be, or not to be.", "William Shakespeare", "", []string{"poetry"})
	require.NoError(t, err)

	t.Run("duplicate text conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, "To be, or not to be.", "Someone Else", "", nil)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("patch touches only given fields", func(t *testing.T) {
		image := "https://example.com/shakespeare.jpg"
		got, err := svc.Patch(ctx, quote.ID, QuotePatch{AuthorImage: &image})
		require.NoError(t, err)
		require.Equal(t, quote.QuoteText, got.QuoteText)
		require.Equal(t, image, got.AuthorImage)
		require.Equal(t, []string{"poetry"}, got.Tags)
	})

	t.Run("replace overwrites everything", func(t *testing.T) {
		got, err := svc.Replace(ctx, quote.ID, "Brevity is the soul of wit.", "William Shakespeare", "", []string{"humor", "wisdom"})
		require.NoError(t, err)
		require.Equal(t, "Brevity is the soul of wit.", got.QuoteText)
		require.Equal(t, []string{"humor", "wisdom"}, got.Tags)
	})

	t.Run("delete then get reports not found", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, quote.ID))
		_, err := svc.Get(ctx, quote.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		err = svc.Delete(ctx, quote.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestQuotePagination(t *testing.T) {
	ctx := context.Background()
	svc := &QuoteService{Store: newTestStore(t)}

	for i := range 12 {
		_, err := svc.Create(ctx, fmt.Sprintf("Quote number %02d.", i), "Author", "", nil)
		require.NoError(t, err)
	}

	t.Run("first page", func(t *testing.T) {
		got, err := svc.List(ctx, domain.QuoteFilter{}, domain.PageRequest{Number: 1, Size: 5})
		require.NoError(t, err)
		require.Len(t, got.Records, 5)
		require.Equal(t, 12, got.Meta.TotalRecords)
		require.Equal(t, 3, got.Meta.TotalPages)
		require.False(t, got.Meta.HasPrev())
		require.True(t, got.Meta.HasNext())
	})

	t.Run("last page is short", func(t *testing.T) {
		got, err := svc.List(ctx, domain.QuoteFilter{}, domain.PageRequest{Number: 3, Size: 5})
		require.NoError(t, err)
		require.Len(t, got.Records, 2)
		require.True(t, got.Meta.HasPrev())
		require.False(t, got.Meta.HasNext())
	})

	t.Run("pages do not overlap", func(t *testing.T) {
		seen := make(map[string]struct{})
		for page := 1; page <= 3; page++ {
			got, err := svc.List(ctx, domain.QuoteFilter{}, domain.PageRequest{Number: page, Size: 5})
			require.NoError(t, err)
			for _, q := range got.Records {
				_, dup := seen[q.ID]
				require.False(t, dup, "quote %s appeared twice", q.ID)
				seen[q.ID] = struct{}{}
			}
		}
		require.Len(t, seen, 12)
	})

	t.Run("out of range page is empty not an error", func(t *testing.T) {
		got, err := svc.List(ctx, domain.QuoteFilter{}, domain.PageRequest{Number: 9, Size: 5})
		require.NoError(t, err)
		require.Empty(t, got.Records)
		require.Equal(t, 12, got.Meta.TotalRecords)
	})
}

func TestRandomQuote(t *testing.T) {
	ctx := context.Background()
	svc := &QuoteService{Store: newTestStore(t)}
	seedQuotes(t, svc)

	t.Run("unfiltered returns something", func(t *testing.T) {
		q, err := svc.Random(ctx, domain.QuoteFilter{})
		require.NoError(t, err)
		require.NotEmpty(t, q.QuoteText)
	})

	t.Run("filter narrows the pool", func(t *testing.T) {
		q, err := svc.Random(ctx, BuildQuoteFilter("motivational", "", ""))
		require.NoError(t, err)
		require.Equal(t, "Steve Jobs", q.AuthorName)
	})

	t.Run("empty pool reports not found", func(t *testing.T) {
		_, err := svc.Random(ctx, BuildQuoteFilter("no-such-tag", "", ""))
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestListAuthors(t *testing.T) {
	ctx := context.Background()
	svc := &QuoteService{Store: newTestStore(t)}
	seedQuotes(t, svc)

	t.Run("ascending dedupes within page", func(t *testing.T) {
		got, err := svc.ListAuthors(ctx, true, domain.PageRequest{Number: 1, Size: 20})
		require.NoError(t, err)
		require.Equal(t, []string{"Anonymous", "Marcus Aurelius", "Socrates", "Steve Jobs"}, got.Records)
		// total_pages reflects the quote count, total_records the deduped page.
		require.Equal(t, 1, got.Meta.TotalPages)
		require.Equal(t, 4, got.Meta.TotalRecords)
	})

	t.Run("descending reverses the order", func(t *testing.T) {
		got, err := svc.ListAuthors(ctx, false, domain.PageRequest{Number: 1, Size: 20})
		require.NoError(t, err)
		require.Equal(t, []string{"Steve Jobs", "Socrates", "Marcus Aurelius", "Anonymous"}, got.Records)
	})

	t.Run("small pages split by quotes not names", func(t *testing.T) {
		got, err := svc.ListAuthors(ctx, true, domain.PageRequest{Number: 1, Size: 2})
		require.NoError(t, err)
		// 5 quotes at size 2 gives 3 pages even though names collapse.
		require.Equal(t, 3, got.Meta.TotalPages)
	})
}

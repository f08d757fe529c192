package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/store"
)

type quotesRepo struct {
	db dbtx
}

const quoteColumns = `id, quote_text, author_name, author_image, created_at, updated_at`

func (r *quotesRepo) scanQuote(row interface{ Scan(dest ...any) error }) (domain.Quote, error) {
	var q domain.Quote
	err := row.Scan(&q.ID, &q.QuoteText, &q.AuthorName, &q.AuthorImage, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return domain.Quote{}, mapErr(err)
	}
	return q, nil
}

func (r *quotesRepo) GetQuoteByID(ctx context.Context, id string) (domain.Quote, error) {
	q, err := r.scanQuote(r.db.QueryRowContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id))
	if err != nil {
		return domain.Quote{}, err
	}
	if err := r.loadTags(ctx, &q); err != nil {
		return domain.Quote{}, err
	}
	return q, nil
}

func (r *quotesRepo) CreateQuote(ctx context.Context, q domain.Quote) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO quotes (id, quote_text, author_name, author_image, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.QuoteText, q.AuthorName, q.AuthorImage, q.CreatedAt.UTC(), q.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapErr(err)
	}
	return r.insertTags(ctx, q.ID, q.Tags)
}

func (r *quotesRepo) UpdateQuote(ctx context.Context, q domain.Quote) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET quote_text = ?, author_name = ?, author_image = ?, updated_at = ?
		 WHERE id = ?`,
		q.QuoteText, q.AuthorName, q.AuthorImage, q.UpdatedAt.UTC(), q.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM quote_tags WHERE quote_id = ?`, q.ID); err != nil {
		return mapErr(err)
	}
	return r.insertTags(ctx, q.ID, q.Tags)
}

func (r *quotesRepo) DeleteQuote(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return mapErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *quotesRepo) insertTags(ctx context.Context, quoteID string, tags []string) error {
	for i, tag := range tags {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO quote_tags (quote_id, tag, position) VALUES (?, ?, ?)`,
			quoteID, tag, i,
		)
		if err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func (r *quotesRepo) loadTags(ctx context.Context, q *domain.Quote) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag FROM quote_tags WHERE quote_id = ? ORDER BY position`, q.ID)
	if err != nil {
		return mapErr(err)
	}
	defer rows.Close()

	q.Tags = nil
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return mapErr(err)
		}
		q.Tags = append(q.Tags, tag)
	}
	return mapErr(rows.Err())
}

func (r *quotesRepo) ListQuotes(ctx context.Context, filter domain.QuoteFilter, page domain.PageRequest) ([]domain.Quote, int, error) {
	// Free-text search goes through the FTS index and is ranked by
	// relevance. Tag and author clauses still narrow the match set.
	if filter.Query != "" {
		return r.searchQuotes(ctx, filter, page)
	}

	clauses, args := buildQuoteClauses(filter, "")
	where := whereClause(clauses)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quotes`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	query := `SELECT ` + quoteColumns + ` FROM quotes` + where +
		` ORDER BY created_at, id LIMIT ? OFFSET ?`
	quotes, err := r.collectQuotes(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

func (r *quotesRepo) searchQuotes(ctx context.Context, filter domain.QuoteFilter, page domain.PageRequest) ([]domain.Quote, int, error) {
	match := ftsQuery(filter.Query)
	if match == "" {
		return nil, 0, nil
	}

	clauses, args := buildQuoteClauses(filter, "q.")
	clauses = append([]string{`quotes_fts MATCH ?`}, clauses...)
	args = append([]any{match}, args...)
	where := whereClause(clauses)

	base := ` FROM quotes q JOIN quotes_fts f ON f.rowid = q.rowid` + where

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	query := `SELECT q.id, q.quote_text, q.author_name, q.author_image, q.created_at, q.updated_at` +
		base + ` ORDER BY bm25(quotes_fts) LIMIT ? OFFSET ?`
	quotes, err := r.collectQuotes(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

func (r *quotesRepo) ListQuotesByAuthorName(ctx context.Context, asc bool, page domain.PageRequest) ([]domain.Quote, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	direction := "ASC"
	if !asc {
		direction = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM quotes ORDER BY author_name %s, id LIMIT ? OFFSET ?`,
		quoteColumns, direction)
	quotes, err := r.collectQuotes(ctx, query, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

func (r *quotesRepo) RandomQuote(ctx context.Context, filter domain.QuoteFilter) (domain.Quote, error) {
	clauses, args := buildQuoteClauses(filter, "")
	q, err := r.scanQuote(r.db.QueryRowContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes`+whereClause(clauses)+` ORDER BY RANDOM() LIMIT 1`,
		args...))
	if err != nil {
		return domain.Quote{}, err
	}
	if err := r.loadTags(ctx, &q); err != nil {
		return domain.Quote{}, err
	}
	return q, nil
}

// collectQuotes runs a quote query, drains the rows, then attaches tags. Tags
// are loaded after the result set closes because the pool runs a single
// connection.
func (r *quotesRepo) collectQuotes(ctx context.Context, query string, args ...any) ([]domain.Quote, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}

	var quotes []domain.Quote
	for rows.Next() {
		q, err := r.scanQuote(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, mapErr(err)
	}
	rows.Close()

	for i := range quotes {
		if err := r.loadTags(ctx, &quotes[i]); err != nil {
			return nil, err
		}
	}
	return quotes, nil
}

// buildQuoteClauses translates tag and author filters into WHERE clauses.
// prefix qualifies the quotes columns when the query joins other tables.
func buildQuoteClauses(filter domain.QuoteFilter, prefix string) ([]string, []any) {
	var (
		clauses []string
		args    []any
	)

	switch {
	case len(filter.TagsAny) > 0:
		clauses = append(clauses, fmt.Sprintf(
			`%sid IN (SELECT quote_id FROM quote_tags WHERE tag IN (%s))`,
			prefix, placeholders(len(filter.TagsAny))))
		for _, tag := range filter.TagsAny {
			args = append(args, tag)
		}
	case len(filter.TagsAll) > 0:
		clauses = append(clauses, fmt.Sprintf(
			`%sid IN (SELECT quote_id FROM quote_tags WHERE tag IN (%s)
			 GROUP BY quote_id HAVING COUNT(DISTINCT tag) = %d)`,
			prefix, placeholders(len(filter.TagsAll)), len(filter.TagsAll)))
		for _, tag := range filter.TagsAll {
			args = append(args, tag)
		}
	}

	if filter.Author != "" {
		clauses = append(clauses, prefix+`author_name = ?`)
		args = append(args, filter.Author)
	}

	return clauses, args
}

func whereClause(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ftsQuery quotes each term so user input cannot inject FTS5 operators.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.ReplaceAll(field, `"`, `""`)
		terms = append(terms, `"`+field+`"`)
	}
	return strings.Join(terms, " ")
}

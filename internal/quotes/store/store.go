package store

import (
	"context"
	"errors"
	"time"

	"github.com/quotables/quotes-api/internal/quotes/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep concerns separated and individually
// mockable.
type Store interface {
	Users() Users
	Quotes() Quotes
	Tokens() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and rolling
	// back on error. Prefer this over Tx for multi-step operations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns one page of users ordered by creation date, plus the
	// total user count.
	ListUsers(ctx context.Context, page domain.PageRequest) ([]domain.User, int, error)

	// UpdateRoles replaces the user's role set and bumps updated_at.
	UpdateRoles(ctx context.Context, userID string, roles []string) error

	// SetActive flips the account's active flag and bumps updated_at.
	SetActive(ctx context.Context, userID string, active bool) error

	// DeleteUser cascades to token_records (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type Quotes interface {
	// GetQuoteByID returns a quote with its tags.
	GetQuoteByID(ctx context.Context, id string) (domain.Quote, error)

	// CreateQuote inserts a quote and its tags.
	CreateQuote(ctx context.Context, q domain.Quote) error

	// UpdateQuote replaces the quote's fields and tag set.
	UpdateQuote(ctx context.Context, q domain.Quote) error

	// DeleteQuote cascades to quote_tags (per schema).
	DeleteQuote(ctx context.Context, id string) error

	// ListQuotes returns one page of quotes matching the filter, plus the
	// total match count. Free-text matches are ranked by relevance, other
	// listings are ordered by creation date.
	ListQuotes(ctx context.Context, filter domain.QuoteFilter, page domain.PageRequest) ([]domain.Quote, int, error)

	// ListQuotesByAuthorName returns one page of quotes ordered by author
	// name, plus the total quote count. asc selects the sort direction.
	ListQuotesByAuthorName(ctx context.Context, asc bool, page domain.PageRequest) ([]domain.Quote, int, error)

	// RandomQuote returns a uniformly random quote among those matching the
	// tag and author clauses of the filter.
	RandomQuote(ctx context.Context, filter domain.QuoteFilter) (domain.Quote, error)
}

type Tokens interface {
	// CreateTokenRecord inserts a ledger entry for a freshly minted token.
	CreateTokenRecord(ctx context.Context, t domain.TokenRecord) error

	// GetTokenRecordByJTI returns the ledger entry for a token id.
	GetTokenRecordByJTI(ctx context.Context, jti string) (domain.TokenRecord, error)

	// RevokeTokenRecord marks the entry revoked. Revoking an already revoked
	// token is a no-op.
	RevokeTokenRecord(ctx context.Context, jti string) error

	// ListTokenRecordsByUser returns one page of the user's ledger entries
	// ordered by creation date, plus the total count.
	ListTokenRecordsByUser(ctx context.Context, userID string, page domain.PageRequest) ([]domain.TokenRecord, int, error)

	// DeleteExpiredTokenRecords removes entries whose expiry is at or before
	// now. Entries without an expiry are kept. Returns the number removed.
	DeleteExpiredTokenRecords(ctx context.Context, now time.Time) (int64, error)
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/store"
	"github.com/quotables/quotes-api/pkg/idx"
	"github.com/quotables/quotes-api/pkg/slogx"
)

var (
	// ErrDuplicateToken signals a jti collision in the ledger. Two tokens
	// never legitimately share a jti, so callers treat this as internal.
	ErrDuplicateToken = errors.New("duplicate_token")
)

// LedgerService is the bookkeeping side of token issuance. Every minted token
// is recorded; verification asks the ledger, and a jti the ledger has never
// seen counts as revoked.
type LedgerService struct {
	Store store.Store
}

// Record writes the ledger entry for a freshly minted token. expiresAt nil
// marks a permanent API key that pruning never touches.
func (s *LedgerService) Record(ctx context.Context, jti, tokenType, userID string, expiresAt *time.Time) (domain.TokenRecord, error) {
	return recordToken(ctx, s.Store.Tokens(), jti, tokenType, userID, expiresAt)
}

// recordToken is shared with transactional callers that hold a store.Tx.
func recordToken(ctx context.Context, tokens store.Tokens, jti, tokenType, userID string, expiresAt *time.Time) (domain.TokenRecord, error) {
	record := domain.TokenRecord{
		ID:        idx.New().String(),
		JTI:       jti,
		TokenType: tokenType,
		UserID:    userID,
		Revoked:   false,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := tokens.CreateTokenRecord(ctx, record); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.TokenRecord{}, ErrDuplicateToken
		}
		return domain.TokenRecord{}, err
	}
	return record, nil
}

// IsRevoked reports whether the token behind jti may still be used. A jti
// without a ledger entry is revoked.
func (s *LedgerService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	record, err := s.Store.Tokens().GetTokenRecordByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return true, nil
		}
		return true, err
	}
	return record.Revoked, nil
}

// Revoke marks the owner's token revoked. Tokens belonging to another user
// are reported as not found rather than leaking their existence. Revoking an
// already revoked token succeeds.
func (s *LedgerService) Revoke(ctx context.Context, jti, userID string) error {
	record, err := s.Store.Tokens().GetTokenRecordByJTI(ctx, jti)
	if err != nil {
		return err
	}
	if record.UserID != userID {
		return store.ErrNotFound
	}
	if record.Revoked {
		return nil
	}
	return s.Store.Tokens().RevokeTokenRecord(ctx, jti)
}

// ListForUser returns one page of a user's ledger entries.
func (s *LedgerService) ListForUser(ctx context.Context, userID string, page domain.PageRequest) ([]domain.TokenRecord, int, error) {
	return s.Store.Tokens().ListTokenRecordsByUser(ctx, userID, page)
}

// PruneExpired hard-deletes entries whose expiry has passed. Permanent keys
// have no expiry and survive every prune.
func (s *LedgerService) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.Store.Tokens().DeleteExpiredTokenRecords(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slogx.FromContext(ctx).Info("pruned expired token records", "count", n)
	}
	return n, nil
}

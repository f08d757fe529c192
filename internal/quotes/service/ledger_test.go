package service

import (
	"context"
	"testing"
	"time"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/store"
	"github.com/quotables/quotes-api/internal/quotes/store/drivers/sqlite"
	"github.com/quotables/quotes-api/pkg/idx"
	"github.com/quotables/quotes-api/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func createTestUser(t *testing.T, st store.Store, username string, roles ...string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Active:       true,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}

func TestLedgerIsRevokedFailsClosed(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ledger := &LedgerService{Store: st}
	user := createTestUser(t, st, "alice", domain.RoleBasic)

	t.Run("unknown jti counts as revoked", func(t *testing.T) {
		revoked, err := ledger.IsRevoked(ctx, jwtx.NewJTI())
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("recorded token is live", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour).UTC()
		record, err := ledger.Record(ctx, jwtx.NewJTI(), domain.TokenTypeAccess, user.ID, &expiry)
		require.NoError(t, err)

		revoked, err := ledger.IsRevoked(ctx, record.JTI)
		require.NoError(t, err)
		require.False(t, revoked)
	})
}

func TestLedgerRecordRejectsDuplicateJTI(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ledger := &LedgerService{Store: st}
	user := createTestUser(t, st, "alice", domain.RoleBasic)

	jti := jwtx.NewJTI()
	_, err := ledger.Record(ctx, jti, domain.TokenTypeAccess, user.ID, nil)
	require.NoError(t, err)

	_, err = ledger.Record(ctx, jti, domain.TokenTypeAccess, user.ID, nil)
	require.ErrorIs(t, err, ErrDuplicateToken)
}

func TestLedgerRevoke(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ledger := &LedgerService{Store: st}
	owner := createTestUser(t, st, "alice", domain.RoleBasic)
	other := createTestUser(t, st, "bob", domain.RoleBasic)

	record, err := ledger.Record(ctx, jwtx.NewJTI(), domain.TokenTypeAccess, owner.ID, nil)
	require.NoError(t, err)

	t.Run("missing token reports not found", func(t *testing.T) {
		err := ledger.Revoke(ctx, jwtx.NewJTI(), owner.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("another user's token reports not found", func(t *testing.T) {
		err := ledger.Revoke(ctx, record.JTI, other.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("owner revoke flips the flag", func(t *testing.T) {
		require.NoError(t, ledger.Revoke(ctx, record.JTI, owner.ID))

		revoked, err := ledger.IsRevoked(ctx, record.JTI)
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("second revoke is a no-op success", func(t *testing.T) {
		require.NoError(t, ledger.Revoke(ctx, record.JTI, owner.ID))
	})
}

func TestLedgerPruneExpired(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ledger := &LedgerService{Store: st}
	user := createTestUser(t, st, "alice", domain.RoleBasic)

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired, err := ledger.Record(ctx, jwtx.NewJTI(), domain.TokenTypeAccess, user.ID, &past)
	require.NoError(t, err)
	live, err := ledger.Record(ctx, jwtx.NewJTI(), domain.TokenTypeAccess, user.ID, &future)
	require.NoError(t, err)
	permanent, err := ledger.Record(ctx, jwtx.NewJTI(), domain.TokenTypeAccess, user.ID, nil)
	require.NoError(t, err)

	n, err := ledger.PruneExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// Pruned token is gone entirely, so it now verifies as revoked.
	revoked, err := ledger.IsRevoked(ctx, expired.JTI)
	require.NoError(t, err)
	require.True(t, revoked)

	for _, jti := range []string{live.JTI, permanent.JTI} {
		revoked, err := ledger.IsRevoked(ctx, jti)
		require.NoError(t, err)
		require.False(t, revoked)
	}
}

func TestLedgerListForUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ledger := &LedgerService{Store: st}
	user := createTestUser(t, st, "alice", domain.RoleBasic)

	for range 7 {
		_, err := ledger.Record(ctx, jwtx.NewJTI(), domain.TokenTypeAccess, user.ID, nil)
		require.NoError(t, err)
	}

	records, total, err := ledger.ListForUser(ctx, user.ID, domain.PageRequest{Number: 2, Size: 5})
	require.NoError(t, err)
	require.Equal(t, 7, total)
	require.Len(t, records, 2)
}

package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) (Signer, *KeySet) {
	t.Helper()

	signer, err := NewEphemeralSignerEdDSA()
	require.NoError(t, err)

	keys := NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	return signer, keys
}

func TestSignVerifyRoundtrip(t *testing.T) {
	t.Parallel()

	signer, keys := newTestSigner(t)
	verifier := NewVerifierEdDSA(keys, "issuer-a")

	claims := NewTokenClaims("user-1", "alice", TokenTypeAccess, []string{"basic"}, time.Minute, "issuer-a", time.Now())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, TokenTypeAccess, got.TokenType)
	require.Equal(t, []string{"basic"}, got.Roles)
	require.Equal(t, claims.ID, got.ID)
}

func TestVerifyRejections(t *testing.T) {
	t.Parallel()

	signer, keys := newTestSigner(t)

	t.Run("wrong issuer", func(t *testing.T) {
		verifier := NewVerifierEdDSA(keys, "issuer-b")
		token, err := signer.Sign(NewTokenClaims("u", "n", TokenTypeAccess, nil, time.Minute, "issuer-a", time.Now()))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, ErrIssuer)
	})

	t.Run("expired token", func(t *testing.T) {
		verifier := NewVerifierEdDSA(keys, "issuer-a")
		token, err := signer.Sign(NewTokenClaims("u", "n", TokenTypeAccess, nil, time.Minute, "issuer-a", time.Now().Add(-time.Hour)))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("unknown signer", func(t *testing.T) {
		other, err := NewEphemeralSignerEdDSA()
		require.NoError(t, err)

		verifier := NewVerifierEdDSA(keys, "issuer-a")
		token, err := other.Sign(NewTokenClaims("u", "n", TokenTypeAccess, nil, time.Minute, "issuer-a", time.Now()))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, ErrUnknownKID)
	})

	t.Run("garbage token", func(t *testing.T) {
		verifier := NewVerifierEdDSA(keys, "issuer-a")
		_, err := verifier.Verify("not.a.jwt")
		require.Error(t, err)
	})
}

func TestPermanentClaimsHaveNoExpiry(t *testing.T) {
	t.Parallel()

	claims := NewTokenClaims("u", "n", TokenTypeAccess, nil, 0, "issuer-a", time.Now())
	require.Nil(t, claims.ExpiresAt)
	require.NoError(t, claims.ValidateExpiry())
}

func TestKeySet(t *testing.T) {
	t.Parallel()

	keys := NewKeySet()
	require.False(t, keys.IsReady())

	signer, err := NewEphemeralSignerEdDSA()
	require.NoError(t, err)
	require.NoError(t, keys.AddSigner(signer))

	require.True(t, keys.IsReady())

	_, err = keys.Get(signer.KID())
	require.NoError(t, err)

	_, err = keys.Get("missing")
	require.ErrorIs(t, err, ErrNoKey)

	doc := keys.JWKS()
	require.Len(t, doc.Keys, 1)
	require.Equal(t, "OKP", doc.Keys[0].Kty)
	require.Equal(t, signer.KID(), doc.Keys[0].Kid)
}

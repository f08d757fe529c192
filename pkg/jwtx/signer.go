package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign token claims.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
}

type eddsaSigner struct {
	kid  string
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewEphemeralSignerEdDSA generates a fresh Ed25519 keypair in memory. Keys
// are never persisted, so all outstanding tokens become invalid when the
// process restarts.
func NewEphemeralSignerEdDSA() (Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate ed25519 key: %w", err)
	}

	var kidBytes [8]byte
	if _, err := rand.Read(kidBytes[:]); err != nil {
		return nil, fmt.Errorf("jwtx: generate kid: %w", err)
	}

	return &eddsaSigner{
		kid:  base64.RawURLEncoding.EncodeToString(kidBytes[:]),
		priv: priv,
		pub:  pub,
	}, nil
}

// NewSignerEdDSA wraps an existing Ed25519 private key, e.g. one loaded from
// disk so tokens survive restarts.
func NewSignerEdDSA(kid string, priv ed25519.PrivateKey) Signer {
	return &eddsaSigner{
		kid:  kid,
		priv: priv,
		pub:  priv.Public().(ed25519.PublicKey),
	}
}

func (s *eddsaSigner) Alg() string { return "EdDSA" }
func (s *eddsaSigner) KID() string { return s.kid }

func (s *eddsaSigner) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, c)
	tok.Header["kid"] = s.kid

	signed, err := tok.SignedString(s.priv)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

func (s *eddsaSigner) PublicJWK() JWK {
	return JWK{
		Kty: "OKP",
		Crv: "Ed25519",
		Kid: s.kid,
		Alg: "EdDSA",
		Use: "sig",
		X:   base64.RawURLEncoding.EncodeToString(s.pub),
	}
}

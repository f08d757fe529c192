package service

import (
	"context"
	"errors"
	"time"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/store"
	"github.com/quotables/quotes-api/pkg/cryptox"
	"github.com/quotables/quotes-api/pkg/idx"
	"github.com/quotables/quotes-api/pkg/jwtx"
	"github.com/quotables/quotes-api/pkg/slogx"
)

const (
	// TrialKeyTTL is the lifetime of a trial API key.
	TrialKeyTTL = 365 * 24 * time.Hour

	bearerTokenType = "Bearer"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserDisabled       = errors.New("user_disabled")
	ErrWrongTokenType     = errors.New("wrong_token_type")
)

// AuthService mints and revokes tokens. Every issued token goes through the
// ledger so it can later be revoked or pruned.
type AuthService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Ledger     *LedgerService
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Signup registers a user with the basic role. Duplicate usernames or emails
// surface as store.ErrAlreadyExists.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (domain.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		Roles:        []string{domain.RoleBasic},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user signed up", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks the credentials and mints an access/refresh pair. Both tokens
// are recorded in the ledger atomically.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		slogx.FromContext(ctx).Info("login failed", "username", username)
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrUserDisabled
	}

	now := time.Now()
	accessClaims := jwtx.NewTokenClaims(user.ID, user.Username, jwtx.TokenTypeAccess, user.Roles, s.AccessTTL, s.Issuer, now)
	refreshClaims := jwtx.NewTokenClaims(user.ID, user.Username, jwtx.TokenTypeRefresh, user.Roles, s.RefreshTTL, s.Issuer, now)

	accessToken, err := s.Signer.Sign(accessClaims)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.Signer.Sign(refreshClaims)
	if err != nil {
		return nil, err
	}

	accessExpiry := now.Add(s.AccessTTL).UTC()
	refreshExpiry := now.Add(s.RefreshTTL).UTC()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := recordToken(ctx, tx.Tokens(), accessClaims.ID, domain.TokenTypeAccess, user.ID, &accessExpiry); err != nil {
			return err
		}
		_, err := recordToken(ctx, tx.Tokens(), refreshClaims.ID, domain.TokenTypeRefresh, user.ID, &refreshExpiry)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    bearerTokenType,
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

// Refresh mints a fresh access token for the verified refresh claims. The
// transport layer has already checked the signature and the ledger.
func (s *AuthService) Refresh(ctx context.Context, claims jwtx.Claims) (*domain.TokenPair, error) {
	if claims.TokenType != jwtx.TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrUserDisabled
	}

	now := time.Now()
	accessClaims := jwtx.NewTokenClaims(user.ID, user.Username, jwtx.TokenTypeAccess, user.Roles, s.AccessTTL, s.Issuer, now)
	accessToken, err := s.Signer.Sign(accessClaims)
	if err != nil {
		return nil, err
	}

	accessExpiry := now.Add(s.AccessTTL).UTC()
	if _, err := s.Ledger.Record(ctx, accessClaims.ID, domain.TokenTypeAccess, user.ID, &accessExpiry); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken: accessToken,
		TokenType:   bearerTokenType,
		ExpiresIn:   int64(s.AccessTTL.Seconds()),
	}, nil
}

// RevokeToken revokes the presented token in the ledger. wantType pins the
// endpoint to access or refresh tokens.
func (s *AuthService) RevokeToken(ctx context.Context, claims jwtx.Claims, wantType string) error {
	if claims.TokenType != wantType {
		return ErrWrongTokenType
	}
	if err := s.Ledger.Revoke(ctx, claims.ID, claims.Subject); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("token revoked", "user_id", claims.Subject, "token_type", wantType)
	return nil
}

// TrialKey mints a year-long access-type API key for the user.
func (s *AuthService) TrialKey(ctx context.Context, userID string) (string, domain.TokenRecord, error) {
	expiry := time.Now().Add(TrialKeyTTL).UTC()
	return s.mintKey(ctx, userID, TrialKeyTTL, &expiry)
}

// PermanentKey mints a non-expiring access-type API key. Pruning never
// removes it; only an explicit revoke ends its life.
func (s *AuthService) PermanentKey(ctx context.Context, userID string) (string, domain.TokenRecord, error) {
	return s.mintKey(ctx, userID, 0, nil)
}

func (s *AuthService) mintKey(ctx context.Context, userID string, ttl time.Duration, expiresAt *time.Time) (string, domain.TokenRecord, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return "", domain.TokenRecord{}, err
	}
	if !user.Active {
		return "", domain.TokenRecord{}, ErrUserDisabled
	}

	claims := jwtx.NewTokenClaims(user.ID, user.Username, jwtx.TokenTypeAccess, user.Roles, ttl, s.Issuer, time.Now())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", domain.TokenRecord{}, err
	}

	record, err := s.Ledger.Record(ctx, claims.ID, domain.TokenTypeAccess, user.ID, expiresAt)
	if err != nil {
		return "", domain.TokenRecord{}, err
	}

	slogx.FromContext(ctx).Info("api key minted", "user_id", user.ID, "permanent", expiresAt == nil)
	return token, record, nil
}

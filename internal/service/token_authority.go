package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// IdentityResolver loads the public projection of a stored identity.
type IdentityResolver interface {
	FindIdentity(ctx context.Context, id string) (model.Identity, error)
}

// TokenAuthority mints and checks the access/refresh pair. Access tokens are
// verified statelessly; refresh tokens are only honored while their sha256
// fingerprint is the one stored for the identity.
type TokenAuthority struct {
	fingerprints  FingerprintStore
	identities    IdentityResolver
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenAuthority(fingerprints FingerprintStore, identities IdentityResolver, accessSecret string, refreshSecret string, accessTTL time.Duration, refreshTTL time.Duration) *TokenAuthority {
	return &TokenAuthority{
		fingerprints:  fingerprints,
		identities:    identities,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Issue mints a fresh pair for identity and makes its refresh token the only
// one accepted by Rotate.
func (a *TokenAuthority) Issue(ctx context.Context, identity model.Identity) (model.TokenPair, error) {
	pair, err := a.mint(identity)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := a.fingerprints.SetRefreshFingerprint(ctx, identity.ID, Fingerprint(pair.RefreshToken)); err != nil {
		return model.TokenPair{}, fmt.Errorf("store refresh fingerprint: %w", err)
	}

	return pair, nil
}

func (a *TokenAuthority) VerifyAccess(token string) (*model.AuthClaims, error) {
	claims, err := a.parse(token, a.accessSecret, tokenTypeAccess)
	if err != nil {
		return nil, apierror.Wrap(err, apierror.CodeUnauthorized, "invalid or expired access token", http.StatusUnauthorized)
	}
	return claims, nil
}

// Rotate exchanges a refresh token for a new pair. The stored fingerprint is
// swapped conditionally, so a token that was already rotated, revoked or
// replaced by a newer login is rejected.
func (a *TokenAuthority) Rotate(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := a.parse(refreshToken, a.refreshSecret, tokenTypeRefresh)
	if err != nil {
		return model.TokenPair{}, invalidRefresh(err)
	}

	identity, err := a.identities.FindIdentity(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.TokenPair{}, invalidRefresh(fmt.Errorf("%w: subject no longer exists", model.ErrTokenInvalid))
		}
		return model.TokenPair{}, fmt.Errorf("load refresh subject: %w", err)
	}

	pair, err := a.mint(identity)
	if err != nil {
		return model.TokenPair{}, err
	}

	swapped, err := a.fingerprints.SwapRefreshFingerprint(ctx, identity.ID, Fingerprint(refreshToken), Fingerprint(pair.RefreshToken))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("swap refresh fingerprint: %w", err)
	}
	if !swapped {
		return model.TokenPair{}, invalidRefresh(model.ErrTokenReused)
	}

	return pair, nil
}

// Revoke drops the stored fingerprint; outstanding access tokens stay valid
// until they expire.
func (a *TokenAuthority) Revoke(ctx context.Context, userID string) error {
	if err := a.fingerprints.ClearRefreshFingerprint(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh fingerprint: %w", err)
	}
	return nil
}

func (a *TokenAuthority) AccessTTL() time.Duration  { return a.accessTTL }
func (a *TokenAuthority) RefreshTTL() time.Duration { return a.refreshTTL }

// Fingerprint is the stored form of a refresh token.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func invalidRefresh(cause error) error {
	return apierror.Wrap(cause, apierror.CodeUnauthorized, "invalid refresh token", http.StatusUnauthorized)
}

func (a *TokenAuthority) mint(identity model.Identity) (model.TokenPair, error) {
	now := a.now()

	accessToken, err := a.sign(a.accessSecret, jwt.MapClaims{
		"sub": identity.ID,
		"typ": tokenTypeAccess,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(a.accessTTL).Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshToken, err := a.sign(a.refreshSecret, jwt.MapClaims{
		"sub": identity.ID,
		"typ": tokenTypeRefresh,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(a.refreshTTL).Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(a.accessTTL.Seconds()),
		User:         identity,
	}, nil
}

func (a *TokenAuthority) sign(secret []byte, claims jwt.MapClaims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %v token: %w", claims["typ"], err)
	}
	return signed, nil
}

func (a *TokenAuthority) parse(tokenString string, secret []byte, expectedType string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, model.ErrTokenInvalid
	}

	typ, _ := claimsMap["typ"].(string)
	if typ != expectedType {
		return nil, fmt.Errorf("%w: unexpected token type %q", model.ErrTokenInvalid, typ)
	}

	claims := &model.AuthClaims{Type: typ}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", model.ErrTokenInvalid)
	}

	return claims, nil
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go-media-backend/internal/logger"
	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

// AccessTokenCookie is checked before the Authorization header.
const AccessTokenCookie = "accessToken"

type sessionVerifier interface {
	VerifyAccess(token string) (*model.AuthClaims, error)
	ResolveIdentity(ctx context.Context, userID string) (model.Identity, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

type AuthMiddleware struct {
	verifier sessionVerifier
}

func NewAuthMiddleware(verifier sessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth resolves the request credential to a live identity or answers
// 401 without calling next.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := credentialFrom(r)
		if token == "" {
			writeFailure(w, http.StatusUnauthorized, apierror.CodeUnauthorized, "authentication required")
			return
		}

		claims, err := m.verifier.VerifyAccess(token)
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, apierror.CodeUnauthorized, "invalid or expired access token")
			return
		}

		identity, err := m.verifier.ResolveIdentity(r.Context(), claims.UserID)
		if err != nil {
			if !apierror.HasCode(err, apierror.CodeUnauthorized) {
				logger.FromContext(r.Context()).Error("resolve identity", slog.String("error", err.Error()))
			}
			writeFailure(w, http.StatusUnauthorized, apierror.CodeUnauthorized, "invalid or expired access token")
			return
		}

		ctx := WithIdentity(r.Context(), identity)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", identity.ID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// credentialFrom returns the first present carrier: cookie, then bearer header.
func credentialFrom(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

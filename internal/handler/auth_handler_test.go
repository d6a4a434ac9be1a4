package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-media-backend/internal/middleware"
	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, req model.RegisterRequest, actor model.AuditActor) (model.Identity, error) {
	args := m.Called(ctx, req, actor)
	return args.Get(0).(model.Identity), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req model.LoginRequest, actor model.AuditActor) (model.TokenPair, error) {
	args := m.Called(ctx, req, actor)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string, actor model.AuditActor) (model.TokenPair, error) {
	args := m.Called(ctx, refreshToken, actor)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, identity model.Identity, actor model.AuditActor) error {
	return m.Called(ctx, identity, actor).Error(0)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, identity model.Identity, req model.ChangePasswordRequest, actor model.AuditActor) error {
	return m.Called(ctx, identity, req, actor).Error(0)
}

var testCookies = CookieOptions{Secure: true, AccessTTL: 15 * time.Minute, RefreshTTL: 240 * time.Hour}

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestAuthHandler_LoginSetsSessionCookies(t *testing.T) {
	t.Parallel()

	svc := &mockAuthService{}
	h := NewAuthHandler(svc, testCookies)
	pair := model.TokenPair{AccessToken: "acc", RefreshToken: "ref", TokenType: "Bearer", ExpiresIn: 900, User: alice}
	svc.On("Login", mock.Anything, model.LoginRequest{Email: "alice@example.com", Password: "hunter22"}, mock.AnythingOfType("model.AuditActor")).
		Return(pair, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"alice@example.com","password":"hunter22"}`))
	rec := serve("/api/v1/auth/login", h.Login, req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec.Body)
	assert.True(t, body.Success)
	assert.Contains(t, string(body.Data), `"access_token":"acc"`)

	cookies := cookiesByName(rec)
	require.Contains(t, cookies, middleware.AccessTokenCookie)
	require.Contains(t, cookies, RefreshTokenCookie)

	access := cookies[middleware.AccessTokenCookie]
	assert.Equal(t, "acc", access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, 900, access.MaxAge)
	assert.Equal(t, int((240 * time.Hour).Seconds()), cookies[RefreshTokenCookie].MaxAge)
	svc.AssertExpectations(t)
}

func TestAuthHandler_LoginFailure(t *testing.T) {
	t.Parallel()

	svc := &mockAuthService{}
	h := NewAuthHandler(svc, testCookies)
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(model.TokenPair{}, apierror.Unauthorized("invalid credentials")).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	rec := serve("/api/v1/auth/login", h.Login, req, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandler_RegisterRejectsBadJSON(t *testing.T) {
	t.Parallel()

	svc := &mockAuthService{}
	h := NewAuthHandler(svc, testCookies)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"username":`))
	rec := serve("/api/v1/auth/register", h.Register, req, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_RegisterCreated(t *testing.T) {
	t.Parallel()

	svc := &mockAuthService{}
	h := NewAuthHandler(svc, testCookies)
	svc.On("Register", mock.Anything, model.RegisterRequest{Username: "alice", Email: "alice@example.com", FullName: "Alice", Password: "hunter22"}, mock.Anything).
		Return(alice, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"username":"alice","email":"alice@example.com","full_name":"Alice","password":"hunter22"}`))
	rec := serve("/api/v1/auth/register", h.Register, req, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter22")
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Parallel()

	pair := model.TokenPair{AccessToken: "acc2", RefreshToken: "ref2", User: alice}

	t.Run("cookie wins over body", func(t *testing.T) {
		svc := &mockAuthService{}
		h := NewAuthHandler(svc, testCookies)
		svc.On("Refresh", mock.Anything, "from-cookie", mock.Anything).Return(pair, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"from-body"}`))
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "from-cookie"})
		rec := serve("/api/v1/auth/refresh", h.Refresh, req, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ref2", cookiesByName(rec)[RefreshTokenCookie].Value)
		svc.AssertExpectations(t)
	})

	t.Run("body fallback", func(t *testing.T) {
		svc := &mockAuthService{}
		h := NewAuthHandler(svc, testCookies)
		svc.On("Refresh", mock.Anything, "from-body", mock.Anything).Return(pair, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":" from-body "}`))
		rec := serve("/api/v1/auth/refresh", h.Refresh, req, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing token", func(t *testing.T) {
		svc := &mockAuthService{}
		h := NewAuthHandler(svc, testCookies)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		rec := serve("/api/v1/auth/refresh", h.Refresh, req, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reused token", func(t *testing.T) {
		svc := &mockAuthService{}
		h := NewAuthHandler(svc, testCookies)
		svc.On("Refresh", mock.Anything, "stale", mock.Anything).Return(model.TokenPair{}, apierror.Unauthorized("invalid or expired refresh token")).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "stale"})
		rec := serve("/api/v1/auth/refresh", h.Refresh, req, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestAuthHandler_LogoutClearsCookies(t *testing.T) {
	t.Parallel()

	svc := &mockAuthService{}
	h := NewAuthHandler(svc, testCookies)
	svc.On("Logout", mock.Anything, alice, model.AuditActor{UserID: alice.ID, IP: "192.0.2.1"}).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := serve("/api/v1/auth/logout", h.Logout, req, &alice)

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := cookiesByName(rec)
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		require.Contains(t, cookies, name)
		assert.Empty(t, cookies[name].Value)
		assert.Less(t, cookies[name].MaxAge, 0)
	}
	svc.AssertExpectations(t)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	t.Parallel()

	svc := &mockAuthService{}
	h := NewAuthHandler(svc, testCookies)
	svc.On("ChangePassword", mock.Anything, alice, model.ChangePasswordRequest{OldPassword: "old-secret", NewPassword: "new-secret"}, mock.Anything).
		Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/password", strings.NewReader(`{"old_password":"old-secret","new_password":"new-secret"}`))
	rec := serve("/api/v1/users/me/password", h.ChangePassword, req, &alice)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Result().Cookies(), 2)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Me(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&mockAuthService{}, testCookies)

	rec := serve("/api/v1/users/me", h.Me, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), &alice)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), alice.Username)

	rec = serve("/api/v1/users/me", h.Me, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go-media-backend/internal/middleware"
	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

const RefreshTokenCookie = "refreshToken"

type authService interface {
	Register(ctx context.Context, req model.RegisterRequest, actor model.AuditActor) (model.Identity, error)
	Login(ctx context.Context, req model.LoginRequest, actor model.AuditActor) (model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, actor model.AuditActor) (model.TokenPair, error)
	Logout(ctx context.Context, identity model.Identity, actor model.AuditActor) error
	ChangePassword(ctx context.Context, identity model.Identity, req model.ChangePasswordRequest, actor model.AuditActor) error
}

// CookieOptions controls the session cookies set next to the JSON token pair.
type CookieOptions struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthHandler struct {
	service authService
	cookies CookieOptions
}

func NewAuthHandler(service authService, cookies CookieOptions) *AuthHandler {
	return &AuthHandler{service: service, cookies: cookies}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), payload, actorFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, "user registered")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	tokens, err := h.service.Login(r.Context(), payload, actorFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setSessionCookies(w, tokens)
	writeSuccess(w, http.StatusOK, tokens, "logged in")
}

// Refresh takes the refresh token from its cookie, falling back to the body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = strings.TrimSpace(cookie.Value)
	}

	if token == "" && r.ContentLength != 0 {
		var payload model.RefreshRequest
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, r, err)
			return
		}
		token = strings.TrimSpace(payload.RefreshToken)
	}

	if token == "" {
		writeError(w, r, apierror.Unauthorized("refresh token is required"))
		return
	}

	tokens, err := h.service.Refresh(r.Context(), token, actorFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setSessionCookies(w, tokens)
	writeSuccess(w, http.StatusOK, tokens, "session refreshed")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), identity, actorFromRequest(r)); err != nil {
		writeError(w, r, err)
		return
	}

	h.clearSessionCookies(w)
	writeSuccess(w, http.StatusOK, map[string]any{}, "logged out")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var payload model.ChangePasswordRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), identity, payload, actorFromRequest(r)); err != nil {
		writeError(w, r, err)
		return
	}

	h.clearSessionCookies(w)
	writeSuccess(w, http.StatusOK, map[string]any{}, "password changed")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	writeSuccess(w, http.StatusOK, identity, "current user")
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, tokens model.TokenPair) {
	http.SetCookie(w, h.cookie(middleware.AccessTokenCookie, tokens.AccessToken, h.cookies.AccessTTL))
	http.SetCookie(w, h.cookie(RefreshTokenCookie, tokens.RefreshToken, h.cookies.RefreshTTL))
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		cookie := h.cookie(name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(w, cookie)
	}
}

func (h *AuthHandler) cookie(name string, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

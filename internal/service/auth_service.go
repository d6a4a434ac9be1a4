package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

const minPasswordLength = 8

// AuthService owns the session lifecycle: account creation, credential
// checks and the token pair exchange.
type AuthService struct {
	users        UserStore
	tokens       *TokenAuthority
	audit        *AuditService
	passwordCost int
}

func NewAuthService(users UserStore, tokens *TokenAuthority, audit *AuditService) *AuthService {
	return &AuthService{users: users, tokens: tokens, audit: audit, passwordCost: 12}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, actor model.AuditActor) (model.Identity, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)

	switch {
	case username == "":
		return model.Identity{}, apierror.InvalidArgument("username is required", "username")
	case email == "":
		return model.Identity{}, apierror.InvalidArgument("email is required", "email")
	case fullName == "":
		return model.Identity{}, apierror.InvalidArgument("full name is required", "full_name")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.Identity{}, apierror.InvalidArgument("email is invalid", "email")
	}
	if len(req.Password) < minPasswordLength {
		return model.Identity{}, apierror.InvalidArgument(fmt.Sprintf("password must be at least %d characters", minPasswordLength), "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.passwordCost)
	if err != nil {
		return model.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.Identity{}, apierror.Conflict("username or email already registered", "")
		}
		return model.Identity{}, err
	}

	actor.UserID = user.ID
	s.audit.Log(ctx, model.AuditActionRegister, actor, nil)

	return user.Identity(), nil
}

// Login accepts a username or an email. Unknown users and wrong passwords
// produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, actor model.AuditActor) (model.TokenPair, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" && email == "" {
		return model.TokenPair{}, apierror.InvalidArgument("username or email is required", "username")
	}
	if req.Password == "" {
		return model.TokenPair{}, apierror.InvalidArgument("password is required", "password")
	}

	user, err := s.users.FindByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.audit.Log(ctx, model.AuditActionLogin, actor, model.ErrInvalidCredentials)
			return model.TokenPair{}, invalidCredentials()
		}
		return model.TokenPair{}, err
	}

	actor.UserID = user.ID
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.audit.Log(ctx, model.AuditActionLogin, actor, model.ErrInvalidCredentials)
		return model.TokenPair{}, invalidCredentials()
	}

	pair, err := s.tokens.Issue(ctx, user.Identity())
	if err != nil {
		return model.TokenPair{}, err
	}

	s.audit.Log(ctx, model.AuditActionLogin, actor, nil)
	return pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string, actor model.AuditActor) (model.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return model.TokenPair{}, apierror.Unauthorized("refresh token is required")
	}

	pair, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		action := model.AuditActionRefresh
		if errors.Is(err, model.ErrTokenReused) {
			action = model.AuditActionRefreshReuse
		}
		if apierror.HasCode(err, apierror.CodeUnauthorized) {
			s.audit.Log(ctx, action, actor, err)
		}
		return model.TokenPair{}, err
	}

	actor.UserID = pair.User.ID
	s.audit.Log(ctx, model.AuditActionRefresh, actor, nil)
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, identity model.Identity, actor model.AuditActor) error {
	if err := s.tokens.Revoke(ctx, identity.ID); err != nil {
		return err
	}

	actor.UserID = identity.ID
	s.audit.Log(ctx, model.AuditActionLogout, actor, nil)
	return nil
}

// ChangePassword replaces the password hash and ends every refreshable
// session of the identity.
func (s *AuthService) ChangePassword(ctx context.Context, identity model.Identity, req model.ChangePasswordRequest, actor model.AuditActor) error {
	if req.OldPassword == "" {
		return apierror.InvalidArgument("old password is required", "old_password")
	}
	if len(req.NewPassword) < minPasswordLength {
		return apierror.InvalidArgument(fmt.Sprintf("new password must be at least %d characters", minPasswordLength), "new_password")
	}

	user, err := s.users.FindByID(ctx, identity.ID)
	if err != nil {
		return err
	}

	actor.UserID = identity.ID
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		s.audit.Log(ctx, model.AuditActionPasswordChange, actor, model.ErrInvalidCredentials)
		return apierror.InvalidArgument("old password is incorrect", "old_password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.passwordCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, identity.ID, string(hash)); err != nil {
		return err
	}

	s.audit.Log(ctx, model.AuditActionPasswordChange, actor, nil)
	return nil
}

// VerifyAccess checks an access token without touching the store.
func (s *AuthService) VerifyAccess(token string) (*model.AuthClaims, error) {
	return s.tokens.VerifyAccess(token)
}

// ResolveIdentity loads the live identity behind verified claims.
func (s *AuthService) ResolveIdentity(ctx context.Context, userID string) (model.Identity, error) {
	identity, err := s.users.FindIdentity(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.Identity{}, apierror.Wrap(err, apierror.CodeUnauthorized, "invalid or expired access token", http.StatusUnauthorized)
		}
		return model.Identity{}, err
	}
	return identity, nil
}

func invalidCredentials() error {
	return apierror.Wrap(model.ErrInvalidCredentials, apierror.CodeUnauthorized, "invalid credentials", http.StatusUnauthorized)
}

package model

import "errors"

var (
	// Identity related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenReused  = errors.New("refresh token no longer matches stored fingerprint")

	// Content related errors
	ErrVideoNotFound    = errors.New("video not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrTweetNotFound    = errors.New("tweet not found")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrAlreadyInList    = errors.New("video already in playlist")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Store level errors
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflict")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)

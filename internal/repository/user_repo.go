package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-backend/internal/model"
)

// MediaField names a replaceable profile image column.
type MediaField string

const (
	MediaAvatar MediaField = "avatar_url"
	MediaCover  MediaField = "cover_image_url"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, full_name, avatar_url, cover_image_url,
	password_hash, refresh_token_hash, created_at, updated_at`

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.AvatarURL, &u.CoverImageURL,
		&u.PasswordHash, &u.RefreshTokenHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	created, err := scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, full_name, avatar_url, cover_image_url, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		strings.ToLower(u.Username), strings.ToLower(u.Email), u.FullName, u.AvatarURL, u.CoverImageURL, u.PasswordHash))
	if err != nil {
		err = mapWriteError(err, "create user", nil)
		if errors.Is(err, model.ErrConflict) {
			return model.User{}, fmt.Errorf("create user: %w", model.ErrUserAlreadyExists)
		}
		return model.User{}, err
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return model.User{}, mapReadError(err, "find user by id", model.ErrUserNotFound)
	}
	return u, nil
}

// FindByLogin matches a username or an email, both stored lower-cased.
func (r *UserRepository) FindByLogin(ctx context.Context, username string, email string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		 LIMIT 1`,
		strings.ToLower(strings.TrimSpace(username)), strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return model.User{}, mapReadError(err, "find user by login", model.ErrUserNotFound)
	}
	return u, nil
}

// FindIdentity loads the public projection used by authenticated requests.
func (r *UserRepository) FindIdentity(ctx context.Context, id string) (model.Identity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, email, full_name, avatar_url, cover_image_url, created_at, updated_at
		 FROM users WHERE id = $1`, id)
	if err != nil {
		return model.Identity{}, mapWriteError(err, "find identity", model.ErrUserNotFound)
	}

	identity, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Identity])
	if err != nil {
		return model.Identity{}, mapReadError(err, "find identity", model.ErrUserNotFound)
	}
	return identity, nil
}

func (r *UserRepository) FindIDByUsername(ctx context.Context, username string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`,
		strings.ToLower(strings.TrimSpace(username))).Scan(&id)
	if err != nil {
		return "", mapReadError(err, "find user id by username", model.ErrUserNotFound)
	}
	return id, nil
}

func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, mapWriteError(err, "check user exists", nil)
	}
	return exists, nil
}

// UpdatePassword stores a new hash and clears the refresh fingerprint in the
// same statement.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, refresh_token_hash = NULL, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return mapWriteError(err, "update password", nil)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateAccount(ctx context.Context, id string, fullName string, email string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET full_name = $2, email = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, fullName, strings.ToLower(email)))
	if err != nil {
		err = mapReadError(err, "update account", model.ErrUserNotFound)
		if errors.Is(err, model.ErrConflict) {
			return model.User{}, fmt.Errorf("update account: %w", model.ErrUserAlreadyExists)
		}
		return model.User{}, err
	}
	return u, nil
}

// ReplaceMedia swaps a profile image URL under a row lock and returns the
// committed user along with the URL it replaced.
func (r *UserRepository) ReplaceMedia(ctx context.Context, id string, field MediaField, url string) (model.User, string, error) {
	switch field {
	case MediaAvatar, MediaCover:
	default:
		return model.User{}, "", fmt.Errorf("replace media: unknown field %q: %w", field, model.ErrInvalidInput)
	}

	var (
		updated  model.User
		previous string
	)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT `+string(field)+` FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
		if err != nil {
			return mapReadError(err, "lock user media", model.ErrUserNotFound)
		}

		updated, err = scanUser(tx.QueryRow(ctx,
			`UPDATE users SET `+string(field)+` = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns,
			id, url))
		if err != nil {
			return mapWriteError(err, "update user media", model.ErrUserNotFound)
		}
		return nil
	})
	if err != nil {
		return model.User{}, "", err
	}
	return updated, previous, nil
}

func (r *UserRepository) SetRefreshFingerprint(ctx context.Context, id string, fingerprint string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET refresh_token_hash = $2 WHERE id = $1`, id, fingerprint)
	if err != nil {
		return mapWriteError(err, "set refresh fingerprint", nil)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// SwapRefreshFingerprint replaces previous with next only when previous is
// still the stored value. It reports whether the swap happened.
func (r *UserRepository) SwapRefreshFingerprint(ctx context.Context, id string, previous string, next string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token_hash = $3 WHERE id = $1 AND refresh_token_hash = $2`,
		id, previous, next)
	if err != nil {
		return false, mapWriteError(err, "swap refresh fingerprint", nil)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) ClearRefreshFingerprint(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET refresh_token_hash = NULL WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, "clear refresh fingerprint", nil)
	}
	return nil
}

// ChannelProfile resolves a channel by username with its subscription counts
// and whether viewerID subscribes to it.
func (r *UserRepository) ChannelProfile(ctx context.Context, username string, viewerID string) (model.ChannelProfile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.username, u.email, u.full_name, u.avatar_url, u.cover_image_url,
		        (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS total_subscribers,
		        (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS total_subscribed_to,
		        EXISTS(SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2) AS is_subscribed,
		        u.created_at
		 FROM users u
		 WHERE u.username = $1`,
		strings.ToLower(strings.TrimSpace(username)), nullable(viewerID))
	if err != nil {
		return model.ChannelProfile{}, mapWriteError(err, "channel profile", model.ErrUserNotFound)
	}

	profile, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.ChannelProfile])
	if err != nil {
		return model.ChannelProfile{}, mapReadError(err, "channel profile", model.ErrUserNotFound)
	}
	return profile, nil
}

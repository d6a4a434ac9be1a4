package model

import "time"

// User is the persisted credential record. PasswordHash and RefreshTokenHash
// never leave the service layer.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	AvatarURL        string    `json:"avatar_url"`
	CoverImageURL    string    `json:"cover_image_url"`
	PasswordHash     string    `json:"-"`
	RefreshTokenHash *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Identity is the public projection of a User attached to authenticated requests.
type Identity struct {
	ID            string    `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	Email         string    `json:"email" db:"email"`
	FullName      string    `json:"full_name" db:"full_name"`
	AvatarURL     string    `json:"avatar_url" db:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url" db:"cover_image_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func (u User) Identity() Identity {
	return Identity{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// OwnerSummary is the owner projection joined into content listings.
type OwnerSummary struct {
	ID        string `json:"id" db:"owner_id"`
	Username  string `json:"username" db:"owner_username"`
	FullName  string `json:"full_name" db:"owner_full_name"`
	AvatarURL string `json:"avatar_url" db:"owner_avatar_url"`
}

// ChannelSummary is a row of a subscription listing.
type ChannelSummary struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	FullName     string    `json:"full_name" db:"full_name"`
	AvatarURL    string    `json:"avatar_url" db:"avatar_url"`
	Subscribers  int64     `json:"subscribers" db:"subscribers"`
	IsSubscribed bool      `json:"is_subscribed" db:"is_subscribed"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
}

// ChannelProfile is the viewer-relative profile of a channel.
type ChannelProfile struct {
	ID                string    `json:"id" db:"id"`
	Username          string    `json:"username" db:"username"`
	Email             string    `json:"email" db:"email"`
	FullName          string    `json:"full_name" db:"full_name"`
	AvatarURL         string    `json:"avatar_url" db:"avatar_url"`
	CoverImageURL     string    `json:"cover_image_url" db:"cover_image_url"`
	TotalSubscribers  int64     `json:"total_subscribers" db:"total_subscribers"`
	TotalSubscribedTo int64     `json:"total_subscribed_to" db:"total_subscribed_to"`
	IsSubscribed      bool      `json:"is_subscribed" db:"is_subscribed"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

type AuthClaims struct {
	UserID  string `json:"sub"`
	Type    string `json:"typ"`
	TokenID string `json:"jti"`
}

type TokenPair struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	User         Identity `json:"user"`
}

package model

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// LoginRequest accepts either Username or Email.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type UpdateAccountRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type CreatePlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PublishVideoInput carries the already spooled uploads of a publish request.
type PublishVideoInput struct {
	Title       string
	Description string
	Video       LocalFile
	Thumbnail   LocalFile
}

// LocalFile is an upload spooled to local disk, handed to the object store.
type LocalFile struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// StoredObject is what the object store returns for a completed upload.
type StoredObject struct {
	URL             string
	Key             string
	DurationSeconds float64
}

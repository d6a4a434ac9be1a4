package model

// APIResponse is the success envelope. Status mirrors the HTTP status code.
type APIResponse struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Status  int          `json:"status"`
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []ErrorEntry `json:"errors"`
}

type ErrorEntry struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type SubscriptionStatus struct {
	Subscribed bool `json:"subscribed"`
}

type LikeStatus struct {
	Liked bool `json:"liked"`
}

type SubscriberCount struct {
	ChannelID   string `json:"channel_id"`
	Subscribers int64  `json:"subscribers"`
}

type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

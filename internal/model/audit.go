package model

import "time"

const (
	AuditActionRegister       = "auth.register"
	AuditActionLogin          = "auth.login"
	AuditActionLogout         = "auth.logout"
	AuditActionRefresh        = "auth.refresh"
	AuditActionRefreshReuse   = "auth.refresh_reuse"
	AuditActionPasswordChange = "auth.password_change"

	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

type AuditActor struct {
	UserID string `json:"user_id,omitempty"`
	IP     string `json:"ip,omitempty"`
}

type AuditEntry struct {
	ID         string     `json:"id"`
	Action     string     `json:"action"`
	OccurredAt time.Time  `json:"occurred_at"`
	Actor      AuditActor `json:"actor"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
}

type AuditQuery struct {
	ActorID string
	Action  string
	Status  string
	From    time.Time
	To      time.Time
	Page    PageOptions
}

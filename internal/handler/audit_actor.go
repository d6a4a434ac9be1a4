package handler

import (
	"net/http"

	"go-media-backend/internal/middleware"
	"go-media-backend/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		actor.UserID = identity.ID
	}

	return actor
}

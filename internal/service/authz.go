package service

import (
	"strings"

	"github.com/google/uuid"

	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

// Resource is anything with an owning identity.
type Resource interface {
	ResourceOwner() string
}

// IsOwner reports whether identity owns resource, comparing canonical ids.
func IsOwner(identity model.Identity, resource Resource) bool {
	if resource == nil {
		return false
	}
	owner := canonicalID(resource.ResourceOwner())
	return owner != "" && owner == canonicalID(identity.ID)
}

func requireOwner(identity model.Identity, resource Resource, what string) error {
	if !IsOwner(identity, resource) {
		return apierror.Forbidden("only the owner can modify this " + what)
	}
	return nil
}

// parseID validates raw as a UUID and returns its canonical form.
func parseID(raw string, field string) (string, error) {
	id := canonicalID(raw)
	if id == "" {
		return "", apierror.InvalidArgument("invalid "+field, field)
	}
	return id, nil
}

func canonicalID(raw string) string {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return parsed.String()
}

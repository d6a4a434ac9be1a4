package util

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"go-media-backend/pkg/apierror"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename reduces a client supplied filename to a short, URL safe
// object key segment.
func SanitizeFilename(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apierror.InvalidArgument("filename cannot be empty", "filename")
	}

	if strings.Contains(trimmed, "\x00") {
		return "", apierror.InvalidArgument("filename contains null bytes", "filename")
	}

	builder := strings.Builder{}
	builder.Grow(len(trimmed))

	for _, char := range trimmed {
		if unicode.IsControl(char) || isInvisibleUnicode(char) {
			continue
		}
		builder.WriteRune(char)
	}

	base := path.Base(strings.ReplaceAll(builder.String(), `\`, "/"))
	cleaned := strings.Trim(unsafeKeyChars.ReplaceAllString(base, "_"), "._")
	if cleaned == "" {
		return "", apierror.InvalidArgument("filename is invalid after sanitization", "filename")
	}

	// Keep the tail so the extension survives truncation.
	runes := []rune(cleaned)
	if len(runes) > 96 {
		runes = runes[len(runes)-96:]
	}

	return string(runes), nil
}

// ObjectKey builds "<prefix>/<ownerID>/<uuid><ext>". Keys never reuse a
// client name so two uploads cannot collide.
func ObjectKey(prefix string, ownerID string, ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(prefix, ownerID, uuid.NewString()+ext)
}

// isInvisibleUnicode returns true for zero-width and formatting characters.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // Zero-Width Space
		'\u200C', // Zero-Width Non-Joiner
		'\u200D', // Zero-Width Joiner
		'\u2060', // Word Joiner
		'\uFEFF': // Zero-Width No-Break Space / BOM
		return true
	}

	return unicode.Is(unicode.Cf, r)
}

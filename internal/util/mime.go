package util

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DetectMIMEFromPath sniffs the content type of a spooled upload from its
// first 512 bytes.
func DetectMIMEFromPath(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read upload header: %w", err)
	}

	return http.DetectContentType(buffer[:n]), nil
}

func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(cleanMIME(mimeType), "image/")
}

func IsVideoMIME(mimeType string) bool {
	return strings.HasPrefix(cleanMIME(mimeType), "video/")
}

// MIMEAllowed reports whether mimeType matches one of allowed. Entries may
// end in "/*" to accept a whole family.
func MIMEAllowed(mimeType string, allowed []string) bool {
	cleaned := cleanMIME(mimeType)
	if cleaned == "" {
		return false
	}
	for _, candidate := range allowed {
		candidate = cleanMIME(candidate)
		if candidate == cleaned {
			return true
		}
		if family, ok := strings.CutSuffix(candidate, "/*"); ok && strings.HasPrefix(cleaned, family+"/") {
			return true
		}
	}
	return false
}

func IsVideoExtension(extension string) bool {
	switch strings.ToLower(strings.TrimSpace(extension)) {
	case ".mp4", ".m4v", ".mov", ".webm", ".mkv", ".avi", ".wmv", ".flv", ".mpeg", ".mpg", ".3gp", ".ts", ".ogv":
		return true
	default:
		return false
	}
}

// VideoExtension picks the object key extension for a video upload, trusting
// the client name only when it is a known video extension.
func VideoExtension(name string, mimeType string) string {
	if ext := strings.ToLower(filepath.Ext(name)); IsVideoExtension(ext) {
		return ext
	}
	switch cleanMIME(mimeType) {
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "video/x-matroska":
		return ".mkv"
	case "video/x-msvideo", "video/avi":
		return ".avi"
	default:
		return ".mp4"
	}
}

// cleanMIME lower-cases mimeType and drops parameters such as charset.
func cleanMIME(mimeType string) string {
	cleaned := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(cleaned, ";"); idx >= 0 {
		cleaned = strings.TrimSpace(cleaned[:idx])
	}
	return cleaned
}

package middleware

import (
	"encoding/json"
	"net/http"

	"go-media-backend/internal/model"
)

func jsonEncode(w http.ResponseWriter, value any) error {
	return json.NewEncoder(w).Encode(value)
}

// writeFailure renders the failure envelope for errors raised before a
// handler runs.
func writeFailure(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonEncode(w, model.ErrorResponse{
		Status:  status,
		Success: false,
		Message: message,
		Errors:  []model.ErrorEntry{{Code: code}},
	})
}

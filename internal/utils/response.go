package utils

import (
	"encoding/json"
	"net/http"
	"time"

	"ms-servicing/internal/apperr"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Kind      string      `json:"kind,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

func WriteJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// WriteError renders err with the status its kind maps to.
func WriteError(w http.ResponseWriter, message string, err error) {
	resp := ErrorResponse(message, err.Error())
	if kind := apperr.KindOf(err); kind != apperr.KindUnknown {
		resp.Kind = kind.String()
	}
	WriteJSON(w, apperr.HTTPStatus(err), resp)
}

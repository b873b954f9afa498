package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"ms-servicing/internal/apperr"

	"github.com/go-chi/chi/v5"
)

// DecodeJSON reads the request body into v. Unknown fields are rejected.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, apperr.ErrInvalidInput)
	}
	return nil
}

// PathID parses a positive integer URL parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s %q: %w", name, raw, apperr.ErrInvalidInput)
	}
	return id, nil
}

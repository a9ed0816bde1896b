package gateway

import (
	"errors"
	"net/http"
)

var (
	ErrNotConfigured   = errors.New("ai model not configured")
	ErrEmptyResponse   = errors.New("empty model response")
	ErrSessionNotFound = errors.New("chat not initialized, start a new chat session")
	ErrInvalidRequest  = errors.New("invalid ai request")
)

// MapHTTPStatus maps gateway errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

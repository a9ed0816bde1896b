package registry

import (
	"errors"
	"net/http"
)

// Domain errors for registry operations.
var (
	ErrNotFound      = errors.New("registry entry not found")
	ErrInvalidRecord = errors.New("invalid registry record")
)

// MapHTTPStatus maps registry domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidRecord) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

package registrations

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/pashuvision/pkg/storage"
)

// Domain errors for registration operations.
var (
	ErrNotFound            = errors.New("registration not found")
	ErrAnimalNotFound      = errors.New("animal not found")
	ErrVaccinationNotFound = errors.New("vaccination not found")
	ErrPhotoNotFound       = errors.New("photo not found")
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrInvalidVaccination  = errors.New("invalid vaccination")
	ErrInvalidFile         = errors.New("invalid file")
	ErrFileTooLarge        = errors.New("file exceeds maximum upload size")
	ErrNoPhotos            = errors.New("animal has no photos")
)

// MapHTTPStatus maps registration domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAnimalNotFound),
		errors.Is(err, ErrVaccinationNotFound),
		errors.Is(err, ErrPhotoNotFound),
		errors.Is(err, ErrAttachmentNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRegistration),
		errors.Is(err, ErrInvalidVaccination),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrNoPhotos):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

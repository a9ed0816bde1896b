package routes

import (
	"net/http"

	"github.com/JaimeStill/pashuvision/pkg/openapi"
)

// Route binds an HTTP method and ServeMux pattern to a handler. OpenAPI is
// optional; routes without it are registered but left out of the document.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

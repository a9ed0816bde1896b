// Package routes declares route groups and registers them on a ServeMux,
// optionally describing them in an OpenAPI document.
package routes

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/pashuvision/pkg/openapi"
)

// Group organizes routes under a common prefix. Tags apply to every
// described operation in the group that does not set its own.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		walk("", nil, g, func(prefix string, _ []string, r Route) {
			mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
		})
	}
}

// Describe adds the OpenAPI operations of the given groups to spec.
// basePath is prepended to every path, matching where the mux is mounted.
func Describe(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, g := range groups {
		walk("", nil, g, func(prefix string, tags []string, r Route) {
			if r.OpenAPI == nil {
				return
			}
			op := *r.OpenAPI
			if len(op.Tags) == 0 {
				op.Tags = tags
			}
			spec.AddOperation(r.Method, basePath+openAPIPath(prefix+r.Pattern), &op)
		})
	}
}

func walk(parent string, tags []string, g Group, visit func(prefix string, tags []string, r Route)) {
	prefix := parent + g.Prefix
	if len(g.Tags) > 0 {
		tags = g.Tags
	}
	for _, r := range g.Routes {
		visit(prefix, tags, r)
	}
	for _, child := range g.Children {
		walk(prefix, tags, child, visit)
	}
}

// openAPIPath rewrites ServeMux wildcards ({key...}) to OpenAPI templates.
func openAPIPath(pattern string) string {
	if pattern == "" {
		return "/"
	}
	return strings.ReplaceAll(pattern, "...}", "}")
}

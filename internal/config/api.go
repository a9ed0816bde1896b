package config

import (
	"fmt"

	"github.com/JaimeStill/pashuvision/pkg/formatting"
	"github.com/JaimeStill/pashuvision/pkg/middleware"
	"github.com/JaimeStill/pashuvision/pkg/openapi"
	"github.com/JaimeStill/pashuvision/pkg/pagination"
)

const defaultMaxUploadSize = 10 << 20

var corsEnv = &middleware.CORSEnv{
	Enabled:          "PASHU_CORS_ENABLED",
	Origins:          "PASHU_CORS_ORIGINS",
	AllowedMethods:   "PASHU_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "PASHU_CORS_ALLOWED_HEADERS",
	AllowCredentials: "PASHU_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "PASHU_CORS_MAX_AGE",
}

var authEnv = &middleware.AuthEnv{
	Enabled:  "PASHU_AUTH_ENABLED",
	Issuer:   "PASHU_AUTH_ISSUER",
	ClientID: "PASHU_AUTH_CLIENT_ID",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "PASHU_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "PASHU_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "PASHU_OPENAPI_TITLE",
	Description: "PASHU_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, upload limits, and the nested HTTP concerns.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Auth          middleware.AuthConfig `toml:"auth"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns the parsed upload limit, falling back to 10MB.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil || size <= 0 {
		return defaultMaxUploadSize
	}
	return size
}

// Finalize applies defaults, environment overrides, and validation for the
// API config and its nested sections.
func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
	envString(&c.BasePath, "PASHU_API_BASE_PATH")
	envString(&c.MaxUploadSize, "PASHU_API_MAX_UPLOAD_SIZE")

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	c.CORS.Merge(&overlay.CORS)
	c.Auth.Merge(&overlay.Auth)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

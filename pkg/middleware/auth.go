package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// ErrUnauthorized is returned when a request carries no valid bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// AuthConfig holds OIDC bearer-token verification settings.
// Field workers authenticate against the configured issuer; the API only
// verifies ID tokens and never issues them.
type AuthConfig struct {
	Enabled  bool   `toml:"enabled"`
	Issuer   string `toml:"issuer"`
	ClientID string `toml:"client_id"`
}

// AuthEnv maps auth config fields to environment variable names.
type AuthEnv struct {
	Enabled  string
	Issuer   string
	ClientID string
}

// Finalize applies environment overrides and validates required fields when enabled.
func (c *AuthConfig) Finalize(env *AuthEnv) error {
	if env != nil {
		if v := lookup(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
		if v := lookup(env.Issuer); v != "" {
			c.Issuer = v
		}
		if v := lookup(env.ClientID); v != "" {
			c.ClientID = v
		}
	}

	if !c.Enabled {
		return nil
	}
	if c.Issuer == "" {
		return fmt.Errorf("issuer required when auth is enabled")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required when auth is enabled")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay. Enabled always applies.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	c.Enabled = overlay.Enabled
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
}

// TokenVerifier validates a raw bearer token and returns the caller's subject.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (string, error)
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's provider metadata and returns a
// verifier bound to the configured client ID.
func NewOIDCVerifier(ctx context.Context, cfg *AuthConfig) (TokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider %s: %w", cfg.Issuer, err)
	}
	return &oidcVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (v *oidcVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", err
	}
	return token.Subject, nil
}

type subjectKey struct{}

// Subject returns the authenticated subject stored on the request context,
// or an empty string when the request was not authenticated.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// Auth returns middleware that requires a valid bearer token on every request
// except CORS preflights.
func Auth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeUnauthorized(w)
				return
			}

			subject, err := verifier.Verify(r.Context(), strings.TrimSpace(raw))
			if err != nil {
				logger.Warn("token verification failed", "uri", r.URL.RequestURI(), "error", err)
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="pashuvision"`)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + ErrUnauthorized.Error() + `"}`))
}

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "orderbell/internal/core/context"
	"orderbell/pkg/logger"
)

// Config holds authorization configuration.
type Config struct {
	// KeyTTL is how long a fetched realm key is trusted
	KeyTTL time.Duration

	// AdminRoles grant privileged access; any one of them suffices
	AdminRoles []string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		KeyTTL:     60 * time.Second,
		AdminRoles: []string{"dsek.sexm", "dsek.infu"},
	}
}

// Claims are the Keycloak token claims the service reads.
type Claims struct {
	jwt.RegisteredClaims
	PreferredUsername string   `json:"preferred_username"`
	Name              string   `json:"name"`
	Group             []string `json:"group"`
}

// Authorizer verifies Keycloak tokens and derives the caller's roles.
type Authorizer struct {
	keys       *keyCache
	adminRoles []string
	parser     *jwt.Parser
}

// NewAuthorizer creates an authorizer verifying tokens with keys from source.
func NewAuthorizer(source KeySource, cfg Config) *Authorizer {
	if cfg.KeyTTL <= 0 {
		cfg.KeyTTL = DefaultConfig().KeyTTL
	}
	return &Authorizer{
		keys:       newKeyCache(source, cfg.KeyTTL),
		adminRoles: cfg.AdminRoles,
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}), jwt.WithExpirationRequired()),
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authorize resolves the caller from an Authorization header value.
// Any failure, including the identity provider being unreachable, yields nil:
// the caller is then simply anonymous.
func (a *Authorizer) Authorize(ctx context.Context, header string) *appctx.UserContext {
	raw, ok := BearerToken(header)
	if !ok {
		return nil
	}

	claims, err := a.verify(ctx, raw)
	if err != nil {
		logger.Debug(ctx, "identity token rejected", "error", err)
		return nil
	}

	roles := ExpandRoles(claims.Group)
	return &appctx.UserContext{
		UserID:    claims.Subject,
		StudentID: claims.PreferredUsername,
		Name:      claims.Name,
		Roles:     roles,
		IsAdmin:   HasAnyRole(roles, a.adminRoles),
	}
}

func (a *Authorizer) verify(ctx context.Context, raw string) (*Claims, error) {
	key, err := a.keys.get(ctx)
	if err != nil {
		logger.Warn(ctx, "identity provider key unavailable", "error", err)
		return nil, fmt.Errorf("verification key: %w", err)
	}

	claims := &Claims{}
	token, err := a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Package context carries request-scoped values (identity, tracing).
package context

import (
	"context"
	"slices"
)

// UserContext is the caller identity decoded from an identity provider token.
type UserContext struct {
	UserID    string // token subject
	StudentID string // preferred_username
	Name      string
	Roles     []string // expanded group prefixes
	IsAdmin   bool
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context, nil for anonymous callers.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// IsAdmin reports whether the caller holds a privileged role.
func IsAdmin(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && u.IsAdmin
}

// HasRole checks if the caller has a specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

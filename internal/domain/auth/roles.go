// Package auth decides whether a caller may perform privileged operations,
// based on an identity token issued by an external Keycloak realm.
package auth

import (
	"slices"
	"strings"
)

// RoleNames expands a dot-separated group into its prefix chain:
// "dsek.sexm.kok" becomes ["dsek", "dsek.sexm", "dsek.sexm.kok"].
func RoleNames(group string) []string {
	parts := strings.Split(group, ".")
	roles := make([]string, 0, len(parts))
	for i := range parts {
		roles = append(roles, strings.Join(parts[:i+1], "."))
	}
	return roles
}

// ExpandRoles expands every group and returns the union in first-seen order.
func ExpandRoles(groups []string) []string {
	seen := make(map[string]struct{})
	var roles []string
	for _, g := range groups {
		for _, r := range RoleNames(g) {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			roles = append(roles, r)
		}
	}
	return roles
}

// HasAnyRole reports whether roles contains at least one of wanted.
func HasAnyRole(roles, wanted []string) bool {
	for _, w := range wanted {
		if slices.Contains(roles, w) {
			return true
		}
	}
	return false
}

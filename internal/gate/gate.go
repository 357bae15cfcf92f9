// Package gate evaluates permission requirements against the current
// identity. It is a pure predicate layer: route middleware and template
// helpers both consume it, so a change in the session is reflected on the
// next request everywhere.
package gate

import (
	"strings"

	"github.com/meridianpay/console/internal/shared"
)

// Requirement describes a capability needed to see or do something. Zero or
// more clauses may be set; every set clause must hold.
type Requirement struct {
	Permission string
	AnyOf      []string
	AllOf      []string
	SuperOnly  bool
}

// Allowed reports whether id satisfies req. An anonymous identity satisfies
// nothing.
func Allowed(id *shared.Identity, req Requirement) bool {
	if id == nil {
		return false
	}
	if req.SuperOnly && !id.IsSuperAdmin() {
		return false
	}
	if req.Permission != "" && !id.HasPermission(req.Permission) {
		return false
	}
	if len(req.AnyOf) > 0 && !hasAny(id, req.AnyOf) {
		return false
	}
	for _, p := range req.AllOf {
		if !id.HasPermission(p) {
			return false
		}
	}
	return true
}

func hasAny(id *shared.Identity, perms []string) bool {
	for _, p := range perms {
		if id.HasPermission(p) {
			return true
		}
	}
	return false
}

// Normalize lowercases, trims and de-duplicates permission keys.
func Normalize(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}

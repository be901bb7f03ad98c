// Package roles owns the (account, role) assignment relation and answers
// every authorization query in the registry. Paper operations never store
// role state themselves; they ask this package.
package roles

import (
	"errors"
	"fmt"
)

// ErrNotGrantable rejects grant/revoke attempts on roles outside the
// grantable set. It is invalid input, not an authorization failure.
var ErrNotGrantable = errors.New("roles: role not grantable")

// Role is a named permission grant.
type Role string

const (
	// SuperAdmin is held only by the initializing identity and is never
	// revocable. It carries Admin privilege for role management.
	SuperAdmin Role = "super_admin"
	// Admin may mutate paper records and manage role assignments.
	Admin Role = "admin"
	// Contributor may comment on papers (together with Reviewer).
	Contributor Role = "contributor"
	// Reviewer may comment on papers (together with Contributor).
	Reviewer Role = "reviewer"
)

// Grantable lists the roles the grant/revoke relation may hold. SuperAdmin
// is constructor state, deliberately outside the relation.
func Grantable() []Role {
	return []Role{Admin, Contributor, Reviewer}
}

// Parse maps an external role name onto a grantable Role.
func Parse(name string) (Role, error) {
	switch Role(name) {
	case Admin, Contributor, Reviewer:
		return Role(name), nil
	default:
		return "", fmt.Errorf("roles: unknown role %q", name)
	}
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// Role represents the authorization level granted to an account.
//
// Every account holds exactly one role. Superuser status is tracked
// separately on [Principal] and satisfies every role predicate.
type Role string

const (
	// Default role for registered users
	RoleUser Role = "user"

	// Can edit and delete any review or comment
	RoleModerator Role = "moderator"

	// Manages the catalogue and user accounts
	RoleAdmin Role = "admin"
)

// Roles lists every assignable role in ascending privilege order.
var Roles = []Role{RoleUser, RoleModerator, RoleAdmin}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// RoleNames returns the string form of [Roles] for validation messages.
func RoleNames() []string {
	names := make([]string, len(Roles))
	for i, role := range Roles {
		names[i] = string(role)
	}
	return names
}

// # Principal

// Principal is the identity acting on a request.
//
// A nil *Principal is the anonymous principal. Principals are built from
// the stored account on every request, never from token claims alone, so
// a role change takes effect on the next request.
type Principal struct {
	UserID      string
	Username    string
	Role        Role
	IsSuperuser bool
}

// IsAuthenticated reports whether p identifies a registered account.
func IsAuthenticated(p *Principal) bool {
	return p != nil && p.UserID != ""
}

// IsAdmin reports whether p holds the admin role or is a superuser.
func IsAdmin(p *Principal) bool {
	return IsAuthenticated(p) && (p.Role == RoleAdmin || p.IsSuperuser)
}

// IsModerator reports whether p holds the moderator role or is a superuser.
//
// An admin that is not a superuser is not a moderator.
func IsModerator(p *Principal) bool {
	return IsAuthenticated(p) && (p.Role == RoleModerator || p.IsSuperuser)
}

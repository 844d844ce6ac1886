package model

import "fmt"

// Role is the closed set of account roles.  Roles are stored as
// strings in the profiles table but the application only ever works
// with the typed constants below; ParseRole rejects anything else so
// an unknown role can never silently fall through to a default.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole converts a raw string into a Role.  Unknown values are an
// error rather than a default role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Staff reports whether the role may manage rooms, settings and other
// users' reservations.
func (r Role) Staff() bool { return r == RoleAdmin }

// Registrable reports whether the role may be chosen at registration.
// Admin accounts are seeded, never self-registered.
func (r Role) Registrable() bool { return r == RoleStudent || r == RoleTeacher }

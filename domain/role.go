// Package domain contains the core concepts of the messaging system.
// No storage, network, or UI logic should be added here.
package domain

// Role is the canonical participant role used by storage.
type Role string

const (
	RoleStudent  Role = "Student"
	RoleEducator Role = "Educator"
	RoleAdmin    Role = "Admin"
)

// externalRoles maps the lowercase tokens carried by auth tokens
// to the canonical vocabulary.
var externalRoles = map[string]Role{
	"student":  RoleStudent,
	"educator": RoleEducator,
	"admin":    RoleAdmin,
}

// ParseRole translates an external role token into its canonical form.
// Unknown tokens return ok=false and must be rejected by the caller
// as an authorization failure, never coerced to a default.
func ParseRole(external string) (Role, bool) {
	role, ok := externalRoles[external]
	return role, ok
}

// External returns the lowercase token form used on the wire.
func (r Role) External() string {
	for token, role := range externalRoles {
		if role == r {
			return token
		}
	}
	return ""
}

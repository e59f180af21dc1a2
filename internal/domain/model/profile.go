package model

// RoleAdmin is the only role allowed to issue refunds.
const RoleAdmin = "admin"

// Profile is the account behind a bearer token.
type Profile struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

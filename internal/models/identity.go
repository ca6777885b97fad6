package models

// Identity is the (user, role) pair attached to a request after token
// verification. Handlers never learn the caller any other way.
type Identity struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

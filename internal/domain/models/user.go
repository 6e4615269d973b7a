package models

import "time"

// User roles
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is an archive account. Accounts are auto-registered on first
// authenticated request and stay pending until an admin approves them;
// unapproved accounts cannot touch the archive.
type User struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"` // identity-provider subject claim
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Approved    bool      `json:"approved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

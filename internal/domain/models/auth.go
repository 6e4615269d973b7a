package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims is the JWT claims structure issued by the external
// identity provider. Only the subject and email are trusted by the core;
// everything else about the account lives in the users table.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserID returns the provider subject claim, the primary identifier for
// the authenticated caller.
func (c *IdentityClaims) UserID() string {
	return c.Subject
}

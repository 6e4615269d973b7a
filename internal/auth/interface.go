package auth

import "docvault/internal/domain/models"

// JWTVerifier validates opaque bearer tokens from the external identity
// provider and extracts the claims the core trusts.
type JWTVerifier interface {
	VerifyToken(tokenString string) (*models.IdentityClaims, error)
	Close() error
}

package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// UserRepository is the metadata-store boundary for archive accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetBySubject looks an account up by identity-provider subject,
	// domain.ErrNotFound if the subject has never been seen.
	GetBySubject(ctx context.Context, subject string) (*models.User, error)

	// List returns all accounts, or only unapproved ones when pendingOnly.
	List(ctx context.Context, pendingOnly bool) ([]models.User, error)

	SetApproved(ctx context.Context, id string, approved bool) error
	SetRole(ctx context.Context, id, role string) error
}

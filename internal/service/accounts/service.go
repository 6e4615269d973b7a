package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// Service manages archive accounts and the admin-approval workflow.
type Service struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

// NewService creates the accounts service.
func NewService(userRepo repositories.UserRepository, logger *slog.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		logger:   logger,
	}
}

// EnsureUser returns the account for an identity-provider subject,
// auto-registering a pending member account on first sight. Concurrent
// first requests can race the insert; the loser re-reads the winner's row.
func (s *Service) EnsureUser(ctx context.Context, subject, email, displayName string) (*models.User, error) {
	user, err := s.userRepo.GetBySubject(ctx, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	user = &models.User{
		Subject:     subject,
		Email:       email,
		DisplayName: displayName,
		Role:        models.RoleMember,
		Approved:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.userRepo.GetBySubject(ctx, subject)
		}
		return nil, err
	}

	s.logger.Info("account registered, awaiting approval", "user_id", user.ID, "subject", subject)

	return user, nil
}

// List returns accounts, optionally only the ones awaiting approval.
func (s *Service) List(ctx context.Context, pendingOnly bool) ([]models.User, error) {
	return s.userRepo.List(ctx, pendingOnly)
}

// Approve marks an account as approved.
func (s *Service) Approve(ctx context.Context, id string) (*models.User, error) {
	if err := s.userRepo.SetApproved(ctx, id, true); err != nil {
		return nil, err
	}

	s.logger.Info("account approved", "user_id", id)

	return s.userRepo.GetByID(ctx, id)
}

// SetRole changes an account's role.
func (s *Service) SetRole(ctx context.Context, id, role string) (*models.User, error) {
	if role != models.RoleMember && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	if err := s.userRepo.SetRole(ctx, id, role); err != nil {
		return nil, err
	}

	s.logger.Info("account role changed", "user_id", id, "role", role)

	return s.userRepo.GetByID(ctx, id)
}

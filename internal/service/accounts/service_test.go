package accounts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	users map[string]*models.User
	seq   int

	// set to simulate losing a create race: the first Create fails with
	// ErrConflict after inserting the winner's row
	raceSubject string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if r.raceSubject == user.Subject {
		r.raceSubject = ""
		winner := *user
		r.seq++
		winner.ID = fmt.Sprintf("user-%d", r.seq)
		winner.DisplayName = "winner"
		r.users[winner.ID] = &winner
		return fmt.Errorf("duplicate subject: %w", domain.ErrConflict)
	}
	for _, u := range r.users {
		if u.Subject == user.Subject {
			return fmt.Errorf("duplicate subject: %w", domain.ErrConflict)
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	for _, u := range r.users {
		if u.Subject == subject {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("subject %s: %w", subject, domain.ErrNotFound)
}

func (r *fakeUserRepo) List(ctx context.Context, pendingOnly bool) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if pendingOnly && u.Approved {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) SetApproved(ctx context.Context, id string, approved bool) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	u.Approved = approved
	return nil
}

func (r *fakeUserRepo) SetRole(ctx context.Context, id, role string) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	u.Role = role
	return nil
}

func TestEnsureUserRegistersPending(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	user, err := svc.EnsureUser(ctx, "sub-1", "a@example.com", "Alice")
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if user.Approved {
		t.Error("new account must start unapproved")
	}
	if user.Role != models.RoleMember {
		t.Errorf("role = %q, want member", user.Role)
	}

	// Second call returns the same account without creating another.
	again, err := svc.EnsureUser(ctx, "sub-1", "a@example.com", "Alice")
	if err != nil {
		t.Fatalf("EnsureUser again: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("second EnsureUser returned %s, want %s", again.ID, user.ID)
	}
	if len(repo.users) != 1 {
		t.Errorf("user count = %d, want 1", len(repo.users))
	}
}

func TestEnsureUserCreateRace(t *testing.T) {
	repo := newFakeUserRepo()
	repo.raceSubject = "sub-1"
	svc := NewService(repo, testLogger())

	user, err := svc.EnsureUser(context.Background(), "sub-1", "a@example.com", "loser")
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	// The loser of the race must end up with the winner's row.
	if user.DisplayName != "winner" {
		t.Errorf("DisplayName = %q, want the winner's row", user.DisplayName)
	}
}

func TestApprove(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	user, _ := svc.EnsureUser(ctx, "sub-1", "a@example.com", "Alice")

	approved, err := svc.Approve(ctx, user.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if !approved.Approved {
		t.Error("account not approved")
	}

	pending, _ := svc.List(ctx, true)
	if len(pending) != 0 {
		t.Errorf("pending count = %d, want 0", len(pending))
	}
}

func TestSetRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	user, _ := svc.EnsureUser(ctx, "sub-1", "a@example.com", "Alice")

	promoted, err := svc.SetRole(ctx, user.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if !promoted.IsAdmin() {
		t.Error("account not admin after promotion")
	}

	if _, err := svc.SetRole(ctx, user.ID, "owner"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("SetRole(owner) error = %v, want ErrValidation", err)
	}
}

package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

const userColumns = "id, subject, email, display_name, role, approved, created_at, updated_at"

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(cfg *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   cfg.Pool,
		tables: cfg.Tables,
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Subject,
		&user.Email,
		&user.DisplayName,
		&user.Role,
		&user.Approved,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts an account, assigning a generated identifier.
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, subject, email, display_name, role, approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Users)

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Subject,
		user.Email,
		user.DisplayName,
		user.Role,
		user.Approved,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("user '%s': %w", user.Subject, domain.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, r.tables.Users)

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// GetBySubject retrieves an account by identity-provider subject
func (r *PostgresUserRepository) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE subject = $1`, userColumns, r.tables.Users)

	user, err := scanUser(r.pool.QueryRow(ctx, query, subject))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("subject %s: %w", subject, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by subject: %w", err)
	}

	return user, nil
}

// List returns accounts, optionally only unapproved ones
func (r *PostgresUserRepository) List(ctx context.Context, pendingOnly bool) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, userColumns, r.tables.Users)
	if pendingOnly {
		query += ` WHERE approved = FALSE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// SetApproved flips the approval flag
func (r *PostgresUserRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	query := fmt.Sprintf(`UPDATE %s SET approved = $1, updated_at = NOW() WHERE id = $2`, r.tables.Users)

	result, err := r.pool.Exec(ctx, query, approved, id)
	if err != nil {
		return fmt.Errorf("set user approved: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SetRole changes the account role
func (r *PostgresUserRepository) SetRole(ctx context.Context, id, role string) error {
	query := fmt.Sprintf(`UPDATE %s SET role = $1, updated_at = NOW() WHERE id = $2`, r.tables.Users)

	result, err := r.pool.Exec(ctx, query, role, id)
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

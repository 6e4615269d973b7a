package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a folder, assigning a generated identifier.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, parent_id, name, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Folders)

	_, err := r.pool.Exec(ctx, query,
		folder.ID,
		folder.ParentID,
		folder.Name,
		folder.CreatedBy,
		folder.CreatedAt,
		folder.UpdatedAt,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, parent_id, name, created_by, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Folders)

	var folder models.Folder
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.ParentID,
		&folder.Name,
		&folder.CreatedBy,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// GetByNameAndParent finds a folder by name under a parent, nil parentID
// meaning root level. Returns (nil, nil) when no folder matches. If sibling
// names are ambiguous the first row wins.
func (r *PostgresFolderRepository) GetByNameAndParent(ctx context.Context, name string, parentID *string) (*models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id, parent_id, name, created_by, created_at, updated_at
			FROM %s
			WHERE name = $1 AND parent_id IS NULL
			LIMIT 1
		`, r.tables.Folders)
		args = append(args, name)
	} else {
		query = fmt.Sprintf(`
			SELECT id, parent_id, name, created_by, created_at, updated_at
			FROM %s
			WHERE name = $1 AND parent_id = $2
			LIMIT 1
		`, r.tables.Folders)
		args = append(args, name, *parentID)
	}

	var folder models.Folder
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&folder.ID,
		&folder.ParentID,
		&folder.Name,
		&folder.CreatedBy,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get folder by name and parent: %w", err)
	}

	return &folder, nil
}

// Update rewrites a folder's name and parent pointer
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Folders)

	result, err := r.pool.Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.UpdatedAt,
		folder.ID,
	)

	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a folder row
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByIDs bulk-removes folders by identifier-set membership
func (r *PostgresFolderRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.tables.Folders)
	if _, err := r.pool.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("delete folders: %w", err)
	}

	return nil
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id, parent_id, name, created_by, created_at, updated_at
			FROM %s
			WHERE parent_id IS NULL
			ORDER BY name ASC
		`, r.tables.Folders)
	} else {
		query = fmt.Sprintf(`
			SELECT id, parent_id, name, created_by, created_at, updated_at
			FROM %s
			WHERE parent_id = $1
			ORDER BY name ASC
		`, r.tables.Folders)
		args = append(args, *parentID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folder children: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.ParentID,
			&folder.Name,
			&folder.CreatedBy,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// DescendantIDs returns the descendant closure of rootID, excluding rootID
// itself, via a recursive CTE. UNION (not UNION ALL) deduplicates visited
// rows so the query terminates even on a corrupt cyclic graph.
func (r *PostgresFolderRepository) DescendantIDs(ctx context.Context, rootID string) ([]string, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE descendants AS (
			SELECT id FROM %s WHERE parent_id = $1
			UNION
			SELECT f.id
			FROM %s f
			JOIN descendants d ON f.parent_id = d.id
		)
		SELECT id FROM descendants
	`, r.tables.Folders, r.tables.Folders)

	rows, err := r.pool.Query(ctx, query, rootID)
	if err != nil {
		return nil, fmt.Errorf("list descendant folder ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan folder id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder ids: %w", err)
	}

	return ids, nil
}

// Descendants returns the same closure with full records, for subtree
// duplication.
func (r *PostgresFolderRepository) Descendants(ctx context.Context, rootID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE descendants AS (
			SELECT id, parent_id, name, created_by, created_at, updated_at
			FROM %s WHERE parent_id = $1
			UNION
			SELECT f.id, f.parent_id, f.name, f.created_by, f.created_at, f.updated_at
			FROM %s f
			JOIN descendants d ON f.parent_id = d.id
		)
		SELECT id, parent_id, name, created_by, created_at, updated_at FROM descendants
	`, r.tables.Folders, r.tables.Folders)

	rows, err := r.pool.Query(ctx, query, rootID)
	if err != nil {
		return nil, fmt.Errorf("list descendant folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.ParentID,
			&folder.Name,
			&folder.CreatedBy,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// HasChildren reports, per folder id, whether any child folder or file
// exists under it, in a single query.
func (r *PostgresFolderRepository) HasChildren(ctx context.Context, ids []string) (map[string]bool, error) {
	result := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	for _, id := range ids {
		result[id] = false
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT parent_id FROM %s WHERE parent_id = ANY($1)
		UNION
		SELECT DISTINCT folder_id FROM %s WHERE folder_id = ANY($1)
	`, r.tables.Folders, r.tables.Files)

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("check folder children: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id *string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan parent id: %w", err)
		}
		if id != nil {
			result[*id] = true
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parent ids: %w", err)
	}

	return result, nil
}

// ListAll returns every folder, for the tree view
func (r *PostgresFolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, parent_id, name, created_by, created_at, updated_at
		FROM %s
		ORDER BY name ASC
	`, r.tables.Folders)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.ParentID,
			&folder.Name,
			&folder.CreatedBy,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

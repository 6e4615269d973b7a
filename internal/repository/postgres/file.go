package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

const fileColumns = "id, folder_id, name, storage_path, content_type, size, tags, uploaded_by, created_at, updated_at"

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(cfg *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{
		pool:   cfg.Pool,
		tables: cfg.Tables,
	}
}

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	var tags string
	err := row.Scan(
		&file.ID,
		&file.FolderID,
		&file.Name,
		&file.StoragePath,
		&file.ContentType,
		&file.Size,
		&tags,
		&file.UploadedBy,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// Normalize tags at the data-access boundary: the column may hold a
	// JSON array or a legacy comma-joined string.
	file.Tags = models.ParseTags(tags)
	return &file, nil
}

func (r *PostgresFileRepository) collectFiles(rows pgx.Rows) ([]models.File, error) {
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// Create inserts a file row, assigning a generated identifier.
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, folder_id, name, storage_path, content_type, size, tags, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.tables.Files)

	_, err := r.pool.Exec(ctx, query,
		file.ID,
		file.FolderID,
		file.Name,
		file.StoragePath,
		file.ContentType,
		file.Size,
		file.Tags.Encode(),
		file.UploadedBy,
		file.CreatedAt,
		file.UpdatedAt,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("file '%s': %w", file.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, fileColumns, r.tables.Files)

	file, err := scanFile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// Update rewrites a file's mutable columns
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, name = $2, storage_path = $3, tags = $4, updated_at = $5
		WHERE id = $6
	`, r.tables.Files)

	result, err := r.pool.Exec(ctx, query,
		file.FolderID,
		file.Name,
		file.StoragePath,
		file.Tags.Encode(),
		file.UpdatedAt,
		file.ID,
	)

	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a file row
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByFolderIDs bulk-removes every file owned by any of the folders,
// chunked so identifier lists stay bounded.
func (r *PostgresFileRepository) DeleteByFolderIDs(ctx context.Context, folderIDs []string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE folder_id = ANY($1)`, r.tables.Files)

	for _, chunk := range chunkIDs(folderIDs, config.FileChunkSize) {
		if _, err := r.pool.Exec(ctx, query, chunk); err != nil {
			return fmt.Errorf("delete files by folder: %w", err)
		}
	}

	return nil
}

// ListByFolder lists direct children of a folder, nil for root level
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID *string) ([]models.File, error) {
	var query string
	var args []interface{}

	if folderID == nil {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE folder_id IS NULL ORDER BY name ASC`, fileColumns, r.tables.Files)
	} else {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE folder_id = $1 ORDER BY name ASC`, fileColumns, r.tables.Files)
		args = append(args, *folderID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files in folder: %w", err)
	}

	return r.collectFiles(rows)
}

// ListByFolderIDs is the batched "folder_id in (ids)" fetch, chunked at the
// configured size.
func (r *PostgresFileRepository) ListByFolderIDs(ctx context.Context, folderIDs []string) ([]models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE folder_id = ANY($1)`, fileColumns, r.tables.Files)

	var all []models.File
	for _, chunk := range chunkIDs(folderIDs, config.FileChunkSize) {
		rows, err := r.pool.Query(ctx, query, chunk)
		if err != nil {
			return nil, fmt.Errorf("list files by folders: %w", err)
		}
		files, err := r.collectFiles(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}

	return all, nil
}

// Filter matches files by case-insensitive name pattern under a storage
// path prefix.
func (r *PostgresFileRepository) Filter(ctx context.Context, pathPrefix, namePattern string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE name ILIKE $1 AND starts_with(storage_path, $2)
		ORDER BY storage_path ASC
	`, fileColumns, r.tables.Files)

	rows, err := r.pool.Query(ctx, query, namePattern, pathPrefix)
	if err != nil {
		return nil, fmt.Errorf("filter files: %w", err)
	}

	return r.collectFiles(rows)
}

// UpdateEmbedding writes the embedding vector onto an existing row
func (r *PostgresFileRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	query := fmt.Sprintf(`UPDATE %s SET embedding = $1 WHERE id = $2`, r.tables.Files)

	result, err := r.pool.Exec(ctx, query, pgvector.NewVector(embedding), id)
	if err != nil {
		return fmt.Errorf("update file embedding: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// NearestByEmbedding returns files ordered by cosine distance to the query
// embedding, skipping rows that were never embedded.
func (r *PostgresFileRepository) NearestByEmbedding(ctx context.Context, embedding []float32, limit int) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`, fileColumns, r.tables.Files)

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("nearest files by embedding: %w", err)
	}

	return r.collectFiles(rows)
}

// chunkIDs splits an id list into slices of at most size elements.
func chunkIDs(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}

	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

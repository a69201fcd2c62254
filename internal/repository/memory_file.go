package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
	"github.com/StiliyanIliev27/Memora/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fileColumns = `id, memory_id, file_url, file_name, file_type, file_size, created_by, created_at`

// MemoryFileRepository handles database operations for memory attachments
type MemoryFileRepository struct {
	db *pgxpool.Pool
}

// NewMemoryFileRepository creates a new memory file repository
func NewMemoryFileRepository(db *pgxpool.Pool) *MemoryFileRepository {
	return &MemoryFileRepository{db: db}
}

// Create creates a new memory file
func (r *MemoryFileRepository) Create(ctx context.Context, f *models.MemoryFile) error {
	query := `
		INSERT INTO memory_files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		f.ID, f.MemoryID, f.FileURL, f.FileName, f.FileType, f.FileSize, f.CreatedBy, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create memory file: %w", err)
	}
	return nil
}

// GetByID retrieves a memory file by ID
func (r *MemoryFileRepository) GetByID(ctx context.Context, id string) (*models.MemoryFile, error) {
	query := `SELECT ` + fileColumns + ` FROM memory_files WHERE id = $1`
	var f models.MemoryFile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.MemoryID, &f.FileURL, &f.FileName, &f.FileType, &f.FileSize, &f.CreatedBy, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, "file not found", err)
		}
		return nil, fmt.Errorf("failed to get memory file: %w", err)
	}
	return &f, nil
}

// ListByMemory retrieves all files attached to a memory in insertion order
func (r *MemoryFileRepository) ListByMemory(ctx context.Context, memoryID string) ([]*models.MemoryFile, error) {
	query := `SELECT ` + fileColumns + ` FROM memory_files WHERE memory_id = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, memoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memory files: %w", err)
	}
	defer rows.Close()

	var files []*models.MemoryFile
	for rows.Next() {
		var f models.MemoryFile
		err := rows.Scan(
			&f.ID, &f.MemoryID, &f.FileURL, &f.FileName, &f.FileType, &f.FileSize, &f.CreatedBy, &f.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory file: %w", err)
		}
		files = append(files, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memory files: %w", err)
	}

	return files, nil
}

// CountByMemoryAndType counts attachments of a given type on a memory
func (r *MemoryFileRepository) CountByMemoryAndType(ctx context.Context, memoryID string, fileType models.MemoryType) (int, error) {
	query := `SELECT COUNT(*) FROM memory_files WHERE memory_id = $1 AND file_type = $2`
	var count int
	if err := r.db.QueryRow(ctx, query, memoryID, fileType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count memory files: %w", err)
	}
	return count, nil
}

// Delete deletes a memory file row
func (r *MemoryFileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM memory_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete memory file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("file not found")
	}
	return nil
}

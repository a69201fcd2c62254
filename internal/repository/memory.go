package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
	"github.com/StiliyanIliev27/Memora/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const memoryColumns = `id, connection_id, title, description, location_name, latitude, longitude,
	memory_type, file_url, created_by, place_id, city, country, state, created_at, updated_at`

// MemoryRepository handles database operations for memories
type MemoryRepository struct {
	db *pgxpool.Pool
}

// NewMemoryRepository creates a new memory repository
func NewMemoryRepository(db *pgxpool.Pool) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// Create creates a new memory
func (r *MemoryRepository) Create(ctx context.Context, m *models.Memory) error {
	query := `
		INSERT INTO memories (` + memoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.ConnectionID, m.Title, m.Description, m.LocationName, m.Latitude, m.Longitude,
		m.MemoryType, m.FileURL, m.CreatedBy, m.PlaceID, m.City, m.Country, m.State,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create memory: %w", err)
	}
	return nil
}

// GetByID retrieves a memory by ID
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM memories WHERE id = $1`
	var m models.Memory
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.ConnectionID, &m.Title, &m.Description, &m.LocationName, &m.Latitude, &m.Longitude,
		&m.MemoryType, &m.FileURL, &m.CreatedBy, &m.PlaceID, &m.City, &m.Country, &m.State,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, "memory not found", err)
		}
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}
	return &m, nil
}

const memoryJoinSelect = `
	SELECT m.id, m.connection_id, m.title, m.description, m.location_name, m.latitude, m.longitude,
	       m.memory_type, m.file_url, m.created_by, m.place_id, m.city, m.country, m.state, m.created_at, m.updated_at,
	       cu.id, cu.email, cu.name, cu.gender, cu.avatar_url, cu.created_at, cu.updated_at,
	       c.id, c.user1_id, c.user2_id, c.connection_type, c.status, c.message, c.created_at, c.updated_at,
	       u1.id, u1.email, u1.name, u1.gender, u1.avatar_url, u1.created_at, u1.updated_at,
	       u2.id, u2.email, u2.name, u2.gender, u2.avatar_url, u2.created_at, u2.updated_at
	FROM memories m
	JOIN users cu ON cu.id = m.created_by
	LEFT JOIN connections c ON c.id = m.connection_id
	LEFT JOIN users u1 ON u1.id = c.user1_id
	LEFT JOIN users u2 ON u2.id = c.user2_id
`

// joinedUser holds LEFT JOIN user columns that may all be NULL.
type joinedUser struct {
	ID        *string
	Email     *string
	Name      *string
	Gender    *string
	AvatarURL *string
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

func (j *joinedUser) toUser() models.User {
	u := models.User{Gender: j.Gender, AvatarURL: j.AvatarURL}
	if j.ID != nil {
		u.ID = *j.ID
	}
	if j.Email != nil {
		u.Email = *j.Email
	}
	if j.Name != nil {
		u.Name = *j.Name
	}
	if j.CreatedAt != nil {
		u.CreatedAt = *j.CreatedAt
	}
	if j.UpdatedAt != nil {
		u.UpdatedAt = *j.UpdatedAt
	}
	return u
}

func scanMemoryJoinRows(rows pgx.Rows) ([]*models.MemoryWithConnection, error) {
	var memories []*models.MemoryWithConnection
	for rows.Next() {
		var (
			mw models.MemoryWithConnection
			cu joinedUser

			cID, cUser1, cUser2, cType, cStatus, cMessage *string
			cCreatedAt, cUpdatedAt                        *time.Time
			u1, u2                                        joinedUser
		)
		err := rows.Scan(
			&mw.ID, &mw.ConnectionID, &mw.Title, &mw.Description, &mw.LocationName, &mw.Latitude, &mw.Longitude,
			&mw.MemoryType, &mw.FileURL, &mw.CreatedBy, &mw.PlaceID, &mw.City, &mw.Country, &mw.State,
			&mw.CreatedAt, &mw.UpdatedAt,
			&cu.ID, &cu.Email, &cu.Name, &cu.Gender, &cu.AvatarURL, &cu.CreatedAt, &cu.UpdatedAt,
			&cID, &cUser1, &cUser2, &cType, &cStatus, &cMessage, &cCreatedAt, &cUpdatedAt,
			&u1.ID, &u1.Email, &u1.Name, &u1.Gender, &u1.AvatarURL, &u1.CreatedAt, &u1.UpdatedAt,
			&u2.ID, &u2.Email, &u2.Name, &u2.Gender, &u2.AvatarURL, &u2.CreatedAt, &u2.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}

		mw.CreatedByUser = cu.toUser()

		if cID != nil {
			conn := models.ConnectionWithUsers{
				Connection: models.Connection{
					ID:             *cID,
					User1ID:        *cUser1,
					User2ID:        *cUser2,
					ConnectionType: models.ConnectionType(*cType),
					Status:         models.ConnectionStatus(*cStatus),
					Message:        cMessage,
				},
				User1: u1.toUser(),
				User2: u2.toUser(),
			}
			if cCreatedAt != nil {
				conn.CreatedAt = *cCreatedAt
			}
			if cUpdatedAt != nil {
				conn.UpdatedAt = *cUpdatedAt
			}
			mw.Connection = &conn
		}

		memories = append(memories, &mw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memories: %w", err)
	}

	return memories, nil
}

// ListForUser retrieves the memories visible to a user: their own
// personal memories plus memories shared through any connection they
// are a member of, newest first.
func (r *MemoryRepository) ListForUser(ctx context.Context, userID string) ([]*models.MemoryWithConnection, error) {
	query := memoryJoinSelect + `
		WHERE (m.connection_id IS NULL AND m.created_by = $1)
		   OR (c.user1_id = $1 OR c.user2_id = $1)
		ORDER BY m.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	defer rows.Close()

	return scanMemoryJoinRows(rows)
}

// ListByConnection retrieves the memories shared through a connection,
// newest first.
func (r *MemoryRepository) ListByConnection(ctx context.Context, connectionID string) ([]*models.MemoryWithConnection, error) {
	query := memoryJoinSelect + `
		WHERE m.connection_id = $1
		ORDER BY m.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories by connection: %w", err)
	}
	defer rows.Close()

	return scanMemoryJoinRows(rows)
}

// Update updates the mutable fields of a memory
func (r *MemoryRepository) Update(ctx context.Context, m *models.Memory) error {
	query := `UPDATE memories SET title = $1, description = $2, updated_at = $3 WHERE id = $4`
	result, err := r.db.Exec(ctx, query, m.Title, m.Description, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update memory: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("memory not found")
	}
	return nil
}

// Delete deletes a memory. Attachment rows and deletion requests
// referencing it go with it (ON DELETE CASCADE); the attachments'
// object URLs are returned so the caller can clean up storage.
func (r *MemoryRepository) Delete(ctx context.Context, id string) ([]string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT file_url FROM memory_files WHERE memory_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list memory files: %w", err)
	}
	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan file url: %w", err)
		}
		urls = append(urls, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file urls: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM memories WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete memory: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, apperr.NotFoundf("memory not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit memory delete: %w", err)
	}
	return urls, nil
}

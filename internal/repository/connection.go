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

// ConnectionRepository handles database operations for connections
type ConnectionRepository struct {
	db *pgxpool.Pool
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Create creates a new connection
func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	query := `
		INSERT INTO connections (id, user1_id, user2_id, connection_type, status, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		conn.ID, conn.User1ID, conn.User2ID, conn.ConnectionType,
		conn.Status, conn.Message, conn.CreatedAt, conn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}
	return nil
}

// GetByID retrieves a connection by ID
func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*models.Connection, error) {
	query := `
		SELECT id, user1_id, user2_id, connection_type, status, message, created_at, updated_at
		FROM connections
		WHERE id = $1
	`
	var conn models.Connection
	err := r.db.QueryRow(ctx, query, id).Scan(
		&conn.ID, &conn.User1ID, &conn.User2ID, &conn.ConnectionType,
		&conn.Status, &conn.Message, &conn.CreatedAt, &conn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, "connection not found", err)
		}
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return &conn, nil
}

// ListByUser retrieves every connection where the user is either
// party, with both user records joined inline.
func (r *ConnectionRepository) ListByUser(ctx context.Context, userID string) ([]*models.ConnectionWithUsers, error) {
	query := `
		SELECT c.id, c.user1_id, c.user2_id, c.connection_type, c.status, c.message, c.created_at, c.updated_at,
		       u1.id, u1.email, u1.name, u1.gender, u1.avatar_url, u1.password_hash, u1.push_token, u1.created_at, u1.updated_at,
		       u2.id, u2.email, u2.name, u2.gender, u2.avatar_url, u2.password_hash, u2.push_token, u2.created_at, u2.updated_at
		FROM connections c
		JOIN users u1 ON u1.id = c.user1_id
		JOIN users u2 ON u2.id = c.user2_id
		WHERE c.user1_id = $1 OR c.user2_id = $1
		ORDER BY c.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var conns []*models.ConnectionWithUsers
	for rows.Next() {
		var cw models.ConnectionWithUsers
		err := rows.Scan(
			&cw.ID, &cw.User1ID, &cw.User2ID, &cw.ConnectionType, &cw.Status, &cw.Message, &cw.CreatedAt, &cw.UpdatedAt,
			&cw.User1.ID, &cw.User1.Email, &cw.User1.Name, &cw.User1.Gender, &cw.User1.AvatarURL,
			&cw.User1.PasswordHash, &cw.User1.PushToken, &cw.User1.CreatedAt, &cw.User1.UpdatedAt,
			&cw.User2.ID, &cw.User2.Email, &cw.User2.Name, &cw.User2.Gender, &cw.User2.AvatarURL,
			&cw.User2.PasswordHash, &cw.User2.PushToken, &cw.User2.CreatedAt, &cw.User2.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conns = append(conns, &cw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}

	return conns, nil
}

// ExistsBetween checks whether a connection exists between two users
// in either direction.
func (r *ConnectionRepository) ExistsBetween(ctx context.Context, userA, userB string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM connections
			WHERE (user1_id = $1 AND user2_id = $2)
			   OR (user1_id = $2 AND user2_id = $1)
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userA, userB).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check connection existence: %w", err)
	}
	return exists, nil
}

// UpdateStatus sets the status of a connection
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id string, status models.ConnectionStatus) error {
	query := `UPDATE connections SET status = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update connection status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("connection not found")
	}
	return nil
}

// Delete deletes a connection and orphans its shared memories to
// personal scope, in one transaction.
func (r *ConnectionRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE memories SET connection_id = NULL WHERE connection_id = $1`, id); err != nil {
		return fmt.Errorf("failed to orphan shared memories: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("connection not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit connection delete: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
	"github.com/StiliyanIliev27/Memora/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeletionRequestRepository handles database operations for deletion requests
type DeletionRequestRepository struct {
	db *pgxpool.Pool
}

// NewDeletionRequestRepository creates a new deletion request repository
func NewDeletionRequestRepository(db *pgxpool.Pool) *DeletionRequestRepository {
	return &DeletionRequestRepository{db: db}
}

// Create creates a new deletion request
func (r *DeletionRequestRepository) Create(ctx context.Context, req *models.DeletionRequest) error {
	query := `
		INSERT INTO deletion_requests (id, memory_id, file_id, request_type, requester_id, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		req.ID, req.MemoryID, req.FileID, req.RequestType, req.RequesterID,
		req.Status, req.Message, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deletion request: %w", err)
	}
	return nil
}

// The read side denormalizes display fields the way the original
// stored procedure did: the target memory's title (directly or via
// the target file's parent memory), the target file's name, and the
// requester's display name.
const requestJoinSelect = `
	SELECT dr.id, dr.memory_id, dr.file_id, dr.request_type, dr.requester_id, dr.status, dr.message,
	       dr.created_at, dr.responded_at, dr.responder_id,
	       COALESCE(m.title, fm.title), f.file_name, ru.name
	FROM deletion_requests dr
	JOIN users ru ON ru.id = dr.requester_id
	LEFT JOIN memories m ON m.id = dr.memory_id
	LEFT JOIN memory_files f ON f.id = dr.file_id
	LEFT JOIN memories fm ON fm.id = f.memory_id
`

func scanRequestRows(rows pgx.Rows) ([]*models.DeletionRequest, error) {
	var reqs []*models.DeletionRequest
	for rows.Next() {
		var (
			req  models.DeletionRequest
			name *string
		)
		err := rows.Scan(
			&req.ID, &req.MemoryID, &req.FileID, &req.RequestType, &req.RequesterID, &req.Status, &req.Message,
			&req.CreatedAt, &req.RespondedAt, &req.ResponderID,
			&req.MemoryTitle, &req.FileName, &name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deletion request: %w", err)
		}
		if name != nil {
			req.RequesterName = *name
		}
		reqs = append(reqs, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deletion requests: %w", err)
	}

	return reqs, nil
}

// GetByID retrieves a deletion request with its display fields joined
func (r *DeletionRequestRepository) GetByID(ctx context.Context, id string) (*models.DeletionRequest, error) {
	query := requestJoinSelect + ` WHERE dr.id = $1`
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get deletion request: %w", err)
	}
	defer rows.Close()

	reqs, err := scanRequestRows(rows)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, apperr.Wrap(apperr.KindNotFound, "deletion request not found", pgx.ErrNoRows)
	}
	return reqs[0], nil
}

// ListByConnection retrieves every deletion request whose target
// belongs to the given connection, newest first.
func (r *DeletionRequestRepository) ListByConnection(ctx context.Context, connectionID string) ([]*models.DeletionRequest, error) {
	query := requestJoinSelect + `
		WHERE COALESCE(m.connection_id, fm.connection_id) = $1
		ORDER BY dr.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deletion requests: %w", err)
	}
	defer rows.Close()

	return scanRequestRows(rows)
}

// HasPendingForTarget checks whether the requester already has a
// pending request for the same memory or file.
func (r *DeletionRequestRepository) HasPendingForTarget(ctx context.Context, requesterID string, memoryID, fileID *string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM deletion_requests
			WHERE requester_id = $1 AND status = 'pending'
			  AND (($2::uuid IS NOT NULL AND memory_id = $2) OR ($3::uuid IS NOT NULL AND file_id = $3))
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, requesterID, memoryID, fileID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending deletion request: %w", err)
	}
	return exists, nil
}

// Respond records the responder's decision on a pending request.
func (r *DeletionRequestRepository) Respond(ctx context.Context, id string, status models.RequestStatus, responderID string, respondedAt time.Time) error {
	query := `
		UPDATE deletion_requests
		SET status = $1, responder_id = $2, responded_at = $3
		WHERE id = $4 AND status = 'pending'
	`
	result, err := r.db.Exec(ctx, query, status, responderID, respondedAt, id)
	if err != nil {
		return fmt.Errorf("failed to respond to deletion request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("pending deletion request not found")
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
	"github.com/StiliyanIliev27/Memora/internal/models"

	"github.com/google/uuid"
)

// ConnectionService handles connection lifecycle business logic.
//
// Lifecycle: a connection is created pending by the initiating user
// (user1), the recipient (user2) accepts or rejects it, and either
// party may delete it afterwards. Deleting a connection orphans its
// shared memories to personal scope.
type ConnectionService struct {
	connRepo ConnectionStore
	userRepo UserStore
}

// NewConnectionService creates a new connection service
func NewConnectionService(connRepo ConnectionStore, userRepo UserStore) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		userRepo: userRepo,
	}
}

// CreateByEmail looks up the recipient account by email and creates a
// pending connection authored by the sender. Fails with NotFound when
// no account matches, Conflict when a connection already exists
// between the pair in either direction.
//
// The duplicate check is an application-side read before the insert;
// two concurrent calls for the same pair can race past it (known
// source behavior, kept).
func (s *ConnectionService) CreateByEmail(ctx context.Context, senderID, recipientEmail string, connType models.ConnectionType, message *string) (*models.Connection, error) {
	recipientEmail = strings.TrimSpace(recipientEmail)
	if recipientEmail == "" {
		return nil, apperr.Validationf("recipient email is required")
	}
	if !models.ValidConnectionType(connType) {
		return nil, apperr.Validationf("unknown connection type %q", connType)
	}

	recipient, err := s.userRepo.GetByEmail(ctx, recipientEmail)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFoundf("no account found for %s", recipientEmail)
		}
		return nil, fmt.Errorf("failed to look up recipient: %w", err)
	}

	if recipient.ID == senderID {
		return nil, apperr.Validationf("cannot create a connection with yourself")
	}

	exists, err := s.connRepo.ExistsBetween(ctx, senderID, recipient.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing connection: %w", err)
	}
	if exists {
		return nil, apperr.Conflictf("a connection already exists between these users")
	}

	now := time.Now()
	conn := &models.Connection{
		ID:             uuid.New().String(),
		User1ID:        senderID,
		User2ID:        recipient.ID,
		ConnectionType: connType,
		Status:         models.ConnectionPending,
		Message:        message,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.connRepo.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}

	return conn, nil
}

// GetConnections returns every connection where the user is either
// party, with both user records joined inline. An empty user id (no
// session) yields an empty list, not an error.
func (s *ConnectionService) GetConnections(ctx context.Context, userID string) ([]*models.ConnectionWithUsers, error) {
	if userID == "" {
		return []*models.ConnectionWithUsers{}, nil
	}
	conns, err := s.connRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []*models.ConnectionWithUsers{}
	}
	return conns, nil
}

// GetByID retrieves a connection the user is a member of.
func (s *ConnectionService) GetByID(ctx context.Context, connectionID, userID string) (*models.Connection, error) {
	conn, err := s.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasMember(userID) {
		return nil, apperr.Forbiddenf("user is not a member of this connection")
	}
	return conn, nil
}

// UpdateStatus records the recipient's response to a pending
// connection request. A rejected request stays as a rejected row.
func (s *ConnectionService) UpdateStatus(ctx context.Context, connectionID, responderID string, status models.ConnectionStatus) (*models.Connection, error) {
	if status != models.ConnectionAccepted && status != models.ConnectionRejected {
		return nil, apperr.Validationf("status must be accepted or rejected")
	}

	conn, err := s.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn.Status != models.ConnectionPending {
		return nil, apperr.Conflictf("connection is not pending")
	}
	if conn.User2ID != responderID {
		return nil, apperr.Forbiddenf("only the request recipient can respond")
	}

	if err := s.connRepo.UpdateStatus(ctx, connectionID, status); err != nil {
		return nil, err
	}

	conn.Status = status
	conn.UpdatedAt = time.Now()
	return conn, nil
}

// Delete hard-deletes a connection on behalf of a member. Shared
// memories keep existing but lose their connection reference.
func (s *ConnectionService) Delete(ctx context.Context, connectionID, userID string) (*models.Connection, error) {
	conn, err := s.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasMember(userID) {
		return nil, apperr.Forbiddenf("user is not a member of this connection")
	}

	if err := s.connRepo.Delete(ctx, connectionID); err != nil {
		return nil, err
	}

	return conn, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
	"github.com/StiliyanIliev27/Memora/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DeletionTarget identifies what a deletion request wants removed:
// a whole shared memory or a single attachment. The constructors make
// the memory/file exclusivity structural rather than conventional.
type DeletionTarget struct {
	kind models.RequestType
	id   string
}

// MemoryTarget targets a shared memory.
func MemoryTarget(memoryID string) DeletionTarget {
	return DeletionTarget{kind: models.RequestMemory, id: memoryID}
}

// FileTarget targets a single attachment.
func FileTarget(fileID string) DeletionTarget {
	return DeletionTarget{kind: models.RequestFile, id: fileID}
}

// Kind returns the target's request type.
func (t DeletionTarget) Kind() models.RequestType { return t.kind }

// ID returns the target's id.
func (t DeletionTarget) ID() string { return t.id }

// DeletionService is the broker mediating two-party consent for
// deleting shared content: creating a request never deletes anything;
// only the other connection member's approval triggers the delete.
type DeletionService struct {
	requestRepo RequestStore
	memoryRepo  MemoryStore
	fileRepo    FileStore
	connRepo    ConnectionStore
	storage     ObjectStorage
}

// NewDeletionService creates a new deletion request broker
func NewDeletionService(requestRepo RequestStore, memoryRepo MemoryStore, fileRepo FileStore, connRepo ConnectionStore, storage ObjectStorage) *DeletionService {
	return &DeletionService{
		requestRepo: requestRepo,
		memoryRepo:  memoryRepo,
		fileRepo:    fileRepo,
		connRepo:    connRepo,
		storage:     storage,
	}
}

// resolveTarget loads the memory behind a target (directly, or via
// the file's parent memory) along with the file when the target is
// one.
func (s *DeletionService) resolveTarget(ctx context.Context, target DeletionTarget) (*models.Memory, *models.MemoryFile, error) {
	switch target.kind {
	case models.RequestMemory:
		m, err := s.memoryRepo.GetByID(ctx, target.id)
		if err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	case models.RequestFile:
		f, err := s.fileRepo.GetByID(ctx, target.id)
		if err != nil {
			return nil, nil, err
		}
		m, err := s.memoryRepo.GetByID(ctx, f.MemoryID)
		if err != nil {
			return nil, nil, err
		}
		return m, f, nil
	}
	return nil, nil, apperr.Validationf("deletion target is required")
}

// Create records a pending deletion request for shared content. The
// requester must be a member of the target's connection; personal
// memories are not broker territory (their creator deletes directly).
func (s *DeletionService) Create(ctx context.Context, requesterID string, target DeletionTarget, message *string) (*models.DeletionRequest, error) {
	if target.id == "" {
		return nil, apperr.Validationf("deletion target is required")
	}

	m, _, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if m.ConnectionID == nil {
		return nil, apperr.Validationf("personal memories are deleted directly, not by request")
	}

	conn, err := s.connRepo.GetByID(ctx, *m.ConnectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasMember(requesterID) {
		return nil, apperr.Forbiddenf("user is not a member of this connection")
	}

	var memoryID, fileID *string
	if target.kind == models.RequestMemory {
		memoryID = &target.id
	} else {
		fileID = &target.id
	}

	pending, err := s.requestRepo.HasPendingForTarget(ctx, requesterID, memoryID, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return nil, apperr.Conflictf("a pending deletion request for this target already exists")
	}

	req := &models.DeletionRequest{
		ID:          uuid.New().String(),
		MemoryID:    memoryID,
		FileID:      fileID,
		RequestType: target.kind,
		RequesterID: requesterID,
		Status:      models.RequestPending,
		Message:     message,
		CreatedAt:   time.Now(),
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create deletion request: %w", err)
	}

	return req, nil
}

// RequestsForConnection returns the deletion requests on a
// connection's content that the user must act on, i.e. everyone
// else's requests.
func (s *DeletionService) RequestsForConnection(ctx context.Context, connectionID, userID string) ([]*models.DeletionRequest, error) {
	return s.listByConnection(ctx, connectionID, userID, false)
}

// UserRequests returns the user's own deletion requests on a
// connection's content, used for pending badges and duplicate
// suppression.
func (s *DeletionService) UserRequests(ctx context.Context, connectionID, userID string) ([]*models.DeletionRequest, error) {
	return s.listByConnection(ctx, connectionID, userID, true)
}

func (s *DeletionService) listByConnection(ctx context.Context, connectionID, userID string, own bool) ([]*models.DeletionRequest, error) {
	conn, err := s.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasMember(userID) {
		return nil, apperr.Forbiddenf("user is not a member of this connection")
	}

	all, err := s.requestRepo.ListByConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	reqs := []*models.DeletionRequest{}
	for _, req := range all {
		if (req.RequesterID == userID) == own {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

// ConnectionForRequest resolves the connection a request's target
// belongs to. Callers that notify both members after a response must
// resolve before responding, because an approval deletes the target.
func (s *DeletionService) ConnectionForRequest(ctx context.Context, requestID string) (*models.Connection, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var target DeletionTarget
	if req.RequestType == models.RequestMemory {
		target = MemoryTarget(*req.MemoryID)
	} else {
		target = FileTarget(*req.FileID)
	}

	m, _, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if m.ConnectionID == nil {
		return nil, apperr.Conflictf("target is no longer shared")
	}
	return s.connRepo.GetByID(ctx, *m.ConnectionID)
}

// Respond records the other party's decision on a pending request.
// Approval performs the actual delete of the target as a second,
// dependent step: if that step fails, the request stays approved and
// the error is surfaced (no compensating rollback; kept from the
// source behavior).
func (s *DeletionService) Respond(ctx context.Context, requestID, responderID string, status models.RequestStatus) (*models.DeletionRequest, error) {
	if status != models.RequestApproved && status != models.RequestRejected {
		return nil, apperr.Validationf("status must be approved or rejected")
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestPending {
		return nil, apperr.Conflictf("deletion request already responded to")
	}
	if req.RequesterID == responderID {
		return nil, apperr.Forbiddenf("requester cannot respond to their own request")
	}

	var target DeletionTarget
	if req.RequestType == models.RequestMemory {
		target = MemoryTarget(*req.MemoryID)
	} else {
		target = FileTarget(*req.FileID)
	}

	m, f, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if m.ConnectionID == nil {
		return nil, apperr.Conflictf("target is no longer shared")
	}
	conn, err := s.connRepo.GetByID(ctx, *m.ConnectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasMember(responderID) {
		return nil, apperr.Forbiddenf("user is not a member of this connection")
	}

	now := time.Now()
	if err := s.requestRepo.Respond(ctx, requestID, status, responderID, now); err != nil {
		return nil, err
	}
	req.Status = status
	req.ResponderID = &responderID
	req.RespondedAt = &now

	if status == models.RequestApproved {
		if err := s.deleteTarget(ctx, m, f); err != nil {
			log.Error().Err(err).
				Str("request_id", requestID).
				Str("request_type", string(req.RequestType)).
				Msg("Deletion request approved but target delete failed")
			return req, fmt.Errorf("request approved but delete failed: %w", err)
		}
	}

	return req, nil
}

func (s *DeletionService) deleteTarget(ctx context.Context, m *models.Memory, f *models.MemoryFile) error {
	if f != nil {
		if err := s.fileRepo.Delete(ctx, f.ID); err != nil {
			return err
		}
		s.removeObject(ctx, f.FileURL)
		return nil
	}

	urls, err := s.memoryRepo.Delete(ctx, m.ID)
	if err != nil {
		return err
	}
	if m.FileURL != nil {
		urls = append(urls, *m.FileURL)
	}
	for _, u := range urls {
		s.removeObject(ctx, u)
	}
	return nil
}

func (s *DeletionService) removeObject(ctx context.Context, url string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Remove(ctx, url); err != nil {
		log.Error().Err(err).Str("url", url).Msg("Failed to remove stored object")
	}
}

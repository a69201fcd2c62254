package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
	"github.com/StiliyanIliev27/Memora/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MemoryService handles memory business logic.
type MemoryService struct {
	memoryRepo MemoryStore
	connRepo   ConnectionStore
	storage    ObjectStorage
}

// NewMemoryService creates a new memory service
func NewMemoryService(memoryRepo MemoryStore, connRepo ConnectionStore, storage ObjectStorage) *MemoryService {
	return &MemoryService{
		memoryRepo: memoryRepo,
		connRepo:   connRepo,
		storage:    storage,
	}
}

// CreateMemoryInput carries the fields for creating a memory. A nil
// ConnectionID creates a personal memory.
type CreateMemoryInput struct {
	ConnectionID *string
	Title        string
	Description  *string
	LocationName string
	Latitude     float64
	Longitude    float64
	MemoryType   models.MemoryType
	FileURL      *string
	PlaceID      *string
	City         *string
	Country      *string
	State        *string
}

// Create pins a new memory to a location. When a connection id is
// given, the creator must be a member of that connection and the
// connection must be accepted.
func (s *MemoryService) Create(ctx context.Context, userID string, in CreateMemoryInput) (*models.Memory, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validationf("title is required")
	}
	if strings.TrimSpace(in.LocationName) == "" {
		return nil, apperr.Validationf("location_name is required")
	}
	if !models.ValidMemoryType(in.MemoryType) {
		return nil, apperr.Validationf("unknown memory type %q", in.MemoryType)
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return nil, apperr.Validationf("latitude must be between -90 and 90")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return nil, apperr.Validationf("longitude must be between -180 and 180")
	}

	if in.ConnectionID != nil {
		conn, err := s.connRepo.GetByID(ctx, *in.ConnectionID)
		if err != nil {
			return nil, err
		}
		if !conn.HasMember(userID) {
			return nil, apperr.Forbiddenf("user is not a member of this connection")
		}
		if conn.Status != models.ConnectionAccepted {
			return nil, apperr.Validationf("connection is not accepted")
		}
	}

	now := time.Now()
	m := &models.Memory{
		ID:           uuid.New().String(),
		ConnectionID: in.ConnectionID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		LocationName: strings.TrimSpace(in.LocationName),
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		MemoryType:   in.MemoryType,
		FileURL:      in.FileURL,
		CreatedBy:    userID,
		PlaceID:      in.PlaceID,
		City:         in.City,
		Country:      in.Country,
		State:        in.State,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.memoryRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create memory: %w", err)
	}

	return m, nil
}

// GetUserMemories returns the memories visible to a user: personal
// ones plus everything shared through their connections. An empty
// user id yields an empty list.
func (s *MemoryService) GetUserMemories(ctx context.Context, userID string) ([]*models.MemoryWithConnection, error) {
	if userID == "" {
		return []*models.MemoryWithConnection{}, nil
	}
	memories, err := s.memoryRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if memories == nil {
		memories = []*models.MemoryWithConnection{}
	}
	return memories, nil
}

// GetMemoriesByConnection returns the memories shared through a
// connection the user is a member of.
func (s *MemoryService) GetMemoriesByConnection(ctx context.Context, connectionID, userID string) ([]*models.MemoryWithConnection, error) {
	conn, err := s.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasMember(userID) {
		return nil, apperr.Forbiddenf("user is not a member of this connection")
	}
	memories, err := s.memoryRepo.ListByConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if memories == nil {
		memories = []*models.MemoryWithConnection{}
	}
	return memories, nil
}

// GetByID retrieves a memory if the user may see it: the creator, or
// either member of the memory's connection.
func (s *MemoryService) GetByID(ctx context.Context, memoryID, userID string) (*models.Memory, error) {
	m, err := s.memoryRepo.GetByID(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(ctx, m, userID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MemoryService) checkVisibility(ctx context.Context, m *models.Memory, userID string) error {
	if m.CreatedBy == userID {
		return nil
	}
	if m.ConnectionID == nil {
		return apperr.Forbiddenf("memory is personal to another user")
	}
	conn, err := s.connRepo.GetByID(ctx, *m.ConnectionID)
	if err != nil {
		return err
	}
	if !conn.HasMember(userID) {
		return apperr.Forbiddenf("user is not a member of this connection")
	}
	return nil
}

// Update changes a memory's title and/or description. Only the
// creator may mutate a memory.
func (s *MemoryService) Update(ctx context.Context, memoryID, userID string, title, description *string) (*models.Memory, error) {
	m, err := s.memoryRepo.GetByID(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	if m.CreatedBy != userID {
		return nil, apperr.Forbiddenf("only the creator can edit a memory")
	}

	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return nil, apperr.Validationf("title cannot be empty")
		}
		m.Title = t
	}
	if description != nil {
		m.Description = description
	}
	m.UpdatedAt = time.Now()

	if err := s.memoryRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a memory directly on behalf of its creator. Shared
// memories also have a consent-gated path through the deletion
// request broker; this direct path remains open to the owner.
func (s *MemoryService) Delete(ctx context.Context, memoryID, userID string) (*models.Memory, error) {
	m, err := s.memoryRepo.GetByID(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	if m.CreatedBy != userID {
		return nil, apperr.Forbiddenf("only the creator can delete a memory directly")
	}

	urls, err := s.memoryRepo.Delete(ctx, memoryID)
	if err != nil {
		return nil, err
	}

	s.removeObjects(ctx, m, urls)
	return m, nil
}

// removeObjects best-effort removes the stored objects behind a
// deleted memory. Row deletion already committed; storage failures
// are logged, not surfaced.
func (s *MemoryService) removeObjects(ctx context.Context, m *models.Memory, urls []string) {
	if s.storage == nil {
		return
	}
	if m.FileURL != nil {
		urls = append(urls, *m.FileURL)
	}
	for _, u := range urls {
		if err := s.storage.Remove(ctx, u); err != nil {
			log.Error().Err(err).Str("memory_id", m.ID).Str("url", u).Msg("Failed to remove stored object")
		}
	}
}

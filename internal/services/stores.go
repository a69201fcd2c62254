package services

import (
	"context"
	"io"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/models"
)

// The services accept narrow store interfaces, satisfied by the
// repository package in production and by in-memory fakes in tests.

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// ConnectionStore persists connections.
type ConnectionStore interface {
	Create(ctx context.Context, conn *models.Connection) error
	GetByID(ctx context.Context, id string) (*models.Connection, error)
	ListByUser(ctx context.Context, userID string) ([]*models.ConnectionWithUsers, error)
	ExistsBetween(ctx context.Context, userA, userB string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.ConnectionStatus) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore persists memories. Delete returns the attachment object
// URLs so callers can clean up storage.
type MemoryStore interface {
	Create(ctx context.Context, m *models.Memory) error
	GetByID(ctx context.Context, id string) (*models.Memory, error)
	ListForUser(ctx context.Context, userID string) ([]*models.MemoryWithConnection, error)
	ListByConnection(ctx context.Context, connectionID string) ([]*models.MemoryWithConnection, error)
	Update(ctx context.Context, m *models.Memory) error
	Delete(ctx context.Context, id string) ([]string, error)
}

// FileStore persists memory attachments.
type FileStore interface {
	Create(ctx context.Context, f *models.MemoryFile) error
	GetByID(ctx context.Context, id string) (*models.MemoryFile, error)
	ListByMemory(ctx context.Context, memoryID string) ([]*models.MemoryFile, error)
	CountByMemoryAndType(ctx context.Context, memoryID string, fileType models.MemoryType) (int, error)
	Delete(ctx context.Context, id string) error
}

// RequestStore persists deletion requests.
type RequestStore interface {
	Create(ctx context.Context, req *models.DeletionRequest) error
	GetByID(ctx context.Context, id string) (*models.DeletionRequest, error)
	ListByConnection(ctx context.Context, connectionID string) ([]*models.DeletionRequest, error)
	HasPendingForTarget(ctx context.Context, requesterID string, memoryID, fileID *string) (bool, error)
	Respond(ctx context.Context, id string, status models.RequestStatus, responderID string, respondedAt time.Time) error
}

// ObjectStorage stores attachment bytes and returns publicly
// fetchable URLs.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Remove(ctx context.Context, fileURL string) error
}

package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
	"github.com/StiliyanIliev27/Memora/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Attachment caps, enforced at write time before any byte is stored.
const (
	MaxPhotoSize = 5 << 20  // 5MB
	MaxVideoSize = 50 << 20 // 50MB
	MaxNoteSize  = 1 << 20  // 1MB

	MaxPhotosPerMemory = 10
	MaxVideosPerMemory = 5
)

// ValidateFileUpload checks the size and per-memory count caps for an
// attachment of the given type. existing is the number of attachments
// of that type already on the memory.
func ValidateFileUpload(fileType models.MemoryType, size int64, existing int) error {
	if size <= 0 {
		return apperr.Validationf("file is empty")
	}
	switch fileType {
	case models.MemoryPhoto:
		if size > MaxPhotoSize {
			return apperr.Validationf("photo exceeds the 5MB limit")
		}
		if existing >= MaxPhotosPerMemory {
			return apperr.Validationf("memory already has the maximum of %d photos", MaxPhotosPerMemory)
		}
	case models.MemoryVideo:
		if size > MaxVideoSize {
			return apperr.Validationf("video exceeds the 50MB limit")
		}
		if existing >= MaxVideosPerMemory {
			return apperr.Validationf("memory already has the maximum of %d videos", MaxVideosPerMemory)
		}
	case models.MemoryNote:
		if size > MaxNoteSize {
			return apperr.Validationf("document exceeds the 1MB limit")
		}
	default:
		return apperr.Validationf("unknown file type %q", fileType)
	}
	return nil
}

// FileService handles memory attachment business logic.
type FileService struct {
	fileRepo   FileStore
	memoryRepo MemoryStore
	connRepo   ConnectionStore
	storage    ObjectStorage
}

// NewFileService creates a new file service
func NewFileService(fileRepo FileStore, memoryRepo MemoryStore, connRepo ConnectionStore, storage ObjectStorage) *FileService {
	return &FileService{
		fileRepo:   fileRepo,
		memoryRepo: memoryRepo,
		connRepo:   connRepo,
		storage:    storage,
	}
}

// UploadInput carries an attachment upload.
type UploadInput struct {
	MemoryID    string
	FileName    string
	FileType    models.MemoryType
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload validates the caps, stores the object under
// {user_id}/{memory_id}/{name} and records the attachment row. The
// memory's creator and the other connection member may both attach.
func (s *FileService) Upload(ctx context.Context, userID string, in UploadInput) (*models.MemoryFile, error) {
	m, err := s.memoryRepo.GetByID(ctx, in.MemoryID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, m, userID); err != nil {
		return nil, err
	}

	name := path.Base(strings.TrimSpace(in.FileName))
	if name == "" || name == "." || name == "/" {
		return nil, apperr.Validationf("file name is required")
	}

	// Count and insert are separate statements, so concurrent uploads
	// can land one attachment over the cap.
	existing, err := s.fileRepo.CountByMemoryAndType(ctx, in.MemoryID, in.FileType)
	if err != nil {
		return nil, fmt.Errorf("failed to count attachments: %w", err)
	}
	if err := ValidateFileUpload(in.FileType, in.Size, existing); err != nil {
		return nil, err
	}

	fileID := uuid.New().String()
	key := fmt.Sprintf("%s/%s/%s_%s", userID, in.MemoryID, fileID, name)

	url, err := s.storage.Upload(ctx, key, in.ContentType, in.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	f := &models.MemoryFile{
		ID:        fileID,
		MemoryID:  in.MemoryID,
		FileURL:   url,
		FileName:  name,
		FileType:  in.FileType,
		FileSize:  in.Size,
		CreatedBy: userID,
		CreatedAt: time.Now(),
	}

	if err := s.fileRepo.Create(ctx, f); err != nil {
		// The object is already stored; clean it up so a failed insert
		// does not leak storage.
		if rmErr := s.storage.Remove(ctx, url); rmErr != nil {
			log.Error().Err(rmErr).Str("url", url).Msg("Failed to remove orphaned object")
		}
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}

	return f, nil
}

// Files lists a memory's attachments for a user allowed to see it.
// Reads are stable: two calls with no intervening writes return the
// same result.
func (s *FileService) Files(ctx context.Context, memoryID, userID string) ([]*models.MemoryFile, error) {
	m, err := s.memoryRepo.GetByID(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, m, userID); err != nil {
		return nil, err
	}

	files, err := s.fileRepo.ListByMemory(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []*models.MemoryFile{}
	}
	return files, nil
}

// Delete removes an attachment directly on behalf of its uploader.
// Non-uploaders go through the deletion request broker.
func (s *FileService) Delete(ctx context.Context, fileID, userID string) error {
	f, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if f.CreatedBy != userID {
		return apperr.Forbiddenf("only the uploader can delete a file directly")
	}

	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return err
	}

	if err := s.storage.Remove(ctx, f.FileURL); err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("Failed to remove stored object")
	}
	return nil
}

func (s *FileService) checkAccess(ctx context.Context, m *models.Memory, userID string) error {
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

package handlers

import (
	"net/http"

	"github.com/StiliyanIliev27/Memora/internal/middleware"
	"github.com/StiliyanIliev27/Memora/internal/models"
	"github.com/StiliyanIliev27/Memora/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// maxUploadBytes bounds the multipart body. The largest allowed file
// is a video; the extra megabyte covers the form framing.
const maxUploadBytes = services.MaxVideoSize + 1<<20

// FileHandler handles memory attachment HTTP requests
type FileHandler struct {
	fileService *services.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

// Upload handles POST /api/v1/memories/{memory_id}/files
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	memoryID := chi.URLParam(r, "memory_id")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileType := r.FormValue("file_type")
	if fileType == "" {
		respondError(w, "file_type is required", http.StatusBadRequest)
		return
	}

	created, err := h.fileService.Upload(ctx, userID, services.UploadInput{
		MemoryID:    memoryID,
		FileName:    header.Filename,
		FileType:    models.MemoryType(fileType),
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("memory_id", memoryID).
			Str("user_id", userID).
			Str("file_name", header.Filename).
			Msg("Failed to upload file")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("file_id", created.ID).
		Str("memory_id", memoryID).
		Str("user_id", userID).
		Int64("size", created.FileSize).
		Msg("File uploaded")

	respondJSON(w, http.StatusCreated, created)
}

// List handles GET /api/v1/memories/{memory_id}/files
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	memoryID := chi.URLParam(r, "memory_id")

	files, err := h.fileService.Files(ctx, memoryID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("memory_id", memoryID).
			Str("user_id", userID).
			Msg("Failed to list files")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"files": files,
		"total": len(files),
	})
}

// Delete handles DELETE /api/v1/files/{file_id}
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	fileID := chi.URLParam(r, "file_id")

	if err := h.fileService.Delete(ctx, fileID, userID); err != nil {
		log.Error().
			Err(err).
			Str("file_id", fileID).
			Str("user_id", userID).
			Msg("Failed to delete file")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("file_id", fileID).
		Str("user_id", userID).
		Msg("File deleted")

	w.WriteHeader(http.StatusNoContent)
}

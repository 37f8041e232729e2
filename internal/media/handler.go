package media

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/voltmart/storefront/internal/domain"
)

// Uploads are capped; product images do not need more.
const maxUploadBytes = 10 << 20

// Store is satisfied by *MediaRepository.
type Store interface {
	Create(ctx context.Context, m *domain.Media) error
	GetByID(ctx context.Context, id string) (*domain.Media, error)
}

type Handler struct {
	store  Store
	dir    string
	logger *slog.Logger
}

// NewHandler stores uploads under dir, creating it if needed.
func NewHandler(store Store, dir string, logger *slog.Logger) (*Handler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Handler{
		store:  store,
		dir:    dir,
		logger: logger,
	}, nil
}

type uploadResponse struct {
	Doc *domain.Media `json:"doc"`
}

// HandleUpload accepts a multipart form with a "file" field, stores the file
// under a uuid name (original extension kept), and returns the media
// document for product create/update to reference.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "multipart form with a 'file' field is required")
		return
	}
	defer func() { _ = file.Close() }()

	id := uuid.New().String()
	storedName := id + filepath.Ext(header.Filename)

	dst, err := os.Create(filepath.Join(h.dir, storedName))
	if err != nil {
		h.logger.Error("failed to create media file", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer func() { _ = dst.Close() }()

	size, err := io.Copy(dst, file)
	if err != nil {
		h.logger.Error("failed to write media file", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	doc := &domain.Media{
		ID:        id,
		Filename:  header.Filename,
		URL:       "/media/" + storedName,
		MimeType:  mimeType,
		Size:      size,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.Create(r.Context(), doc); err != nil {
		h.logger.Error("failed to persist media document", "error", err, "media_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("media uploaded", "media_id", id, "filename", doc.Filename, "size", size)
	h.writeJSON(w, http.StatusCreated, uploadResponse{Doc: doc})
}

// FileServer serves the stored files under /media/.
func (h *Handler) FileServer() http.Handler {
	return http.StripPrefix("/media/", http.FileServer(http.Dir(h.dir)))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/getaway-genius/apiserver/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxImageMemory = 16 << 20
	maxImageBytes  = 10 << 20
	imageFormField = "image"
	imageKeyPrefix = "trips/"
)

// ImageHandler uploads trip cover images to object storage.
type ImageHandler struct {
	storage *storage.Storage
}

// NewImageHandler constructs a handler over the given storage. A nil
// storage yields 503s from every route.
func NewImageHandler(store *storage.Storage) *ImageHandler {
	return &ImageHandler{storage: store}
}

// ImageRouter registers image routes on the given router.
func ImageRouter(r chi.Router, store *storage.Storage, authMiddleware func(http.Handler) http.Handler) {
	handler := NewImageHandler(store)

	r.Use(authMiddleware)
	r.Post("/upload", handler.Upload)
	r.Delete("/destroy", handler.Destroy)
}

// Upload stores a multipart image and returns its public URL and key.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "image storage not configured")
		return
	}

	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := readImageLimited(file, maxImageBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "file is not an image")
		return
	}

	key := imageKeyPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	if err := h.storage.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	writeJSON(w, http.StatusOK, ImageUploadResponse{
		URL: h.storage.PublicURL(key),
		Key: key,
	})
}

// Destroy deletes a previously uploaded image by key.
func (h *ImageHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "image storage not configured")
		return
	}

	var req ImageDestroyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if !strings.HasPrefix(req.Key, imageKeyPrefix) {
		writeError(w, http.StatusBadRequest, "invalid image key")
		return
	}

	if err := h.storage.Delete(r.Context(), req.Key); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete image")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "image deleted"})
}

type ImageUploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type ImageDestroyRequest struct {
	Key string `json:"key"`
}

func readImageLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getaway-genius/apiserver/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjectStorage records puts and deletes in memory.
type fakeObjectStorage struct {
	objects map[string][]byte
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: make(map[string][]byte)}
}

func (f *fakeObjectStorage) EnsureBucket(context.Context) error { return nil }

func (f *fakeObjectStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.objects[key])), nil
}

func (f *fakeObjectStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStorage) Bucket() string { return "test-bucket" }

func (f *fakeObjectStorage) PublicURL(key string) string {
	return "https://cdn.example.com/test-bucket/" + key
}

func newImageRouter(backend *fakeObjectStorage) *chi.Mux {
	passthrough := func(next http.Handler) http.Handler { return next }

	var store *storage.Storage
	if backend != nil {
		store = storage.NewStorage(backend)
	}

	router := chi.NewRouter()
	router.Route("/api/images", func(r chi.Router) {
		ImageRouter(r, store, passthrough)
	})
	return router
}

// tiny valid PNG header so content-type sniffing sees an image
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartImage(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestImageUploadAndDestroy(t *testing.T) {
	t.Parallel()

	backend := newFakeObjectStorage()
	router := newImageRouter(backend)

	body, contentType := multipartImage(t, "image", "paris.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", body)
	req.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp ImageUploadResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Key, "trips/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".png"))
	assert.Contains(t, resp.URL, resp.Key)
	assert.Contains(t, backend.objects, resp.Key)

	destroyBody, err := json.Marshal(ImageDestroyRequest{Key: resp.Key})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodDelete, "/api/images/destroy", bytes.NewReader(destroyBody))
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, backend.objects, resp.Key)
}

func TestImageUploadRejectsNonImage(t *testing.T) {
	t.Parallel()

	router := newImageRouter(newFakeObjectStorage())

	body, contentType := multipartImage(t, "image", "notes.txt", []byte("plain text, not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", body)
	req.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "file is not an image", decodeError(t, recorder).Error.Message)
}

func TestImageDestroyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	router := newImageRouter(newFakeObjectStorage())

	body, err := json.Marshal(ImageDestroyRequest{Key: "../etc/passwd"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodDelete, "/api/images/destroy", bytes.NewReader(body))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestImageRoutesUnavailableWithoutStorage(t *testing.T) {
	t.Parallel()

	router := newImageRouter(nil)

	body, contentType := multipartImage(t, "image", "paris.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", body)
	req.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, recorder).Error.Code)
}

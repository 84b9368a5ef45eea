package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/pkg/storage"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (*storage.UploadResult, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return &storage.UploadResult{Key: key, URL: "https://img.example.com/" + key, Size: int64(len(data))}, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (s *APISuite) withStore() *memoryStore {
	store := &memoryStore{objects: map[string][]byte{}}
	s.e = echo.New()
	SetupRoutes(s.e, Deps{
		DB:       s.db,
		Log:      zap.NewNop(),
		Verifier: s.tokens,
		Store:    store,
	})
	return store
}

func (s *APISuite) upload(user, filename string, image []byte, fields map[string]string) (int, map[string]any) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	s.Require().NoError(err)
	_, err = part.Write(image)
	s.Require().NoError(err)
	for k, v := range fields {
		s.Require().NoError(w.WriteField(k, v))
	}
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	token, err := s.tokens.SignToken(user, time.Hour)
	s.Require().NoError(err)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	out := map[string]any{}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func (s *APISuite) TestUploadThenFeed() {
	store := s.withStore()

	status, body := s.upload("alice", "pier.png", []byte("\x89PNG fake"), map[string]string{
		"title": "Pier",
		"tags":  "Sea, #dusk ,sea",
	})
	s.Require().Equal(http.StatusCreated, status, body)
	photo := body["data"].(map[string]any)["photo"].(map[string]any)
	s.Equal("Pier", photo["title"])
	s.ElementsMatch([]any{"sea", "dusk"}, photo["tags"])
	s.Len(store.objects, 1)

	status, body = s.call(http.MethodGet, "/api/v1/users/alice/photos", "bruno", nil)
	s.Require().Equal(http.StatusOK, status)
	s.Len(body["data"].(map[string]any)["photos"], 1)

	// alice follows nobody, so her following feed holds only her own upload
	status, body = s.call(http.MethodGet, "/api/v1/feed?following=true", "alice", nil)
	s.Require().Equal(http.StatusOK, status)
	photos := body["data"].(map[string]any)["photos"].([]any)
	s.Require().Len(photos, 1)
	s.Equal(photo["id"], photos[0].(map[string]any)["id"])

	_, body = s.call(http.MethodGet, "/api/v1/feed", "alice", nil)
	s.Len(body["data"].(map[string]any)["photos"], 2)

	_, body = s.call(http.MethodGet, "/api/v1/search?q=pier", "bruno", nil)
	s.Len(body["data"].(map[string]any)["photos"], 1)
}

func (s *APISuite) TestUploadRejectsNonImage() {
	store := s.withStore()

	status, body := s.upload("alice", "notes.txt", []byte("hello"), nil)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("VALIDATION_ERROR", body["code"])
	s.Empty(store.objects)
}

func (s *APISuite) TestSearchRequiresQuery() {
	status, body := s.call(http.MethodGet, "/api/v1/search", "alice", nil)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("VALIDATION_ERROR", body["code"])
}

package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rizqiaditya/stories/models"
	"github.com/rizqiaditya/stories/services"
	"github.com/rizqiaditya/stories/storage"
)

// stubService fails every call with err, or reports ErrStoryNotFound when err is nil.
type stubService struct {
	err     error
	created int
}

func (s *stubService) fail() error {
	if s.err != nil {
		return s.err
	}
	return services.ErrStoryNotFound
}

func (s *stubService) ListVisible(ctx context.Context) ([]models.Story, error)  { return nil, s.fail() }
func (s *stubService) ListArchived(ctx context.Context) ([]models.Story, error) { return nil, s.fail() }
func (s *stubService) GetByID(ctx context.Context, id string) (*models.Story, error) {
	return nil, s.fail()
}
func (s *stubService) Create(ctx context.Context, photo storage.FileRef, in services.CreateStoryInput) (*models.Story, error) {
	s.created++
	return nil, s.fail()
}
func (s *stubService) DeleteByID(ctx context.Context, id string) error { return s.fail() }
func (s *stubService) AddComment(ctx context.Context, storyID, comment string) (*models.StoryComment, error) {
	return nil, s.fail()
}
func (s *stubService) ListComments(ctx context.Context, storyID string) ([]models.StoryComment, error) {
	return nil, s.fail()
}
func (s *stubService) RecordView(ctx context.Context, storyID string, at time.Time) error { return nil }
func (s *stubService) Stats(ctx context.Context, storyID string) (services.StoryStats, error) {
	return services.StoryStats{}, s.fail()
}
func (s *stubService) ArchiveExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, s.fail()
}

// memFiles pretends to store every upload and tracks removals.
type memFiles struct {
	saved, removed int
}

func (m *memFiles) Save(ctx context.Context, field string, fh *multipart.FileHeader) (storage.FileRef, error) {
	if fh == nil {
		return storage.FileRef{}, &storage.UploadError{Code: storage.UploadMissing, Field: field, Msg: "file is required"}
	}
	m.saved++
	return storage.FileRef{Path: "/tmp/" + fh.Filename, URL: "/static/" + fh.Filename}, nil
}

func (m *memFiles) Remove(ref storage.FileRef) error {
	m.removed++
	return nil
}

func newRouter(svc services.StoryService, files storage.FileStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	c := NewStoryController(svc, files, nil)
	r := gin.New()
	r.GET("/stories", c.ListStories)
	r.GET("/stories/:id", c.GetStory)
	r.POST("/stories", c.CreateStory)
	r.DELETE("/stories/:id", c.DeleteStory)
	r.POST("/stories/:id/comments", c.CommentOnStory)
	return r
}

func multipartBody(t *testing.T, caption string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("caption", caption)
	fw, _ := w.CreateFormFile("photo", "p.png")
	_, _ = fw.Write([]byte("img"))
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func TestInternalErrorsAreNotExposed(t *testing.T) {
	r := newRouter(&stubService{err: errors.New("dial tcp 10.0.0.5:3306: connection refused")}, &memFiles{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stories", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
	var env map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env["success"] != false || env["message"] != "failed to fetch stories" {
		t.Fatalf("unexpected envelope %v", env)
	}
}

func TestNotFoundMapsTo404(t *testing.T) {
	r := newRouter(&stubService{}, &memFiles{})
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/stories/abc", nil),
		httptest.NewRequest(http.MethodDelete, "/stories/abc", nil),
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", req.Method, req.URL.Path, rec.Code)
		}
	}
}

func TestCreateDiscardsUploadWhenLaterStageFails(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		svc, files := &stubService{}, &memFiles{}
		body, ct := multipartBody(t, strings.Repeat("x", 501))
		req := httptest.NewRequest(http.MethodPost, "/stories", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		newRouter(svc, files).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if files.saved != 1 || files.removed != 1 {
			t.Fatalf("upload must run first and be discarded, saved=%d removed=%d", files.saved, files.removed)
		}
		if svc.created != 0 {
			t.Fatalf("create must not run after a validation failure")
		}
	})

	t.Run("persistence", func(t *testing.T) {
		svc, files := &stubService{err: errors.New("disk full")}, &memFiles{}
		body, ct := multipartBody(t, "fine")
		req := httptest.NewRequest(http.MethodPost, "/stories", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		newRouter(svc, files).ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if svc.created != 1 || files.removed != 1 {
			t.Fatalf("expected create attempt and discard, created=%d removed=%d", svc.created, files.removed)
		}
	})
}

func TestCommentBodyBinding(t *testing.T) {
	r := newRouter(&stubService{}, &memFiles{})
	cases := []struct {
		body   string
		status int
		code   float64
	}{
		{`not json`, http.StatusBadRequest, 40030},
		{`["a"]`, http.StatusBadRequest, 40030},
		{``, http.StatusBadRequest, 40030},
		{`{"comment": "   "}`, http.StatusBadRequest, 40010},
		{`{"other": "x"}`, http.StatusBadRequest, 40010},
		{`{"comment": "hello"}`, http.StatusNotFound, 40401},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/stories/abc/comments", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		var env map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
		if rec.Code != tc.status || env["code"] != tc.code {
			t.Fatalf("body %q: expected %d/%v, got %d %s", tc.body, tc.status, tc.code, rec.Code, rec.Body.String())
		}
	}
}

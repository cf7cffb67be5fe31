package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UniPortal-2026/submission-service/internal/config"
	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
	"github.com/UniPortal-2026/submission-service/internal/services"
	"github.com/UniPortal-2026/submission-service/internal/utils"
)

type stubAssignmentService struct {
	created     *models.Assignment
	lastFile    *models.FileMeta
	createCalls int
}

func (s *stubAssignmentService) Create(ctx context.Context, req *services.AssignmentCreateRequest, file *models.FileMeta, ownerID uint) (*models.Assignment, error) {
	s.createCalls++
	s.lastFile = file
	s.created = &models.Assignment{
		ID:      1,
		Title:   req.Title,
		Status:  models.StatusDraft,
		OwnerID: ownerID,
	}
	return s.created, nil
}

func (s *stubAssignmentService) GetByID(ctx context.Context, id uint, callerID uint) (*models.Assignment, error) {
	return nil, services.ErrAssignmentNotFound
}

func (s *stubAssignmentService) List(ctx context.Context, ownerID uint, filters repositories.AssignmentFilters) (*services.AssignmentListResponse, error) {
	return &services.AssignmentListResponse{}, nil
}

func (s *stubAssignmentService) Update(ctx context.Context, id uint, req *services.AssignmentUpdateRequest, replacement *models.FileMeta, callerID uint) (*models.Assignment, error) {
	return nil, services.ErrAssignmentNotFound
}

func (s *stubAssignmentService) Submit(ctx context.Context, id uint, req *services.SubmitRequest, callerID uint) (*models.Assignment, error) {
	return nil, services.ErrAssignmentNotFound
}

func (s *stubAssignmentService) Delete(ctx context.Context, id uint, callerID uint) error {
	return services.ErrAssignmentNotFound
}

func (s *stubAssignmentService) Dashboard(ctx context.Context, ownerID uint) (*services.StudentDashboardResponse, error) {
	return &services.StudentDashboardResponse{}, nil
}

func (s *stubAssignmentService) ReviewerOptions(ctx context.Context, studentID uint) ([]*models.User, error) {
	return nil, nil
}

type stubFileStore struct {
	saved   int
	removed []string
}

func (s *stubFileStore) Save(originalName, contentType string, size int64, src io.Reader) (*models.FileMeta, error) {
	if _, err := io.Copy(io.Discard, src); err != nil {
		return nil, err
	}
	s.saved++
	return &models.FileMeta{
		StoredName:   fmt.Sprintf("stored_%d.pdf", s.saved),
		OriginalName: originalName,
		Size:         size,
		ContentType:  contentType,
		UploadedAt:   time.Now().UTC(),
	}, nil
}

func (s *stubFileStore) Open(storedName string) (io.ReadSeekCloser, error) {
	return nil, fmt.Errorf("no such file %q", storedName)
}

func (s *stubFileStore) Remove(storedName string) error {
	s.removed = append(s.removed, storedName)
	return nil
}

func newUploadRouter(t *testing.T) (*gin.Engine, *stubAssignmentService, *stubFileStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := &stubAssignmentService{}
	store := &stubFileStore{}
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := NewStudentHandler(service, store, logger)

	router := gin.New()
	router.MaxMultipartMemory = config.MaxUploadSize
	router.POST("/assignments", func(c *gin.Context) {
		// Stand-in for the auth middleware.
		c.Set("user_id", uint(1))
		c.Set("user_role", models.RoleStudent)
	}, handler.CreateAssignment)

	return router, service, store
}

func multipartUpload(t *testing.T, filename, contentType string, size int) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("title", "Compilers coursework"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.WriteField("category", string(models.CategoryAssignment)); err != nil {
		t.Fatalf("write field: %v", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(bytes.Repeat([]byte("a"), size)); err != nil {
		t.Fatalf("write part: %v", err)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestStudentHandler_CreateAssignment_Upload(t *testing.T) {
	t.Run("pdf within the cap is accepted", func(t *testing.T) {
		router, service, store := newUploadRouter(t)
		body, contentType := multipartUpload(t, "coursework.pdf", "application/pdf", 1024)

		req := httptest.NewRequest(http.MethodPost, "/assignments", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		if service.createCalls != 1 || store.saved != 1 {
			t.Errorf("expected one create and one save, got %d/%d", service.createCalls, store.saved)
		}
	})

	t.Run("exactly the cap is still accepted", func(t *testing.T) {
		router, _, store := newUploadRouter(t)
		body, contentType := multipartUpload(t, "big.pdf", "application/pdf", config.MaxUploadSize)

		req := httptest.NewRequest(http.MethodPost, "/assignments", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201 at the boundary, got %d: %s", w.Code, w.Body.String())
		}
		if store.saved != 1 {
			t.Errorf("expected the file stored, got %d saves", store.saved)
		}
	})

	t.Run("one byte over the cap is rejected", func(t *testing.T) {
		router, service, _ := newUploadRouter(t)
		body, contentType := multipartUpload(t, "huge.pdf", "application/pdf", config.MaxUploadSize+1)

		req := httptest.NewRequest(http.MethodPost, "/assignments", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d: %s", w.Code, w.Body.String())
		}
		if service.createCalls != 0 {
			t.Errorf("expected no create call, got %d", service.createCalls)
		}
	})

	t.Run("non-pdf upload is rejected", func(t *testing.T) {
		router, service, _ := newUploadRouter(t)
		body, contentType := multipartUpload(t, "notes.docx", "application/msword", 1024)

		req := httptest.NewRequest(http.MethodPost, "/assignments", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
		if service.createCalls != 0 {
			t.Errorf("expected no create call, got %d", service.createCalls)
		}
	})

	t.Run("pdf filename with a non-pdf mimetype is rejected", func(t *testing.T) {
		router, service, _ := newUploadRouter(t)
		body, contentType := multipartUpload(t, "disguised.pdf", "text/plain", 1024)

		req := httptest.NewRequest(http.MethodPost, "/assignments", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
		if service.createCalls != 0 {
			t.Errorf("expected no create call, got %d", service.createCalls)
		}
	})

	t.Run("missing file part is rejected", func(t *testing.T) {
		router, service, _ := newUploadRouter(t)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		_ = writer.WriteField("title", "No file attached")
		_ = writer.WriteField("category", string(models.CategoryAssignment))
		_ = writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/assignments", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
		if service.createCalls != 0 {
			t.Errorf("expected no create call, got %d", service.createCalls)
		}
	})
}

func TestRequireRoleMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := &JWTAuthMiddleware{}

	newRouter := func(role models.UserRole, required ...models.UserRole) *gin.Engine {
		router := gin.New()
		router.GET("/guarded", func(c *gin.Context) {
			c.Set("user_role", role)
		}, am.RequireRoleMiddleware(required...), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	tests := []struct {
		name     string
		role     models.UserRole
		required []models.UserRole
		want     int
	}{
		{"student passes student gate", models.RoleStudent, []models.UserRole{models.RoleStudent}, http.StatusOK},
		{"professor blocked at student gate", models.RoleProfessor, []models.UserRole{models.RoleStudent}, http.StatusForbidden},
		{"admin passes every gate", models.RoleAdmin, []models.UserRole{models.RoleStudent}, http.StatusOK},
		{"student blocked at admin gate", models.RoleStudent, []models.UserRole{models.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(tt.role, tt.required...)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

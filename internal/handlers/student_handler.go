package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/UniPortal-2026/submission-service/internal/config"
	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
	"github.com/UniPortal-2026/submission-service/internal/services"
	"github.com/UniPortal-2026/submission-service/internal/storage"
	"github.com/UniPortal-2026/submission-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	fileStore         storage.FileStore
}

func NewStudentHandler(assignmentService services.AssignmentService, fileStore storage.FileStore, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		fileStore:         fileStore,
	}
}

// Dashboard returns the per-status counts and recent assignments.
func (h *StudentHandler) Dashboard(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	dashboard, err := h.assignmentService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// ListProfessors returns same-department reviewer options for the upload form.
func (h *StudentHandler) ListProfessors(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	professors, err := h.assignmentService.ReviewerOptions(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"professors": professors})
}

// CreateAssignment handles the multipart upload of a new draft.
func (h *StudentHandler) CreateAssignment(c *gin.Context) {
	h.LogRequest(c, "creating assignment")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req services.AssignmentCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid form data", Details: err.Error()})
		return
	}

	file, ok := h.savePDF(c, true)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), &req, file, userID)
	if err != nil {
		// The draft never existed; drop the stored file.
		if file != nil {
			if removeErr := h.fileStore.Remove(file.StoredName); removeErr != nil {
				h.LogError(c, removeErr, "failed to remove orphaned upload")
			}
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// ListAssignments returns the caller's assignments with optional filters.
func (h *StudentHandler) ListAssignments(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	resp, err := h.assignmentService.List(c.Request.Context(), userID, parseAssignmentFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAssignment returns one assignment with its review history.
func (h *StudentHandler) GetAssignment(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	assignment, err := h.assignmentService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// UpdateAssignment edits a Draft or Rejected assignment; the multipart form
// may carry a replacement PDF.
func (h *StudentHandler) UpdateAssignment(c *gin.Context) {
	h.LogRequest(c, "updating assignment")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.AssignmentUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid form data", Details: err.Error()})
		return
	}

	replacement, ok := h.savePDF(c, false)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Update(c.Request.Context(), id, &req, replacement, userID)
	if err != nil {
		if replacement != nil {
			if removeErr := h.fileStore.Remove(replacement.StoredName); removeErr != nil {
				h.LogError(c, removeErr, "failed to remove orphaned upload")
			}
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// SubmitAssignment moves a Draft or Rejected assignment to Submitted.
func (h *StudentHandler) SubmitAssignment(c *gin.Context) {
	h.LogRequest(c, "submitting assignment")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	assignment, err := h.assignmentService.Submit(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment removes a non-Approved assignment and its file.
func (h *StudentHandler) DeleteAssignment(c *gin.Context) {
	h.LogRequest(c, "deleting assignment")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "assignment deleted"})
}

// DownloadFile streams the assignment's current PDF.
func (h *StudentHandler) DownloadFile(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	assignment, err := h.assignmentService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	serveAssignmentFile(c, h.fileStore, assignment, &h.BaseHandler)
}

// savePDF validates and stores the "file" part of a multipart request.
// When required is false a missing part is fine and returns (nil, true).
func (h *StudentHandler) savePDF(c *gin.Context, required bool) (*models.FileMeta, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		if !required {
			return nil, true
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "A PDF file is required", Details: "attach the document as the \"file\" form field"})
		return nil, false
	}

	// Exactly the cap is still accepted.
	if header.Size > config.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "File too large",
			Details: "the maximum upload size is 10 MB",
		})
		return nil, false
	}

	// A .pdf filename is not enough; the part must declare the PDF mimetype.
	if contentType := header.Header.Get("Content-Type"); contentType != "application/pdf" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported file type",
			Details: "only PDF documents are accepted",
		})
		return nil, false
	}

	src, err := header.Open()
	if err != nil {
		h.LogError(c, err, "failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
		return nil, false
	}
	defer src.Close()

	meta, err := h.fileStore.Save(header.Filename, "application/pdf", header.Size, src)
	if err != nil {
		h.LogError(c, err, "failed to store uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
		return nil, false
	}
	return meta, true
}

// serveAssignmentFile streams the current PDF of an assignment; shared by
// the student and professor download endpoints.
func serveAssignmentFile(c *gin.Context, store storage.FileStore, assignment *models.Assignment, base *BaseHandler) {
	file := assignment.File.Data()
	if file == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "assignment has no file"})
		return
	}

	reader, err := store.Open(file.StoredName)
	if err != nil {
		base.LogError(c, err, "failed to open stored file")
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "stored file is missing"})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.OriginalName+`"`)
	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, reader, nil)
}

// parseAssignmentFilters reads the shared list query parameters.
func parseAssignmentFilters(c *gin.Context) repositories.AssignmentFilters {
	filters := repositories.AssignmentFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.AssignmentStatus(statusStr)
		filters.Status = &status
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		category := models.AssignmentCategory(categoryStr)
		filters.Category = &category
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	filters.Limit = size
	filters.Offset = (page - 1) * size

	return filters
}

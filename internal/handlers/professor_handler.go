package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniPortal-2026/submission-service/internal/services"
	"github.com/UniPortal-2026/submission-service/internal/storage"
	"github.com/UniPortal-2026/submission-service/internal/utils"
)

type ProfessorHandler struct {
	BaseHandler
	reviewService services.ReviewService
	fileStore     storage.FileStore
}

func NewProfessorHandler(reviewService services.ReviewService, fileStore storage.FileStore, logger utils.Logger) *ProfessorHandler {
	return &ProfessorHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
		fileStore:     fileStore,
	}
}

// Dashboard returns the reviewer's counters and pending queue.
func (h *ProfessorHandler) Dashboard(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	dashboard, err := h.reviewService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// ListAssignments returns the assignments routed to this reviewer; without
// an explicit status filter it shows the pending queue.
func (h *ProfessorHandler) ListAssignments(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	resp, err := h.reviewService.Queue(c.Request.Context(), userID, parseAssignmentFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAssignment returns one submission for review.
func (h *ProfessorHandler) GetAssignment(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	assignment, err := h.reviewService.GetForReview(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// Decide approves or rejects a submitted assignment.
func (h *ProfessorHandler) Decide(c *gin.Context) {
	h.LogRequest(c, "deciding assignment")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	assignment, err := h.reviewService.Decide(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// DownloadFile streams the submission's current PDF.
func (h *ProfessorHandler) DownloadFile(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	assignment, err := h.reviewService.GetForReview(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	serveAssignmentFile(c, h.fileStore, assignment, &h.BaseHandler)
}

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
	"github.com/UniPortal-2026/submission-service/internal/services"
	"github.com/UniPortal-2026/submission-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	BaseHandler
	userService       services.UserService
	departmentService services.DepartmentService
	reportService     services.ReportService
}

func NewAdminHandler(
	userService services.UserService,
	departmentService services.DepartmentService,
	reportService services.ReportService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:       NewBaseHandler(logger),
		userService:       userService,
		departmentService: departmentService,
		reportService:     reportService,
	}
}

// ===== USERS =====

func (h *AdminHandler) CreateUser(c *gin.Context) {
	h.LogRequest(c, "creating user")

	var req services.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	filters := repositories.UserFilters{
		Query:     c.Query("q"),
		SortBy:    c.DefaultQuery("sort_by", "full_name"),
		SortOrder: c.DefaultQuery("sort_order", "asc"),
	}

	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		filters.Role = &role
	}
	if deptStr := c.Query("department_id"); deptStr != "" {
		if deptID, err := strconv.ParseUint(deptStr, 10, 32); err == nil {
			id := uint(deptID)
			filters.DepartmentID = &id
		}
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

	resp, err := h.userService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	h.LogRequest(c, "updating user")

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	h.LogRequest(c, "deleting user")

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// ===== DEPARTMENTS =====

func (h *AdminHandler) CreateDepartment(c *gin.Context) {
	h.LogRequest(c, "creating department")

	var req services.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	department, err := h.departmentService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, department)
}

func (h *AdminHandler) ListDepartments(c *gin.Context) {
	departments, err := h.departmentService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

func (h *AdminHandler) UpdateDepartment(c *gin.Context) {
	h.LogRequest(c, "updating department")

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	department, err := h.departmentService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, department)
}

func (h *AdminHandler) DeleteDepartment(c *gin.Context) {
	h.LogRequest(c, "deleting department")

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.departmentService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "department deleted"})
}

// ===== REPORTS =====

func (h *AdminHandler) UsersReport(c *gin.Context) {
	h.LogRequest(c, "generating users report")

	workbook, err := h.reportService.UsersReport(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.serveWorkbook(c, "users", workbook)
}

func (h *AdminHandler) AssignmentsReport(c *gin.Context) {
	h.LogRequest(c, "generating assignments report")

	workbook, err := h.reportService.AssignmentsReport(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.serveWorkbook(c, "assignments", workbook)
}

func (h *AdminHandler) serveWorkbook(c *gin.Context, name string, workbook []byte) {
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, workbook)
}

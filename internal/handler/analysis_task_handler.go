package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/recurse-backend-go/internal/middleware"
	"github.com/jengzang/recurse-backend-go/internal/service"
	"github.com/jengzang/recurse-backend-go/pkg/response"
)

// AnalysisTaskHandler handles HTTP requests for analysis tasks
type AnalysisTaskHandler struct {
	service *service.AnalysisTaskService
}

// NewAnalysisTaskHandler creates a new analysis task handler
func NewAnalysisTaskHandler(service *service.AnalysisTaskService) *AnalysisTaskHandler {
	return &AnalysisTaskHandler{service: service}
}

// CreateTaskRequest represents the request body for creating an analysis task
type CreateTaskRequest struct {
	SkillName string         `json:"skill_name" binding:"required"`
	TaskType  string         `json:"task_type"` // INCREMENTAL or FULL_RECOMPUTE, defaults to FULL_RECOMPUTE
	Params    map[string]any `json:"params"`
}

// CreateTask creates a new analysis task
// POST /api/admin/analysis/tasks
func (h *AnalysisTaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	// Set by the auth middleware
	createdBy := c.GetString(middleware.UserKey)
	if createdBy == "" {
		createdBy = "admin"
	}

	task, err := h.service.CreateTask(req.SkillName, req.TaskType, req.Params, createdBy)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, task)
}

// GetTask retrieves a task by ID
// GET /api/admin/analysis/tasks/:id
func (h *AnalysisTaskHandler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.service.GetTask(id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, task)
}

// ListTasks retrieves all tasks
// GET /api/admin/analysis/tasks
func (h *AnalysisTaskHandler) ListTasks(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}

	tasks, err := h.service.ListTasks(c.Query("skill_name"), c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"tasks":  tasks,
		"limit":  limit,
		"offset": offset,
	})
}

// CancelTask cancels a running task
// DELETE /api/admin/analysis/tasks/:id
func (h *AnalysisTaskHandler) CancelTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.service.CancelTask(id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Task cancellation requested"})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return id, true
}

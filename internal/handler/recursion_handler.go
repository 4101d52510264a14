package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/recurse-backend-go/internal/models"
	"github.com/jengzang/recurse-backend-go/internal/service"
	"github.com/jengzang/recurse-backend-go/pkg/response"
)

// RecursionHandler handles HTTP requests for recursion runs
type RecursionHandler struct {
	service *service.RecursionService
}

// NewRecursionHandler creates a new recursion handler
func NewRecursionHandler(service *service.RecursionService) *RecursionHandler {
	return &RecursionHandler{service: service}
}

// Compute handles POST /api/v1/recursions
func (h *RecursionHandler) Compute(c *gin.Context) {
	var req models.RecursionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.service.Compute(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// ListRuns handles GET /api/v1/recursions
func (h *RecursionHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}

	runs, err := h.service.ListRuns(c.Query("dataset"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"runs":   runs,
		"limit":  limit,
		"offset": offset,
	})
}

// GetRun handles GET /api/v1/recursions/:id
func (h *RecursionHandler) GetRun(c *gin.Context) {
	detail, err := h.service.GetRun(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, detail)
}

// GetPatterns handles GET /api/v1/recursions/:id/patterns
func (h *RecursionHandler) GetPatterns(c *gin.Context) {
	patterns, err := h.service.GetPatterns(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, patterns)
}

// DeleteRun handles DELETE /api/v1/recursions/:id
func (h *RecursionHandler) DeleteRun(c *gin.Context) {
	if err := h.service.DeleteRun(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Run deleted"})
}

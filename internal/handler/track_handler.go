package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/recurse-backend-go/internal/models"
	"github.com/jengzang/recurse-backend-go/internal/service"
	"github.com/jengzang/recurse-backend-go/pkg/response"
)

// TrackHandler handles HTTP requests for stored datasets
type TrackHandler struct {
	trackService *service.TrackService
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(trackService *service.TrackService) *TrackHandler {
	return &TrackHandler{
		trackService: trackService,
	}
}

// ListDatasets handles GET /api/v1/datasets
func (h *TrackHandler) ListDatasets(c *gin.Context) {
	datasets, err := h.trackService.ListDatasets()
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, datasets)
}

// UploadPoints handles POST /api/v1/datasets/:name/points
func (h *TrackHandler) UploadPoints(c *gin.Context) {
	var req models.UploadPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	dataset := c.Param("name")
	total, err := h.trackService.UploadPoints(dataset, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, gin.H{
		"dataset":  dataset,
		"uploaded": len(req.Points),
		"total":    total,
	})
}

// GetTrackPoints handles GET /api/v1/datasets/:name/points
func (h *TrackHandler) GetTrackPoints(c *gin.Context) {
	var filter models.TrackPointFilter

	// Parse query parameters
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.trackService.GetTrackPoints(c.Param("name"), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteDataset handles DELETE /api/v1/datasets/:name
func (h *TrackHandler) DeleteDataset(c *gin.Context) {
	removed, err := h.trackService.DeleteDataset(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{"removed": removed})
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/recurse-backend-go/internal/logger"
	"github.com/jengzang/recurse-backend-go/internal/service"
	"github.com/jengzang/recurse-backend-go/pkg/response"
)

// respondError maps service errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	default:
		logger.Errorw("Request failed", "path", c.FullPath(), "error", err)
		_ = c.Error(err)
		response.InternalError(c, "Internal server error")
	}
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/http/middleware"
	"github.com/pathwise/pathwise-backend/internal/http/response"
	"github.com/pathwise/pathwise-backend/internal/services"
)

type ProgressHandler struct {
	progress services.ProgressService
}

func NewProgressHandler(progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// POST /api/progress/concepts/:id
func (h *ProgressHandler) UpdateConceptProgress(c *gin.Context) {
	conceptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid concept id")
		return
	}
	var delta services.ConceptProgressDelta
	if err := c.ShouldBindJSON(&delta); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	row, err := h.progress.UpdateConceptProgress(c.Request.Context(), middleware.UserID(c), conceptID, delta)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"progress": row})
}

// POST /api/progress/contents/:id
func (h *ProgressHandler) UpdateContentProgress(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid content id")
		return
	}
	var delta services.ContentProgressDelta
	if err := c.ShouldBindJSON(&delta); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	row, err := h.progress.UpdateContentProgress(c.Request.Context(), middleware.UserID(c), contentID, delta)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"progress": row})
}

// GET /api/progress
func (h *ProgressHandler) GetConceptProgress(c *gin.Context) {
	rows, err := h.progress.GetUserConceptProgress(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"progress": rows})
}

// GET /api/progress/stats
func (h *ProgressHandler) GetStats(c *gin.Context) {
	stats, err := h.progress.GetUserStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"stats": stats})
}

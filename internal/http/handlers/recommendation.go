package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pathwise/pathwise-backend/internal/http/middleware"
	"github.com/pathwise/pathwise-backend/internal/http/response"
	"github.com/pathwise/pathwise-backend/internal/services"
)

type RecommendationHandler struct {
	recs services.RecommendationService
}

func NewRecommendationHandler(recs services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recs: recs}
}

// GET /api/recommendations
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	result, err := h.recs.RecommendNext(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pathwise/pathwise-backend/internal/http/middleware"
	"github.com/pathwise/pathwise-backend/internal/http/response"
	"github.com/pathwise/pathwise-backend/internal/services"
)

type AchievementHandler struct {
	achievements services.AchievementService
}

func NewAchievementHandler(achievements services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

// GET /api/achievements
func (h *AchievementHandler) ListAchievements(c *gin.Context) {
	summary, err := h.achievements.ListUserAchievements(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// POST /api/achievements/check
func (h *AchievementHandler) CheckAchievements(c *gin.Context) {
	awarded, err := h.achievements.CheckAndAward(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if awarded == nil {
		awarded = []services.EarnedAchievement{}
	}
	response.OK(c, gin.H{"newly_earned": awarded})
}

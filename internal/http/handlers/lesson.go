package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/http/response"
	"github.com/pathwise/pathwise-backend/internal/services"
)

type LessonHandler struct {
	lessons services.LessonService
}

func NewLessonHandler(lessons services.LessonService) *LessonHandler {
	return &LessonHandler{lessons: lessons}
}

// GET /api/concepts/:id/lesson
func (h *LessonHandler) GetLesson(c *gin.Context) {
	conceptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid concept id")
		return
	}
	difficulty := domain.Difficulty(c.Query("difficulty"))

	lesson, err := h.lessons.GetOrGenerateLesson(c.Request.Context(), conceptID, difficulty)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"lesson": lesson})
}

// POST /api/concepts/:id/lesson/regenerate
func (h *LessonHandler) RegenerateLesson(c *gin.Context) {
	conceptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid concept id")
		return
	}
	difficulty := domain.Difficulty(c.Query("difficulty"))

	lesson, err := h.lessons.RegenerateLesson(c.Request.Context(), conceptID, difficulty)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"lesson": lesson})
}

package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/http/middleware"
	"github.com/pathwise/pathwise-backend/internal/http/response"
	"github.com/pathwise/pathwise-backend/internal/services"
)

func optionsJSON(options []string) (datatypes.JSON, error) {
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

type QuizHandler struct {
	quizzes services.QuizService
}

func NewQuizHandler(quizzes services.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

type createQuizRequest struct {
	ConceptID    string  `json:"concept_id"`
	Title        string  `json:"title" binding:"required"`
	PassingScore float64 `json:"passing_score"`
	MaxAttempts  int     `json:"max_attempts"`
	Questions    []struct {
		Prompt        string   `json:"prompt" binding:"required"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer" binding:"required"`
	} `json:"questions" binding:"required"`
}

// POST /api/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	quiz := &domain.Quiz{
		Title:        req.Title,
		PassingScore: req.PassingScore,
		MaxAttempts:  req.MaxAttempts,
	}
	if quiz.PassingScore == 0 {
		quiz.PassingScore = 0.7
	}
	if req.ConceptID != "" {
		conceptID, err := uuid.Parse(req.ConceptID)
		if err != nil {
			response.BadRequest(c, "invalid concept_id")
			return
		}
		quiz.ConceptID = &conceptID
	}
	questions := make([]*domain.QuizQuestion, 0, len(req.Questions))
	for _, q := range req.Questions {
		row := &domain.QuizQuestion{Prompt: q.Prompt, CorrectAnswer: q.CorrectAnswer}
		if len(q.Options) > 0 {
			raw, err := optionsJSON(q.Options)
			if err != nil {
				response.BadRequest(c, "invalid question options")
				return
			}
			row.Options = raw
		}
		questions = append(questions, row)
	}
	created, err := h.quizzes.CreateQuiz(c.Request.Context(), quiz, questions)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"quiz": created})
}

// GET /api/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid quiz id")
		return
	}
	quiz, questions, err := h.quizzes.GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"quiz": quiz, "questions": questions})
}

// POST /api/quizzes/:id/attempts
func (h *QuizHandler) StartAttempt(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid quiz id")
		return
	}
	attempt, err := h.quizzes.StartAttempt(c.Request.Context(), middleware.UserID(c), quizID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"attempt": attempt})
}

type submitAttemptRequest struct {
	Responses map[string]string `json:"responses" binding:"required"`
}

// POST /api/attempts/:id/submit
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attempt id")
		return
	}
	var req submitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.quizzes.SubmitAttempt(c.Request.Context(), middleware.UserID(c), attemptID, req.Responses)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// GET /api/quizzes/:id/attempts
func (h *QuizHandler) ListAttempts(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid quiz id")
		return
	}
	attempts, err := h.quizzes.ListAttempts(c.Request.Context(), middleware.UserID(c), quizID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"attempts": attempts})
}

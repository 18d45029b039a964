package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/pathwise/pathwise-backend/internal/http/handlers"
	httpMW "github.com/pathwise/pathwise-backend/internal/http/middleware"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	ConceptHandler        *httpH.ConceptHandler
	LessonHandler         *httpH.LessonHandler
	PathHandler           *httpH.PathHandler
	ProgressHandler       *httpH.ProgressHandler
	RecommendationHandler *httpH.RecommendationHandler
	QuizHandler           *httpH.QuizHandler
	AchievementHandler    *httpH.AchievementHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware("pathwise-backend"))
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Concepts and the knowledge graph
		if cfg.ConceptHandler != nil {
			protected.POST("/concepts", cfg.ConceptHandler.CreateConcept)
			protected.GET("/concepts", cfg.ConceptHandler.ListConcepts)
			protected.GET("/concepts/:id", cfg.ConceptHandler.GetConcept)
			protected.GET("/concepts/:id/prerequisites", cfg.ConceptHandler.GetPrerequisites)
			protected.GET("/concepts/:id/dependents", cfg.ConceptHandler.GetDependents)
			protected.GET("/concepts/:id/related", cfg.ConceptHandler.GetRelated)
			protected.POST("/edges", cfg.ConceptHandler.CreateEdge)
			protected.POST("/graph/sync", cfg.ConceptHandler.SyncGraph)
		}

		// Lessons
		if cfg.LessonHandler != nil {
			protected.GET("/concepts/:id/lesson", cfg.LessonHandler.GetLesson)
			protected.POST("/concepts/:id/lesson/regenerate", cfg.LessonHandler.RegenerateLesson)
		}

		// Learning paths
		if cfg.PathHandler != nil {
			protected.GET("/paths", cfg.PathHandler.ListPaths)
			protected.GET("/paths/:id", cfg.PathHandler.GetPath)
			protected.POST("/paths", cfg.PathHandler.CreatePath)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.POST("/progress/concepts/:id", cfg.ProgressHandler.UpdateConceptProgress)
			protected.POST("/progress/contents/:id", cfg.ProgressHandler.UpdateContentProgress)
			protected.GET("/progress", cfg.ProgressHandler.GetConceptProgress)
			protected.GET("/progress/stats", cfg.ProgressHandler.GetStats)
		}

		// Recommendations
		if cfg.RecommendationHandler != nil {
			protected.GET("/recommendations", cfg.RecommendationHandler.GetRecommendations)
		}

		// Quizzes
		if cfg.QuizHandler != nil {
			protected.POST("/quizzes", cfg.QuizHandler.CreateQuiz)
			protected.GET("/quizzes/:id", cfg.QuizHandler.GetQuiz)
			protected.POST("/quizzes/:id/attempts", cfg.QuizHandler.StartAttempt)
			protected.GET("/quizzes/:id/attempts", cfg.QuizHandler.ListAttempts)
			protected.POST("/attempts/:id/submit", cfg.QuizHandler.SubmitAttempt)
		}

		// Achievements
		if cfg.AchievementHandler != nil {
			protected.GET("/achievements", cfg.AchievementHandler.ListAchievements)
			protected.POST("/achievements/check", cfg.AchievementHandler.CheckAchievements)
		}
	}

	return r
}

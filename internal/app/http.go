package app

import (
	"github.com/gin-gonic/gin"

	"github.com/pathwise/pathwise-backend/internal/http"
	httpH "github.com/pathwise/pathwise-backend/internal/http/handlers"
	httpMW "github.com/pathwise/pathwise-backend/internal/http/middleware"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health         *httpH.HealthHandler
	Concept        *httpH.ConceptHandler
	Lesson         *httpH.LessonHandler
	Path           *httpH.PathHandler
	Progress       *httpH.ProgressHandler
	Recommendation *httpH.RecommendationHandler
	Quiz           *httpH.QuizHandler
	Achievement    *httpH.AchievementHandler
}

func wireHandlers(log *logger.Logger, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:         httpH.NewHealthHandler(),
		Concept:        httpH.NewConceptHandler(svcs.Graph),
		Lesson:         httpH.NewLessonHandler(svcs.Lesson),
		Path:           httpH.NewPathHandler(svcs.Graph, svcs.PathComposer),
		Progress:       httpH.NewProgressHandler(svcs.Progress),
		Recommendation: httpH.NewRecommendationHandler(svcs.Recommendation),
		Quiz:           httpH.NewQuizHandler(svcs.Quiz),
		Achievement:    httpH.NewAchievementHandler(svcs.Achievement),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		AuthMiddleware: middleware.Auth,

		ConceptHandler:        handlers.Concept,
		LessonHandler:         handlers.Lesson,
		PathHandler:           handlers.Path,
		ProgressHandler:       handlers.Progress,
		RecommendationHandler: handlers.Recommendation,
		QuizHandler:           handlers.Quiz,
		AchievementHandler:    handlers.Achievement,

		HealthHandler: handlers.Health,
	})
}

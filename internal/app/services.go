package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/data/graph"
	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/services"
)

type Services struct {
	Graph          services.GraphService
	Progress       services.ProgressService
	PathComposer   services.PathComposerService
	Recommendation services.RecommendationService
	Lesson         services.LessonService
	Achievement    services.AchievementService
	Quiz           services.QuizService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	clock := services.SystemClock()

	graphService := services.NewGraphService(db, log, clients.Neo4j, repos.Concept, repos.ConceptEdge, repos.LearningPath)
	progressService := services.NewProgressService(
		db, log,
		repos.ConceptProgress,
		repos.ContentProgress,
		repos.Concept,
		repos.QuizAttempt,
		clock,
		cfg.StreakLocation,
	)
	pathComposer := services.NewPathComposer(log, clients.Redis, repos.LearningPath, repos.Concept, repos.ConceptProgress, cfg.PathViewCacheTTL)
	recommendationService := services.NewRecommendationService(log, graphService, repos.Concept, repos.ConceptProgress)
	lessonService := services.NewLessonService(
		log,
		repos.ConceptLesson,
		graphService,
		services.NewAILessonGenerator(clients.OpenAI),
		clock,
		cfg.LessonGenerateWait,
	)
	achievementService := services.NewAchievementService(log, repos.UserAchievement, progressService, clock)
	quizService := services.NewQuizService(db, log, repos.Quiz, repos.QuizAttempt, clock)

	return Services{
		Graph:          graphService,
		Progress:       progressService,
		PathComposer:   pathComposer,
		Recommendation: recommendationService,
		Lesson:         lessonService,
		Achievement:    achievementService,
		Quiz:           quizService,
	}
}

// wireSubscribers connects the progress change feed to its consumers: cache
// invalidation, achievement evaluation, and the graph progress projection.
// All of them are idempotent, so a replayed event is harmless.
func wireSubscribers(log *logger.Logger, svcs Services, clients Clients) {
	svcs.Progress.Subscribe(func(ctx context.Context, ev domain.ConceptProgressChanged) {
		svcs.PathComposer.InvalidateUser(ctx, ev.UserID)

		if _, err := svcs.Achievement.CheckAndAward(ctx, ev.UserID); err != nil {
			log.Warn("achievement check after progress change failed", "user_id", ev.UserID, "error", err)
		}

		if clients.Neo4j.Available() {
			rows := []*domain.ConceptProgress{&ev.New}
			if err := graph.UpsertUserProgress(ctx, clients.Neo4j, log, ev.UserID, rows); err != nil {
				log.Warn("graph progress projection failed", "user_id", ev.UserID, "error", err)
			}
		}
	})
}

package app

import (
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/data/repos/learning"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type Repos struct {
	Concept         learning.ConceptRepo
	ConceptEdge     learning.ConceptEdgeRepo
	ConceptLesson   learning.ConceptLessonRepo
	LearningPath    learning.LearningPathRepo
	ConceptProgress learning.ConceptProgressRepo
	ContentProgress learning.ContentProgressRepo
	Quiz            learning.QuizRepo
	QuizAttempt     learning.QuizAttemptRepo
	UserAchievement learning.UserAchievementRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Concept:         learning.NewConceptRepo(db, log),
		ConceptEdge:     learning.NewConceptEdgeRepo(db, log),
		ConceptLesson:   learning.NewConceptLessonRepo(db, log),
		LearningPath:    learning.NewLearningPathRepo(db, log),
		ConceptProgress: learning.NewConceptProgressRepo(db, log),
		ContentProgress: learning.NewContentProgressRepo(db, log),
		Quiz:            learning.NewQuizRepo(db, log),
		QuizAttempt:     learning.NewQuizAttemptRepo(db, log),
		UserAchievement: learning.NewUserAchievementRepo(db, log),
	}
}

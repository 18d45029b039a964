package services

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/data/repos/learning"
	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type QuestionFeedback struct {
	QuestionID uuid.UUID `json:"question_id"`
	Prompt     string    `json:"prompt"`
	Correct    bool      `json:"correct"`
}

type AttemptResult struct {
	Attempt      *domain.QuizAttempt `json:"attempt"`
	Strengths    []QuestionFeedback  `json:"strengths"`
	Improvements []QuestionFeedback  `json:"improvements"`
	Overall      string              `json:"overall"`
}

type QuizService interface {
	CreateQuiz(ctx context.Context, quiz *domain.Quiz, questions []*domain.QuizQuestion) (*domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID uuid.UUID) (*domain.Quiz, []*domain.QuizQuestion, error)

	// StartAttempt opens the next numbered attempt. Exhausted attempts are a
	// Conflict.
	StartAttempt(ctx context.Context, userID, quizID uuid.UUID) (*domain.QuizAttempt, error)

	// SubmitAttempt scores an open attempt exactly once; re-submission is a
	// Conflict.
	SubmitAttempt(ctx context.Context, userID, attemptID uuid.UUID, responses map[string]string) (*AttemptResult, error)

	ListAttempts(ctx context.Context, userID, quizID uuid.UUID) ([]*domain.QuizAttempt, error)
}

type quizService struct {
	db  *gorm.DB
	log *logger.Logger

	quizzes  learning.QuizRepo
	attempts learning.QuizAttemptRepo
	clock    Clock

	// locks serializes start/submit per (user, quiz) so attempt numbering and
	// once-only submission hold under concurrency. Striped, so the table
	// stays bounded no matter how many pairs are touched.
	locks [lockStripes]sync.Mutex
}

func NewQuizService(
	db *gorm.DB,
	baseLog *logger.Logger,
	quizzes learning.QuizRepo,
	attempts learning.QuizAttemptRepo,
	clock Clock,
) QuizService {
	if clock == nil {
		clock = SystemClock()
	}
	return &quizService{
		db:       db,
		log:      baseLog.With("service", "QuizService"),
		quizzes:  quizzes,
		attempts: attempts,
		clock:    clock,
	}
}

func (s *quizService) lockKey(userID, quizID uuid.UUID) func() {
	h := fnv.New32a()
	h.Write(userID[:])
	h.Write(quizID[:])
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *quizService) CreateQuiz(ctx context.Context, quiz *domain.Quiz, questions []*domain.QuizQuestion) (*domain.Quiz, error) {
	if quiz == nil || quiz.Title == "" {
		return nil, apierr.InvalidArgument("quiz title is required")
	}
	if quiz.PassingScore < 0 || quiz.PassingScore > 1 {
		return nil, apierr.InvalidArgument("passing_score must be within [0,1]")
	}
	if len(questions) == 0 {
		return nil, apierr.InvalidArgument("a quiz needs at least one question")
	}
	for i, q := range questions {
		if q == nil || q.Prompt == "" || q.CorrectAnswer == "" {
			return nil, apierr.InvalidArgument("question %d needs a prompt and a correct answer", i+1)
		}
		q.SortIndex = i
	}
	if err := s.quizzes.Create(ctx, nil, quiz, questions); err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "create quiz")
	}
	return quiz, nil
}

func (s *quizService) GetQuiz(ctx context.Context, quizID uuid.UUID) (*domain.Quiz, []*domain.QuizQuestion, error) {
	quiz, err := s.quizzes.GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load quiz")
	}
	if quiz == nil {
		return nil, nil, apierr.NotFound("quiz not found")
	}
	questions, err := s.quizzes.GetQuestions(ctx, nil, quizID)
	if err != nil {
		return nil, nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load quiz questions")
	}
	return quiz, questions, nil
}

func (s *quizService) StartAttempt(ctx context.Context, userID, quizID uuid.UUID) (*domain.QuizAttempt, error) {
	if userID == uuid.Nil || quizID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id and quiz_id are required")
	}
	quiz, err := s.quizzes.GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load quiz")
	}
	if quiz == nil {
		return nil, apierr.NotFound("quiz not found")
	}

	unlock := s.lockKey(userID, quizID)
	defer unlock()

	prior, err := s.attempts.GetByUserAndQuiz(ctx, nil, userID, quizID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load attempts")
	}
	next := 1
	if n := len(prior); n > 0 {
		next = prior[n-1].AttemptNumber + 1
	}
	if quiz.MaxAttempts > 0 && next > quiz.MaxAttempts {
		return nil, apierr.Conflict("all %d attempts used for this quiz", quiz.MaxAttempts)
	}

	attempt := &domain.QuizAttempt{
		UserID:        userID,
		QuizID:        quizID,
		AttemptNumber: next,
		Status:        domain.AttemptInProgress,
		StartedAt:     s.clock.Now(),
	}
	if err := s.attempts.Create(ctx, nil, attempt); err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "create attempt")
	}
	return attempt, nil
}

// scoreSubmission is the pure scoring core: exact match against the stored
// answer, question order preserved in the feedback buckets.
func scoreSubmission(questions []*domain.QuizQuestion, responses map[string]string) (score int, strengths, improvements []QuestionFeedback) {
	for _, q := range questions {
		fb := QuestionFeedback{QuestionID: q.ID, Prompt: q.Prompt}
		if responses[q.ID.String()] == q.CorrectAnswer {
			fb.Correct = true
			score++
			strengths = append(strengths, fb)
		} else {
			improvements = append(improvements, fb)
		}
	}
	return score, strengths, improvements
}

func overallMessage(percentage float64) string {
	switch {
	case percentage >= 0.9:
		return "Excellent work! You have a strong grasp of this material."
	case percentage >= 0.8:
		return "Great job! A quick review of the missed questions will get you to mastery."
	case percentage >= 0.7:
		return "Good effort. Revisit the topics you missed before moving on."
	default:
		return "Keep practicing. Work back through the lesson and try again."
	}
}

func (s *quizService) SubmitAttempt(ctx context.Context, userID, attemptID uuid.UUID, responses map[string]string) (*AttemptResult, error) {
	if userID == uuid.Nil || attemptID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id and attempt_id are required")
	}

	attempt, err := s.attempts.GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load attempt")
	}
	if attempt == nil || attempt.UserID != userID {
		return nil, apierr.NotFound("attempt not found")
	}

	unlock := s.lockKey(userID, attempt.QuizID)
	defer unlock()

	// Re-read under the lock; a concurrent submit may have completed it.
	attempt, err = s.attempts.GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load attempt")
	}
	if attempt == nil || attempt.UserID != userID {
		return nil, apierr.NotFound("attempt not found")
	}
	if attempt.Status != domain.AttemptInProgress {
		return nil, apierr.Conflict("attempt %d has already been submitted", attempt.AttemptNumber)
	}

	quiz, err := s.quizzes.GetByID(ctx, nil, attempt.QuizID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load quiz")
	}
	if quiz == nil {
		return nil, apierr.NotFound("quiz not found")
	}
	questions, err := s.quizzes.GetQuestions(ctx, nil, attempt.QuizID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load quiz questions")
	}

	score, strengths, improvements := scoreSubmission(questions, responses)
	maxScore := len(questions)
	percentage := 0.0
	if maxScore > 0 {
		percentage = float64(score) / float64(maxScore)
	}

	rawResponses, err := json.Marshal(responses)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, err, "encode responses")
	}

	now := s.clock.Now()
	attempt.Status = domain.AttemptCompleted
	attempt.Responses = datatypes.JSON(rawResponses)
	attempt.Score = score
	attempt.MaxScore = maxScore
	attempt.Percentage = percentage
	attempt.Passed = percentage >= quiz.PassingScore
	attempt.CompletedAt = &now
	attempt.UpdatedAt = now

	if err := s.attempts.Update(ctx, nil, attempt); err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "store attempt")
	}

	if err := s.recomputeAggregates(ctx, attempt.QuizID); err != nil {
		s.log.Warn("quiz aggregate update failed", "quiz_id", attempt.QuizID, "error", err)
	}

	s.log.Info("quiz attempt submitted",
		"user_id", userID, "quiz_id", attempt.QuizID,
		"attempt", attempt.AttemptNumber, "score", fmt.Sprintf("%d/%d", score, maxScore),
		"passed", attempt.Passed)

	return &AttemptResult{
		Attempt:      attempt,
		Strengths:    strengths,
		Improvements: improvements,
		Overall:      overallMessage(percentage),
	}, nil
}

func (s *quizService) recomputeAggregates(ctx context.Context, quizID uuid.UUID) error {
	all, err := s.attempts.GetByQuiz(ctx, nil, quizID)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return nil
	}
	completed := 0
	var sum float64
	for _, a := range all {
		if a.Status == domain.AttemptCompleted {
			completed++
			sum += a.Percentage
		}
	}
	avg := 0.0
	if completed > 0 {
		avg = sum / float64(completed)
	}
	rate := float64(completed) / float64(len(all))
	return s.quizzes.UpdateAggregates(ctx, nil, quizID, avg, rate)
}

func (s *quizService) ListAttempts(ctx context.Context, userID, quizID uuid.UUID) ([]*domain.QuizAttempt, error) {
	if userID == uuid.Nil || quizID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id and quiz_id are required")
	}
	rows, err := s.attempts.GetByUserAndQuiz(ctx, nil, userID, quizID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load attempts")
	}
	return rows, nil
}

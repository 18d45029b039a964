package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/data/repos/testutil"
	"github.com/pathwise/pathwise-backend/internal/domain"
)

func TestQuizRepoCreateWithQuestions(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewQuizRepo(gdb, testutil.Logger(t))
	ctx := context.Background()

	quiz := &domain.Quiz{Title: "Goroutines Check", PassingScore: 0.7, MaxAttempts: 3}
	questions := []*domain.QuizQuestion{
		{Prompt: "What starts a goroutine?", CorrectAnswer: "go", SortIndex: 0},
		{Prompt: "What synchronizes goroutines?", CorrectAnswer: "channels", SortIndex: 1},
	}
	if err := repo.Create(ctx, tx, quiz, questions); err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.ID == uuid.Nil {
		t.Fatal("quiz id not assigned")
	}

	got, err := repo.GetByID(ctx, tx, quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Title != "Goroutines Check" {
		t.Fatalf("unexpected quiz: %+v", got)
	}

	qs, err := repo.GetQuestions(ctx, tx, quiz.ID)
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].SortIndex > qs[1].SortIndex {
		t.Fatalf("questions not ordered by sort index: %+v", qs)
	}
}

func TestQuizRepoUpdateAggregates(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewQuizRepo(gdb, testutil.Logger(t))
	ctx := context.Background()

	quiz := &domain.Quiz{Title: "Aggregates"}
	if err := repo.Create(ctx, tx, quiz, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.UpdateAggregates(ctx, tx, quiz.ID, 0.85, 0.5); err != nil {
		t.Fatalf("update aggregates: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AverageScore != 0.85 || got.CompletionRate != 0.5 {
		t.Fatalf("aggregates not persisted: %+v", got)
	}
}

func TestQuizAttemptRepoLifecycle(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	quizzes := NewQuizRepo(gdb, testutil.Logger(t))
	attempts := NewQuizAttemptRepo(gdb, testutil.Logger(t))
	ctx := context.Background()

	quiz := &domain.Quiz{Title: "Attempts"}
	if err := quizzes.Create(ctx, tx, quiz, nil); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	userID := uuid.New()

	first := &domain.QuizAttempt{
		UserID:        userID,
		QuizID:        quiz.ID,
		AttemptNumber: 1,
		Status:        domain.AttemptInProgress,
		StartedAt:     time.Now().UTC(),
	}
	if err := attempts.Create(ctx, tx, first); err != nil {
		t.Fatalf("create attempt: %v", err)
	}

	done := time.Now().UTC()
	first.Status = domain.AttemptCompleted
	first.Score = 3
	first.MaxScore = 4
	first.Percentage = 0.75
	first.Passed = true
	first.CompletedAt = &done
	if err := attempts.Update(ctx, tx, first); err != nil {
		t.Fatalf("update attempt: %v", err)
	}

	got, err := attempts.GetByID(ctx, tx, first.ID)
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if got.Status != domain.AttemptCompleted || got.Percentage != 0.75 || got.CompletedAt == nil {
		t.Fatalf("attempt not updated: %+v", got)
	}

	completed, err := attempts.GetCompletedByUser(ctx, tx, userID)
	if err != nil {
		t.Fatalf("get completed: %v", err)
	}
	if len(completed) != 1 {
		t.Fatalf("expected 1 completed attempt, got %d", len(completed))
	}

	byQuiz, err := attempts.GetByUserAndQuiz(ctx, tx, userID, quiz.ID)
	if err != nil {
		t.Fatalf("get by user and quiz: %v", err)
	}
	if len(byQuiz) != 1 || byQuiz[0].AttemptNumber != 1 {
		t.Fatalf("unexpected attempts: %+v", byQuiz)
	}
}

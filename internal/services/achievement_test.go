package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/domain"
)

func TestAchievementProgressScalar(t *testing.T) {
	def := AchievementDef{
		Requirements: []StatRequirement{{Stat: StatCompletedConcepts, Threshold: 10}},
	}
	cases := []struct {
		completed int
		want      float64
	}{
		{0, 0},
		{5, 0.5},
		{10, 1},
		{40, 1},
	}
	for _, tc := range cases {
		stats := &domain.UserStats{CompletedConcepts: tc.completed, DomainConcepts: map[string]int{}}
		if got := achievementProgress(def, stats); got != tc.want {
			t.Fatalf("progress with %d completed = %v, want %v", tc.completed, got, tc.want)
		}
	}
}

func TestAchievementProgressScalarAlternativesTakeMax(t *testing.T) {
	def := AchievementDef{
		Requirements: []StatRequirement{
			{Stat: StatCompletedConcepts, Threshold: 10},
			{Stat: StatQuizzesCompleted, Threshold: 4},
		},
	}
	stats := &domain.UserStats{CompletedConcepts: 2, QuizzesCompleted: 3, DomainConcepts: map[string]int{}}
	if got := achievementProgress(def, stats); got != 0.75 {
		t.Fatalf("progress = %v, want 0.75 (max of 0.2 and 0.75)", got)
	}
}

func TestAchievementProgressCompoundTakesMean(t *testing.T) {
	def := AchievementDef{
		DomainCounts: map[string]int{"programming": 4, "mathematics": 4},
	}
	stats := &domain.UserStats{DomainConcepts: map[string]int{"programming": 4, "mathematics": 2}}
	if got := achievementProgress(def, stats); got != 0.75 {
		t.Fatalf("progress = %v, want 0.75 (mean of 1.0 and 0.5)", got)
	}
}

func TestCheckAndAwardIdempotent(t *testing.T) {
	userID := uuid.New()
	repo := newFakeAchievementRepo()
	progress := &fakeStats{stats: domain.UserStats{CompletedConcepts: 1}}
	svc := NewAchievementService(testLogger(), repo, progress, newFakeClock(time.Now()))

	first, err := svc.CheckAndAward(context.Background(), userID)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if len(first) != 1 || first[0].Type != "first_concept_completion" {
		t.Fatalf("first check awarded %v, want only first_concept_completion", first)
	}

	second, err := svc.CheckAndAward(context.Background(), userID)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second check with unchanged stats awarded %d achievements", len(second))
	}
}

func TestCheckAndAwardMultiple(t *testing.T) {
	userID := uuid.New()
	repo := newFakeAchievementRepo()
	progress := &fakeStats{stats: domain.UserStats{
		CompletedConcepts:  12,
		TotalTimeMinutes:   700,
		PerfectQuizScores:  1,
		LearningStreakDays: 7,
	}}
	svc := NewAchievementService(testLogger(), repo, progress, newFakeClock(time.Now()))

	awarded, err := svc.CheckAndAward(context.Background(), userID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	got := map[string]bool{}
	for _, a := range awarded {
		got[a.Type] = true
	}
	for _, want := range []string{"first_concept_completion", "concept_master", "time_investor", "consistent_learner", "perfect_scorer"} {
		if !got[want] {
			t.Fatalf("missing %s in %v", want, awarded)
		}
	}
	if got["knowledge_seeker"] {
		t.Fatal("knowledge_seeker awarded at 12 completions, needs 25")
	}
}

func TestListUserAchievementsCountsFullCatalog(t *testing.T) {
	userID := uuid.New()
	repo := newFakeAchievementRepo()
	progress := &fakeStats{stats: domain.UserStats{CompletedConcepts: 1}}
	svc := NewAchievementService(testLogger(), repo, progress, newFakeClock(time.Now()))

	if _, err := svc.CheckAndAward(context.Background(), userID); err != nil {
		t.Fatalf("award: %v", err)
	}

	summary, err := svc.ListUserAchievements(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if summary.TotalCount != len(AchievementCatalog()) {
		t.Fatalf("total = %d, want the full catalog %d", summary.TotalCount, len(AchievementCatalog()))
	}
	if summary.EarnedCount != 1 {
		t.Fatalf("earned = %d, want 1", summary.EarnedCount)
	}
	want := 100 * float64(1) / float64(summary.TotalCount)
	if summary.CompletionPercent != want {
		t.Fatalf("completion = %v, want %v", summary.CompletionPercent, want)
	}

	var sawEarned bool
	for _, st := range summary.Achievements {
		if st.Type == "first_concept_completion" {
			if !st.Earned || st.Progress != 1 {
				t.Fatalf("earned entry not marked: %+v", st)
			}
			sawEarned = true
		}
	}
	if !sawEarned {
		t.Fatal("earned achievement missing from summary")
	}
}

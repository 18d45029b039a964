package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
)

func f64(v float64) *float64 { return &v }

func TestMergeConceptProgressMonotone(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cur := domain.ConceptProgress{
		Status:           domain.StatusInProgress,
		ProgressPercent:  60,
		TimeSpentMinutes: 30,
	}

	// A stale, lower observation must not move anything backwards.
	next := mergeConceptProgress(cur, ConceptProgressDelta{
		Status:          domain.StatusNotStarted,
		ProgressPercent: f64(20),
		TimeSpentDelta:  5,
	}, now)

	if next.Status != domain.StatusInProgress {
		t.Fatalf("status regressed to %s", next.Status)
	}
	if next.ProgressPercent != 60 {
		t.Fatalf("percent regressed to %v", next.ProgressPercent)
	}
	if next.TimeSpentMinutes != 35 {
		t.Fatalf("time not accumulated: %d", next.TimeSpentMinutes)
	}
	if next.LastAccessedAt == nil || !next.LastAccessedAt.Equal(now) {
		t.Fatalf("last_accessed_at not set to now: %v", next.LastAccessedAt)
	}
}

func TestMergeConceptProgressCompletionCoupling(t *testing.T) {
	now := time.Now()

	next := mergeConceptProgress(domain.ConceptProgress{Status: domain.StatusInProgress, ProgressPercent: 40},
		ConceptProgressDelta{Status: domain.StatusCompleted}, now)
	if next.ProgressPercent != 100 {
		t.Fatalf("completed status should force percent 100, got %v", next.ProgressPercent)
	}

	next = mergeConceptProgress(domain.ConceptProgress{Status: domain.StatusInProgress},
		ConceptProgressDelta{ProgressPercent: f64(100)}, now)
	if next.Status != domain.StatusCompleted {
		t.Fatalf("percent 100 should force completed, got %s", next.Status)
	}

	next = mergeConceptProgress(domain.ConceptProgress{Status: domain.StatusNotStarted},
		ConceptProgressDelta{TimeSpentDelta: 1}, now)
	if next.Status != domain.StatusInProgress {
		t.Fatalf("activity should move not_started to in_progress, got %s", next.Status)
	}
}

func TestMergeConceptProgressIdempotentReplay(t *testing.T) {
	now := time.Now()
	delta := ConceptProgressDelta{Status: domain.StatusCompleted, ProgressPercent: f64(100)}

	once := mergeConceptProgress(domain.ConceptProgress{}, delta, now)
	twice := mergeConceptProgress(once, delta, now)

	if twice.Status != once.Status || twice.ProgressPercent != once.ProgressPercent || twice.TimeSpentMinutes != once.TimeSpentMinutes {
		t.Fatalf("replaying the same delta changed the row: %+v vs %+v", once, twice)
	}
}

func TestConceptProgressDeltaValidation(t *testing.T) {
	cases := []struct {
		name  string
		delta ConceptProgressDelta
	}{
		{"negative time", ConceptProgressDelta{TimeSpentDelta: -1}},
		{"percent over 100", ConceptProgressDelta{ProgressPercent: f64(101)}},
		{"negative percent", ConceptProgressDelta{ProgressPercent: f64(-1)}},
		{"unknown status", ConceptProgressDelta{Status: "finished"}},
		{"mastered on concept", ConceptProgressDelta{Status: domain.StatusMastered}},
	}
	for _, tc := range cases {
		if err := tc.delta.validate(); !apierr.IsKind(err, apierr.KindInvalidArgument) {
			t.Fatalf("%s: expected invalid_argument, got %v", tc.name, err)
		}
	}
	if err := (ConceptProgressDelta{Status: domain.StatusCompleted, ProgressPercent: f64(100), TimeSpentDelta: 10}).validate(); err != nil {
		t.Fatalf("valid delta rejected: %v", err)
	}
}

func TestMergeContentProgressAttemptsAndBestScore(t *testing.T) {
	now := time.Now()
	cur := domain.ContentProgress{Attempts: 2, BestScore: 0.8}

	next := mergeContentProgress(cur, ContentProgressDelta{Score: f64(0.6)}, now)
	if next.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", next.Attempts)
	}
	if next.BestScore != 0.8 {
		t.Fatalf("best score regressed to %v", next.BestScore)
	}

	next = mergeContentProgress(next, ContentProgressDelta{Score: f64(0.95)}, now)
	if next.BestScore != 0.95 {
		t.Fatalf("best score not raised: %v", next.BestScore)
	}
	if next.FirstAccessedAt == nil {
		t.Fatal("first_accessed_at not set")
	}
}

func TestComputeStreak(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, loc)
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	cases := []struct {
		name     string
		activity []time.Time
		want     int
	}{
		{"no activity", nil, 0},
		{"only today", []time.Time{day(0)}, 1},
		{"three day run", []time.Time{day(0), day(-1), day(-2)}, 3},
		{"gap breaks the run", []time.Time{day(0), day(-1), day(-3), day(-4)}, 2},
		{"nothing today", []time.Time{day(-1), day(-2)}, 0},
		{"duplicates in one day", []time.Time{day(0), day(0).Add(2 * time.Hour), day(-1)}, 2},
	}
	for _, tc := range cases {
		if got := computeStreak(tc.activity, now, loc); got != tc.want {
			t.Fatalf("%s: streak = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestComputeStreakRespectsLocation(t *testing.T) {
	// 01:00 UTC on June 10 is still June 9 in UTC-5; activity late on June 9
	// UTC-5 must count as "today" there.
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	activity := []time.Time{time.Date(2025, 6, 9, 23, 0, 0, 0, time.UTC)}

	if got := computeStreak(activity, now, loc); got != 1 {
		t.Fatalf("streak in UTC-5 = %d, want 1", got)
	}
	if got := computeStreak(activity, now, time.UTC); got != 0 {
		t.Fatalf("streak in UTC = %d, want 0 (activity was yesterday)", got)
	}
}

func TestUpdateConceptProgressConcurrentDeltas(t *testing.T) {
	concepts := make([]*domain.Concept, 5)
	for i := range concepts {
		concepts[i] = &domain.Concept{ID: uuid.New(), Slug: uuid.NewString(), Name: "Concept"}
	}
	repo := newFakeConceptProgressRepo()
	svc := NewProgressService(nil, testLogger(), repo, nil, newFakeConceptRepo(concepts...), newFakeAttemptRepo(), nil, nil)

	userID := uuid.New()
	const writersPerConcept = 20
	var wg sync.WaitGroup
	for _, c := range concepts {
		for i := 0; i < writersPerConcept; i++ {
			wg.Add(1)
			go func(conceptID uuid.UUID) {
				defer wg.Done()
				if _, err := svc.UpdateConceptProgress(context.Background(), userID, conceptID, ConceptProgressDelta{TimeSpentDelta: 1}); err != nil {
					t.Errorf("update: %v", err)
				}
			}(c.ID)
		}
	}
	wg.Wait()

	for _, c := range concepts {
		row, err := repo.GetByUserAndConcept(context.Background(), nil, userID, c.ID)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if row == nil || row.TimeSpentMinutes != writersPerConcept {
			t.Fatalf("deltas lost under concurrency: got %+v, want %d minutes", row, writersPerConcept)
		}
	}
}

func TestUpdateConceptProgressUnknownConcept(t *testing.T) {
	svc := NewProgressService(nil, testLogger(), newFakeConceptProgressRepo(), nil, newFakeConceptRepo(), newFakeAttemptRepo(), nil, nil)

	_, err := svc.UpdateConceptProgress(context.Background(), uuid.New(), uuid.New(), ConceptProgressDelta{TimeSpentDelta: 5})
	if !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("expected not_found for unknown concept, got %v", err)
	}
}

func TestUpdateConceptProgressRejectsBadDelta(t *testing.T) {
	svc := NewProgressService(nil, testLogger(), newFakeConceptProgressRepo(), nil, newFakeConceptRepo(), newFakeAttemptRepo(), nil, nil)

	_, err := svc.UpdateConceptProgress(context.Background(), uuid.New(), uuid.New(), ConceptProgressDelta{TimeSpentDelta: -10})
	if !apierr.IsKind(err, apierr.KindInvalidArgument) {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
}

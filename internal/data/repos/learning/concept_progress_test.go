package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/data/repos/testutil"
	"github.com/pathwise/pathwise-backend/internal/domain"
)

func TestConceptProgressRepoUpsert(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewConceptProgressRepo(gdb, testutil.Logger(t))
	ctx := context.Background()

	userID := uuid.New()
	conceptID := uuid.New()

	now := time.Now().UTC()
	row := &domain.ConceptProgress{
		UserID:           userID,
		ConceptID:        conceptID,
		Status:           domain.StatusInProgress,
		ProgressPercent:  40,
		TimeSpentMinutes: 10,
		LastAccessedAt:   &now,
	}
	if err := repo.Upsert(ctx, tx, row); err != nil {
		t.Fatalf("insert: %v", err)
	}

	row.Status = domain.StatusCompleted
	row.ProgressPercent = 100
	row.TimeSpentMinutes = 25
	if err := repo.Upsert(ctx, tx, row); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByUserAndConcept(ctx, tx, userID, conceptID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected a row")
	}
	if got.Status != domain.StatusCompleted || got.ProgressPercent != 100 || got.TimeSpentMinutes != 25 {
		t.Fatalf("unexpected row after upsert: %+v", got)
	}

	all, err := repo.GetByUserID(ctx, tx, userID)
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("upsert created a duplicate: %d rows", len(all))
	}
}

func TestConceptProgressRepoScopedByUser(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewConceptProgressRepo(gdb, testutil.Logger(t))
	ctx := context.Background()

	conceptID := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	for _, u := range []uuid.UUID{alice, bob} {
		if err := repo.Upsert(ctx, tx, &domain.ConceptProgress{
			UserID:    u,
			ConceptID: conceptID,
			Status:    domain.StatusInProgress,
		}); err != nil {
			t.Fatalf("upsert for %s: %v", u, err)
		}
	}

	got, err := repo.GetByUserAndConceptIDs(ctx, tx, alice, []uuid.UUID{conceptID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got[0].UserID != alice {
		t.Fatalf("expected only alice's row, got %+v", got)
	}
}

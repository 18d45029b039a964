package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/data/repos/testutil"
	"github.com/pathwise/pathwise-backend/internal/domain"
)

func TestUserAchievementRepoInsertOnce(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewUserAchievementRepo(gdb, testutil.Logger(t))
	ctx := context.Background()

	userID := uuid.New()
	row := &domain.UserAchievement{
		UserID:          userID,
		AchievementType: "first_concept_completion",
		EarnedAt:        time.Now().UTC(),
	}

	created, err := repo.Insert(ctx, tx, row)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !created {
		t.Fatal("first insert should create")
	}

	again, err := repo.Insert(ctx, tx, &domain.UserAchievement{
		UserID:          userID,
		AchievementType: "first_concept_completion",
		EarnedAt:        time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if again {
		t.Fatal("duplicate insert should report created=false")
	}

	rows, err := repo.GetByUserID(ctx, tx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one earned row, got %d", len(rows))
	}
}

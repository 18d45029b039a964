package learning

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/data/repos/testutil"
	"github.com/pathwise/pathwise-backend/internal/domain"
)

func TestConceptRepoCreateAndGet(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewConceptRepo(gdb, testutil.Logger(t))
	ctx := context.Background()

	rows, err := repo.Create(ctx, tx, []*domain.Concept{
		{Slug: "go-basics", Name: "Go Basics", Domain: "programming", Difficulty: domain.DifficultyBeginner},
		{Slug: "goroutines", Name: "Goroutines", Domain: "programming", Difficulty: domain.DifficultyIntermediate},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(rows) != 2 || rows[0].ID == uuid.Nil {
		t.Fatalf("expected 2 rows with assigned ids, got %+v", rows)
	}

	got, err := repo.GetByID(ctx, tx, rows[0].ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil || got.Slug != "go-basics" {
		t.Fatalf("expected go-basics, got %+v", got)
	}

	bySlug, err := repo.GetBySlug(ctx, tx, "goroutines")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if bySlug == nil || bySlug.ID != rows[1].ID {
		t.Fatalf("slug lookup returned %+v", bySlug)
	}

	missing, err := repo.GetByID(ctx, tx, uuid.New())
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v", missing)
	}
}

func TestConceptRepoListFilters(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewConceptRepo(gdb, testutil.Logger(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, tx, []*domain.Concept{
		{Slug: "lists", Name: "Linked Lists", Domain: "computer-science", Category: "data-structures", Difficulty: domain.DifficultyBeginner},
		{Slug: "trees", Name: "Binary Trees", Domain: "computer-science", Category: "data-structures", Difficulty: domain.DifficultyIntermediate},
		{Slug: "calculus", Name: "Calculus", Domain: "mathematics", Difficulty: domain.DifficultyAdvanced},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, total, err := repo.List(ctx, tx, ConceptFilter{Domain: "computer-science"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 cs concepts, got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(ctx, tx, ConceptFilter{Query: "binary"})
	if err != nil {
		t.Fatalf("list query: %v", err)
	}
	if total != 1 || rows[0].Slug != "trees" {
		t.Fatalf("query filter returned total=%d rows=%+v", total, rows)
	}

	rows, total, err = repo.List(ctx, tx, ConceptFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list paged: %v", err)
	}
	if total != 3 || len(rows) != 1 {
		t.Fatalf("expected page 2 of 2 to hold 1 of 3, got total=%d len=%d", total, len(rows))
	}
}

func TestConceptRepoIncrementUsage(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewConceptRepo(gdb, testutil.Logger(t))
	ctx := context.Background()

	rows, err := repo.Create(ctx, tx, []*domain.Concept{
		{Slug: "sql-joins", Name: "SQL Joins", Domain: "data-science"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.IncrementUsage(ctx, tx, []uuid.UUID{rows[0].ID}); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := repo.IncrementUsage(ctx, tx, []uuid.UUID{rows[0].ID}); err != nil {
		t.Fatalf("increment again: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, rows[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UsageFrequency != 2 {
		t.Fatalf("expected usage 2, got %d", got.UsageFrequency)
	}
}

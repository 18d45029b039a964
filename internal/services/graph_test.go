package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
)

func edge(from, to uuid.UUID) *domain.ConceptEdge {
	return &domain.ConceptEdge{FromConceptID: from, ToConceptID: to, Kind: domain.EdgePrerequisite}
}

func TestWouldCreateCycle(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	// a depends on b, b depends on c.
	existing := []*domain.ConceptEdge{edge(a, b), edge(b, c)}

	if !wouldCreateCycle(existing, c, a) {
		t.Fatal("c -> a closes a cycle and must be detected")
	}
	if !wouldCreateCycle(existing, b, a) {
		t.Fatal("b -> a closes a cycle and must be detected")
	}
	if wouldCreateCycle(existing, a, c) {
		t.Fatal("a -> c is a shortcut, not a cycle")
	}
	if wouldCreateCycle(nil, a, b) {
		t.Fatal("first edge can never cycle")
	}
}

func TestCandidatesFromEdges(t *testing.T) {
	algebra, calculus, statistics, cooking := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	edges := []*domain.ConceptEdge{
		edge(calculus, algebra),
		edge(statistics, algebra),
		edge(statistics, calculus),
		edge(cooking, uuid.New()),
	}

	out := candidatesFromEdges(edges, []uuid.UUID{algebra})

	byID := map[uuid.UUID]int{}
	totals := map[uuid.UUID]int{}
	for _, c := range out {
		byID[c.ConceptID] = c.PrereqsMet
		totals[c.ConceptID] = c.PrereqsTotal
	}
	if len(out) != 2 {
		t.Fatalf("got %d candidates, want 2 (calculus, statistics)", len(out))
	}
	if byID[calculus] != 1 || totals[calculus] != 1 {
		t.Fatalf("calculus met/total = %d/%d, want 1/1", byID[calculus], totals[calculus])
	}
	if byID[statistics] != 1 || totals[statistics] != 2 {
		t.Fatalf("statistics met/total = %d/%d, want 1/2", byID[statistics], totals[statistics])
	}

	// Completed concepts never come back as candidates.
	out = candidatesFromEdges(edges, []uuid.UUID{algebra, calculus})
	for _, c := range out {
		if c.ConceptID == calculus {
			t.Fatal("completed concept offered as candidate")
		}
	}
}

func TestAddEdgeRejectsCycle(t *testing.T) {
	ctx := context.Background()
	a := &domain.Concept{ID: uuid.New(), Slug: "a", Name: "A"}
	b := &domain.Concept{ID: uuid.New(), Slug: "b", Name: "B"}
	svc := NewGraphService(nil, testLogger(), nil, newFakeConceptRepo(a, b), &fakeEdgeRepo{}, nil)

	if _, err := svc.AddEdge(ctx, domain.EdgePrerequisite, a.ID, b.ID, 1); err != nil {
		t.Fatalf("first edge rejected: %v", err)
	}
	_, err := svc.AddEdge(ctx, domain.EdgePrerequisite, b.ID, a.ID, 1)
	if !apierr.IsKind(err, apierr.KindGraphCycle) {
		t.Fatalf("expected graph_cycle, got %v", err)
	}
}

func TestAddEdgeValidation(t *testing.T) {
	ctx := context.Background()
	a := &domain.Concept{ID: uuid.New(), Slug: "a", Name: "A"}
	svc := NewGraphService(nil, testLogger(), nil, newFakeConceptRepo(a), &fakeEdgeRepo{}, nil)

	if _, err := svc.AddEdge(ctx, "FOLLOWS", a.ID, uuid.New(), 1); !apierr.IsKind(err, apierr.KindInvalidArgument) {
		t.Fatalf("unknown kind: expected invalid_argument, got %v", err)
	}
	if _, err := svc.AddEdge(ctx, domain.EdgePrerequisite, a.ID, a.ID, 1); !apierr.IsKind(err, apierr.KindInvalidArgument) {
		t.Fatalf("self edge: expected invalid_argument, got %v", err)
	}
	if _, err := svc.AddEdge(ctx, domain.EdgePrerequisite, a.ID, uuid.New(), 1); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("missing endpoint: expected not_found, got %v", err)
	}
}

func TestRelatedEdgesAreUndirected(t *testing.T) {
	ctx := context.Background()
	a := &domain.Concept{ID: uuid.New(), Slug: "a", Name: "A"}
	b := &domain.Concept{ID: uuid.New(), Slug: "b", Name: "B"}
	c := &domain.Concept{ID: uuid.New(), Slug: "c", Name: "C"}
	svc := NewGraphService(nil, testLogger(), nil, newFakeConceptRepo(a, b, c), &fakeEdgeRepo{}, nil)

	if _, err := svc.AddEdge(ctx, domain.EdgeRelatedTo, a.ID, b.ID, 0.5); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	if _, err := svc.AddEdge(ctx, domain.EdgeRelatedTo, c.ID, a.ID, 0.5); err != nil {
		t.Fatalf("add edge: %v", err)
	}

	related, err := svc.RelatedOf(ctx, a.ID)
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if len(related) != 2 {
		t.Fatalf("related count = %d, want 2 (both directions)", len(related))
	}
}

func TestNormalizePathOrder(t *testing.T) {
	m := func(order int) *domain.LearningPathConcept {
		return &domain.LearningPathConcept{ConceptID: uuid.New(), SequenceOrder: order}
	}
	members := []*domain.LearningPathConcept{m(9), m(2), m(5)}
	first := members[1].ConceptID

	normalizePathOrder(members)

	for i, mm := range members {
		if mm.SequenceOrder != i+1 {
			t.Fatalf("member %d has order %d, want %d", i, mm.SequenceOrder, i+1)
		}
	}
	if members[0].ConceptID != first {
		t.Fatal("relative ordering not preserved")
	}
}

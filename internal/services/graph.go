package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/data/graph"
	"github.com/pathwise/pathwise-backend/internal/data/repos/learning"
	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/neo4jdb"
)

// GraphService owns the concept catalog and its relationship graph. Postgres
// rows are authoritative; the neo4j projection serves traversal queries and is
// rebuilt from the rows on demand.
type GraphService interface {
	CreateConcepts(ctx context.Context, rows []*domain.Concept) ([]*domain.Concept, error)
	GetConcept(ctx context.Context, id uuid.UUID) (*domain.Concept, error)
	GetConceptBySlug(ctx context.Context, slug string) (*domain.Concept, error)
	ListConcepts(ctx context.Context, filter learning.ConceptFilter) ([]*domain.Concept, int64, error)

	AddEdge(ctx context.Context, kind domain.EdgeKind, fromID, toID uuid.UUID, strength float64) (*domain.ConceptEdge, error)
	PrerequisitesOf(ctx context.Context, conceptID uuid.UUID) ([]*domain.Concept, error)
	DependentsOf(ctx context.Context, conceptID uuid.UUID) ([]*domain.Concept, error)
	RelatedOf(ctx context.Context, conceptID uuid.UUID) ([]*domain.Concept, error)
	FindNextCandidates(ctx context.Context, completed []uuid.UUID) ([]graph.NextCandidate, error)

	CreatePath(ctx context.Context, path *domain.LearningPath, members []*domain.LearningPathConcept) (*domain.LearningPath, error)
	GetPath(ctx context.Context, id uuid.UUID) (*domain.LearningPath, []*domain.LearningPathConcept, error)
	ListPublicPaths(ctx context.Context) ([]*domain.LearningPath, error)

	SyncAll(ctx context.Context) error
	GraphAvailable() bool
}

type graphService struct {
	db    *gorm.DB
	log   *logger.Logger
	neo   *neo4jdb.Client
	conc  learning.ConceptRepo
	edges learning.ConceptEdgeRepo
	paths learning.LearningPathRepo
}

func NewGraphService(
	db *gorm.DB,
	baseLog *logger.Logger,
	neo *neo4jdb.Client,
	conc learning.ConceptRepo,
	edges learning.ConceptEdgeRepo,
	paths learning.LearningPathRepo,
) GraphService {
	return &graphService{
		db:    db,
		log:   baseLog.With("service", "GraphService"),
		neo:   neo,
		conc:  conc,
		edges: edges,
		paths: paths,
	}
}

func (s *graphService) GraphAvailable() bool { return s.neo.Available() }

func (s *graphService) CreateConcepts(ctx context.Context, rows []*domain.Concept) ([]*domain.Concept, error) {
	for _, c := range rows {
		if c == nil || strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Slug) == "" {
			return nil, apierr.InvalidArgument("concept name and slug are required")
		}
		if c.Difficulty != "" && domain.DifficultyRank(c.Difficulty) < 0 {
			return nil, apierr.InvalidArgument("unknown difficulty %q", c.Difficulty)
		}
	}
	created, err := s.conc.Create(ctx, nil, rows)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "create concepts")
	}
	if err := graph.UpsertConceptGraph(ctx, s.neo, s.log, created, nil); err != nil {
		s.log.Warn("graph projection of new concepts failed", "error", err)
	}
	return created, nil
}

func (s *graphService) GetConcept(ctx context.Context, id uuid.UUID) (*domain.Concept, error) {
	c, err := s.conc.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load concept")
	}
	if c == nil {
		return nil, apierr.NotFound("concept not found")
	}
	return c, nil
}

func (s *graphService) GetConceptBySlug(ctx context.Context, slug string) (*domain.Concept, error) {
	c, err := s.conc.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load concept")
	}
	if c == nil {
		return nil, apierr.NotFound("concept not found")
	}
	return c, nil
}

func (s *graphService) ListConcepts(ctx context.Context, filter learning.ConceptFilter) ([]*domain.Concept, int64, error) {
	rows, total, err := s.conc.List(ctx, nil, filter)
	if err != nil {
		return nil, 0, apierr.Wrap(apierr.KindStoreUnavailable, err, "list concepts")
	}
	return rows, total, nil
}

// AddEdge persists one relationship. PREREQUISITE edges are rejected when they
// would close a cycle; the check runs against the authoritative rows, not the
// projection.
func (s *graphService) AddEdge(ctx context.Context, kind domain.EdgeKind, fromID, toID uuid.UUID, strength float64) (*domain.ConceptEdge, error) {
	if !domain.ValidEdgeKind(kind) {
		return nil, apierr.InvalidArgument("unknown edge kind %q", kind)
	}
	if fromID == uuid.Nil || toID == uuid.Nil || fromID == toID {
		return nil, apierr.InvalidArgument("edge endpoints must be two distinct concepts")
	}
	ends, err := s.conc.GetByIDs(ctx, nil, []uuid.UUID{fromID, toID})
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load edge endpoints")
	}
	if len(ends) != 2 {
		return nil, apierr.NotFound("edge endpoint concept not found")
	}

	if kind == domain.EdgePrerequisite {
		existing, err := s.edges.GetAllByKind(ctx, nil, domain.EdgePrerequisite)
		if err != nil {
			return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load prerequisite edges")
		}
		if wouldCreateCycle(existing, fromID, toID) {
			return nil, apierr.GraphCycle("prerequisite edge %s -> %s would create a cycle", fromID, toID)
		}
	}

	edge := &domain.ConceptEdge{FromConceptID: fromID, ToConceptID: toID, Kind: kind, Strength: strength}
	if _, err := s.edges.Create(ctx, nil, []*domain.ConceptEdge{edge}); err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "create edge")
	}
	if err := graph.UpsertConceptGraph(ctx, s.neo, s.log, nil, []*domain.ConceptEdge{edge}); err != nil {
		s.log.Warn("graph projection of new edge failed", "error", err)
	}
	return edge, nil
}

// wouldCreateCycle reports whether adding from->to closes a directed cycle in
// the existing prerequisite edges, i.e. whether `from` is already reachable
// from `to`.
func wouldCreateCycle(edges []*domain.ConceptEdge, from, to uuid.UUID) bool {
	adj := map[uuid.UUID][]uuid.UUID{}
	for _, e := range edges {
		adj[e.FromConceptID] = append(adj[e.FromConceptID], e.ToConceptID)
	}
	seen := map[uuid.UUID]bool{}
	stack := []uuid.UUID{to}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == from {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, adj[n]...)
	}
	return false
}

func (s *graphService) conceptsByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Concept, error) {
	rows, err := s.conc.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load concepts")
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

func (s *graphService) PrerequisitesOf(ctx context.Context, conceptID uuid.UUID) ([]*domain.Concept, error) {
	if _, err := s.GetConcept(ctx, conceptID); err != nil {
		return nil, err
	}
	if s.neo.Available() {
		ids, err := graph.PrerequisiteIDsOf(ctx, s.neo, conceptID)
		if err == nil {
			return s.conceptsByIDs(ctx, ids)
		}
		s.log.Warn("graph prerequisite query failed, falling back to rows", "error", err)
	}
	rows, err := s.edges.GetByFromIDs(ctx, nil, []uuid.UUID{conceptID}, domain.EdgePrerequisite)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load prerequisite edges")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, e := range rows {
		ids = append(ids, e.ToConceptID)
	}
	return s.conceptsByIDs(ctx, ids)
}

func (s *graphService) DependentsOf(ctx context.Context, conceptID uuid.UUID) ([]*domain.Concept, error) {
	if _, err := s.GetConcept(ctx, conceptID); err != nil {
		return nil, err
	}
	if s.neo.Available() {
		ids, err := graph.DependentIDsOf(ctx, s.neo, conceptID)
		if err == nil {
			return s.conceptsByIDs(ctx, ids)
		}
		s.log.Warn("graph dependent query failed, falling back to rows", "error", err)
	}
	rows, err := s.edges.GetByToIDs(ctx, nil, []uuid.UUID{conceptID}, domain.EdgePrerequisite)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load dependent edges")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, e := range rows {
		ids = append(ids, e.FromConceptID)
	}
	return s.conceptsByIDs(ctx, ids)
}

func (s *graphService) RelatedOf(ctx context.Context, conceptID uuid.UUID) ([]*domain.Concept, error) {
	if _, err := s.GetConcept(ctx, conceptID); err != nil {
		return nil, err
	}
	if s.neo.Available() {
		ids, err := graph.RelatedIDsOf(ctx, s.neo, conceptID)
		if err == nil {
			return s.conceptsByIDs(ctx, ids)
		}
		s.log.Warn("graph related query failed, falling back to rows", "error", err)
	}
	// RELATED_TO is undirected in spirit; collect both directions.
	idSet := map[uuid.UUID]bool{}
	out, err := s.edges.GetByFromIDs(ctx, nil, []uuid.UUID{conceptID}, domain.EdgeRelatedTo)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load related edges")
	}
	for _, e := range out {
		idSet[e.ToConceptID] = true
	}
	in, err := s.edges.GetByToIDs(ctx, nil, []uuid.UUID{conceptID}, domain.EdgeRelatedTo)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load related edges")
	}
	for _, e := range in {
		idSet[e.FromConceptID] = true
	}
	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	return s.conceptsByIDs(ctx, ids)
}

// FindNextCandidates prefers the projection and recomputes from rows when the
// graph store is down.
func (s *graphService) FindNextCandidates(ctx context.Context, completed []uuid.UUID) ([]graph.NextCandidate, error) {
	if len(completed) == 0 {
		return nil, nil
	}
	if s.neo.Available() {
		out, err := graph.FindNextCandidates(ctx, s.neo, completed)
		if err == nil {
			return out, nil
		}
		s.log.Warn("graph candidate query failed, falling back to rows", "error", err)
	}
	edges, err := s.edges.GetAllByKind(ctx, nil, domain.EdgePrerequisite)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load prerequisite edges")
	}
	return candidatesFromEdges(edges, completed), nil
}

// candidatesFromEdges mirrors the projection's candidate query on relational
// edges: concepts outside the completed set with at least one prerequisite
// inside it.
func candidatesFromEdges(edges []*domain.ConceptEdge, completed []uuid.UUID) []graph.NextCandidate {
	done := map[uuid.UUID]bool{}
	for _, id := range completed {
		done[id] = true
	}
	prereqs := map[uuid.UUID][]uuid.UUID{}
	for _, e := range edges {
		prereqs[e.FromConceptID] = append(prereqs[e.FromConceptID], e.ToConceptID)
	}
	var out []graph.NextCandidate
	for cand, pres := range prereqs {
		if done[cand] {
			continue
		}
		met := 0
		for _, p := range pres {
			if done[p] {
				met++
			}
		}
		if met == 0 {
			continue
		}
		out = append(out, graph.NextCandidate{ConceptID: cand, PrereqsMet: met, PrereqsTotal: len(pres)})
	}
	return out
}

// CreatePath normalizes member ordering to a dense 1..N sequence before
// persisting, bumps usage on member concepts, and projects membership.
func (s *graphService) CreatePath(ctx context.Context, path *domain.LearningPath, members []*domain.LearningPathConcept) (*domain.LearningPath, error) {
	if path == nil || strings.TrimSpace(path.Name) == "" {
		return nil, apierr.InvalidArgument("path name is required")
	}
	if len(members) == 0 {
		return nil, apierr.InvalidArgument("a path needs at least one concept")
	}
	memberIDs := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if m == nil || m.ConceptID == uuid.Nil {
			return nil, apierr.InvalidArgument("path member concept_id is required")
		}
		memberIDs = append(memberIDs, m.ConceptID)
	}
	found, err := s.conc.GetByIDs(ctx, nil, memberIDs)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load path concepts")
	}
	if len(found) != len(dedupe(memberIDs)) {
		return nil, apierr.NotFound("path references an unknown concept")
	}

	normalizePathOrder(members)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paths.Create(ctx, tx, path, members); err != nil {
			return err
		}
		return s.conc.IncrementUsage(ctx, tx, memberIDs)
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "create path")
	}

	if err := graph.UpsertPathMembership(ctx, s.neo, s.log, path, members); err != nil {
		s.log.Warn("graph projection of new path failed", "error", err, "path_id", path.ID)
	}
	return path, nil
}

// normalizePathOrder rewrites member sequence orders to a dense 1..N run,
// preserving the caller's relative ordering.
func normalizePathOrder(members []*domain.LearningPathConcept) {
	sort.SliceStable(members, func(i, j int) bool { return members[i].SequenceOrder < members[j].SequenceOrder })
	for i, m := range members {
		m.SequenceOrder = i + 1
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s *graphService) GetPath(ctx context.Context, id uuid.UUID) (*domain.LearningPath, []*domain.LearningPathConcept, error) {
	p, err := s.paths.GetByID(ctx, nil, id)
	if err != nil {
		return nil, nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load path")
	}
	if p == nil {
		return nil, nil, apierr.NotFound("learning path not found")
	}
	members, err := s.paths.GetPathConcepts(ctx, nil, id)
	if err != nil {
		return nil, nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load path concepts")
	}
	return p, members, nil
}

func (s *graphService) ListPublicPaths(ctx context.Context) ([]*domain.LearningPath, error) {
	rows, err := s.paths.ListPublic(ctx, nil)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "list paths")
	}
	return rows, nil
}

// SyncAll rebuilds the whole projection from the authoritative rows.
func (s *graphService) SyncAll(ctx context.Context) error {
	if !s.neo.Available() {
		return apierr.New(apierr.KindStoreUnavailable, "graph store is not configured")
	}

	concepts, _, err := s.conc.List(ctx, nil, learning.ConceptFilter{PageSize: 200})
	if err != nil {
		return apierr.Wrap(apierr.KindStoreUnavailable, err, "list concepts")
	}
	page := 2
	for batch := concepts; len(batch) == 200; page++ {
		batch, _, err = s.conc.List(ctx, nil, learning.ConceptFilter{Page: page, PageSize: 200})
		if err != nil {
			return apierr.Wrap(apierr.KindStoreUnavailable, err, "list concepts")
		}
		concepts = append(concepts, batch...)
	}

	var edges []*domain.ConceptEdge
	for _, kind := range []domain.EdgeKind{domain.EdgePrerequisite, domain.EdgeRelatedTo, domain.EdgeBuildsUpon, domain.EdgePartOf} {
		rows, err := s.edges.GetAllByKind(ctx, nil, kind)
		if err != nil {
			return apierr.Wrap(apierr.KindStoreUnavailable, err, "list edges")
		}
		edges = append(edges, rows...)
	}

	if err := graph.UpsertConceptGraph(ctx, s.neo, s.log, concepts, edges); err != nil {
		return apierr.Wrap(apierr.KindStoreUnavailable, err, "project concept graph")
	}

	paths, err := s.paths.ListPublic(ctx, nil)
	if err != nil {
		return apierr.Wrap(apierr.KindStoreUnavailable, err, "list paths")
	}
	for _, p := range paths {
		members, err := s.paths.GetPathConcepts(ctx, nil, p.ID)
		if err != nil {
			return apierr.Wrap(apierr.KindStoreUnavailable, err, "load path concepts")
		}
		if err := graph.UpsertPathMembership(ctx, s.neo, s.log, p, members); err != nil {
			return apierr.Wrap(apierr.KindStoreUnavailable, err, "project path membership")
		}
	}
	s.log.Info("graph projection rebuilt", "concepts", len(concepts), "edges", len(edges), "paths", len(paths))
	return nil
}

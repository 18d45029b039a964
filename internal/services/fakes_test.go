package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/data/graph"
	"github.com/pathwise/pathwise-backend/internal/data/repos/learning"
	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

var errNotFoundConcept = apierr.NotFound("concept not found")

func testLogger() *logger.Logger {
	log, err := logger.New("test")
	if err != nil {
		panic(err)
	}
	return log
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeConceptRepo struct {
	mu       sync.Mutex
	concepts map[uuid.UUID]*domain.Concept
}

func newFakeConceptRepo(rows ...*domain.Concept) *fakeConceptRepo {
	r := &fakeConceptRepo{concepts: map[uuid.UUID]*domain.Concept{}}
	for _, c := range rows {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.concepts[c.ID] = c
	}
	return r
}

func (r *fakeConceptRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.Concept) ([]*domain.Concept, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range rows {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.concepts[c.ID] = c
	}
	return rows, nil
}

func (r *fakeConceptRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Concept, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Concept
	for _, id := range ids {
		if c, ok := r.concepts[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConceptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Concept, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.concepts[id], nil
}

func (r *fakeConceptRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*domain.Concept, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.concepts {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeConceptRepo) List(ctx context.Context, tx *gorm.DB, filter learning.ConceptFilter) ([]*domain.Concept, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Concept
	for _, c := range r.concepts {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeConceptRepo) ListByDifficulty(ctx context.Context, tx *gorm.DB, difficulty domain.Difficulty, limit int) ([]*domain.Concept, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Concept
	for _, c := range r.concepts {
		if c.Difficulty == difficulty && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConceptRepo) ListExcluding(ctx context.Context, tx *gorm.DB, excludeIDs []uuid.UUID, limit int) ([]*domain.Concept, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	skip := map[uuid.UUID]bool{}
	for _, id := range excludeIDs {
		skip[id] = true
	}
	var out []*domain.Concept
	for _, c := range r.concepts {
		if !skip[c.ID] && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConceptRepo) Update(ctx context.Context, tx *gorm.DB, row *domain.Concept) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.concepts[row.ID] = row
	return nil
}

func (r *fakeConceptRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeConceptRepo) IncrementUsage(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if c, ok := r.concepts[id]; ok {
			c.UsageFrequency++
		}
	}
	return nil
}

type fakeEdgeRepo struct {
	mu    sync.Mutex
	edges []*domain.ConceptEdge
}

func (r *fakeEdgeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.ConceptEdge) ([]*domain.ConceptEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges = append(r.edges, rows...)
	return rows, nil
}

func (r *fakeEdgeRepo) GetAllByKind(ctx context.Context, tx *gorm.DB, kind domain.EdgeKind) ([]*domain.ConceptEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ConceptEdge
	for _, e := range r.edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEdgeRepo) GetByFromIDs(ctx context.Context, tx *gorm.DB, fromIDs []uuid.UUID, kind domain.EdgeKind) ([]*domain.ConceptEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range fromIDs {
		want[id] = true
	}
	var out []*domain.ConceptEdge
	for _, e := range r.edges {
		if e.Kind == kind && want[e.FromConceptID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEdgeRepo) GetByToIDs(ctx context.Context, tx *gorm.DB, toIDs []uuid.UUID, kind domain.EdgeKind) ([]*domain.ConceptEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range toIDs {
		want[id] = true
	}
	var out []*domain.ConceptEdge
	for _, e := range r.edges {
		if e.Kind == kind && want[e.ToConceptID] {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeConceptProgressRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.ConceptProgress
}

func newFakeConceptProgressRepo() *fakeConceptProgressRepo {
	return &fakeConceptProgressRepo{rows: map[string]*domain.ConceptProgress{}}
}

func cpKey(userID, conceptID uuid.UUID) string { return userID.String() + "|" + conceptID.String() }

func (r *fakeConceptProgressRepo) GetByUserAndConcept(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*domain.ConceptProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[cpKey(userID, conceptID)], nil
}

func (r *fakeConceptProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.ConceptProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ConceptProgress
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeConceptProgressRepo) GetByUserAndConceptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []uuid.UUID) ([]*domain.ConceptProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range conceptIDs {
		want[id] = true
	}
	var out []*domain.ConceptProgress
	for _, row := range r.rows {
		if row.UserID == userID && want[row.ConceptID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeConceptProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *domain.ConceptProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *row
	r.rows[cpKey(row.UserID, row.ConceptID)] = &cp
	return nil
}

type fakeLessonRepo struct {
	mu      sync.Mutex
	rows    map[string]*domain.ConceptLesson
	upserts int
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{rows: map[string]*domain.ConceptLesson{}}
}

func lessonKey(conceptID uuid.UUID, difficulty domain.Difficulty) string {
	return conceptID.String() + "|" + string(difficulty)
}

func (r *fakeLessonRepo) Get(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, difficulty domain.Difficulty) (*domain.ConceptLesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[lessonKey(conceptID, difficulty)], nil
}

func (r *fakeLessonRepo) Upsert(ctx context.Context, tx *gorm.DB, row *domain.ConceptLesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	cp := *row
	r.rows[lessonKey(row.ConceptID, row.Difficulty)] = &cp
	return nil
}

func (r *fakeLessonRepo) Delete(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, difficulty domain.Difficulty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, lessonKey(conceptID, difficulty))
	return nil
}

type fakeAchievementRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.UserAchievement
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{rows: map[string]*domain.UserAchievement{}}
}

func (r *fakeAchievementRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.UserAchievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.UserAchievement
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeAchievementRepo) Insert(ctx context.Context, tx *gorm.DB, row *domain.UserAchievement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := row.UserID.String() + "|" + row.AchievementType
	if _, ok := r.rows[key]; ok {
		return false, nil
	}
	cp := *row
	r.rows[key] = &cp
	return true, nil
}

type fakeQuizRepo struct {
	mu        sync.Mutex
	quizzes   map[uuid.UUID]*domain.Quiz
	questions map[uuid.UUID][]*domain.QuizQuestion
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{
		quizzes:   map[uuid.UUID]*domain.Quiz{},
		questions: map[uuid.UUID][]*domain.QuizQuestion{},
	}
}

func (r *fakeQuizRepo) Create(ctx context.Context, tx *gorm.DB, quiz *domain.Quiz, questions []*domain.QuizQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quiz.ID == uuid.Nil {
		quiz.ID = uuid.New()
	}
	for _, q := range questions {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		q.QuizID = quiz.ID
	}
	r.quizzes[quiz.ID] = quiz
	r.questions[quiz.ID] = questions
	return nil
}

func (r *fakeQuizRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quizzes[id], nil
}

func (r *fakeQuizRepo) GetQuestions(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]*domain.QuizQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.questions[quizID], nil
}

func (r *fakeQuizRepo) UpdateAggregates(ctx context.Context, tx *gorm.DB, quizID uuid.UUID, averageScore, completionRate float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.quizzes[quizID]; ok {
		q.AverageScore = averageScore
		q.CompletionRate = completionRate
	}
	return nil
}

type fakeAttemptRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.QuizAttempt
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{rows: map[uuid.UUID]*domain.QuizAttempt{}}
}

func (r *fakeAttemptRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.QuizAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	cp := *row
	r.rows[row.ID] = &cp
	return nil
}

func (r *fakeAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.QuizAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeAttemptRepo) GetByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uuid.UUID) ([]*domain.QuizAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.QuizAttempt
	for _, row := range r.rows {
		if row.UserID == userID && row.QuizID == quizID {
			cp := *row
			out = append(out, &cp)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].AttemptNumber < out[i].AttemptNumber {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) GetCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.QuizAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.QuizAttempt
	for _, row := range r.rows {
		if row.UserID == userID && row.Status == domain.AttemptCompleted {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]*domain.QuizAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.QuizAttempt
	for _, row := range r.rows {
		if row.QuizID == quizID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) Update(ctx context.Context, tx *gorm.DB, row *domain.QuizAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *row
	r.rows[row.ID] = &cp
	return nil
}

// fakeGraph is a canned GraphService for services that only read from it.
type fakeGraph struct {
	concepts      map[uuid.UUID]*domain.Concept
	related       map[uuid.UUID][]*domain.Concept
	candidates    []graph.NextCandidate
	candidatesErr error
}

func (g *fakeGraph) CreateConcepts(ctx context.Context, rows []*domain.Concept) ([]*domain.Concept, error) {
	return rows, nil
}

func (g *fakeGraph) GetConcept(ctx context.Context, id uuid.UUID) (*domain.Concept, error) {
	if c, ok := g.concepts[id]; ok {
		return c, nil
	}
	return nil, errNotFoundConcept
}

func (g *fakeGraph) GetConceptBySlug(ctx context.Context, slug string) (*domain.Concept, error) {
	for _, c := range g.concepts {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, errNotFoundConcept
}

func (g *fakeGraph) ListConcepts(ctx context.Context, filter learning.ConceptFilter) ([]*domain.Concept, int64, error) {
	return nil, 0, nil
}

func (g *fakeGraph) AddEdge(ctx context.Context, kind domain.EdgeKind, fromID, toID uuid.UUID, strength float64) (*domain.ConceptEdge, error) {
	return nil, nil
}

func (g *fakeGraph) PrerequisitesOf(ctx context.Context, conceptID uuid.UUID) ([]*domain.Concept, error) {
	return nil, nil
}

func (g *fakeGraph) DependentsOf(ctx context.Context, conceptID uuid.UUID) ([]*domain.Concept, error) {
	return nil, nil
}

func (g *fakeGraph) RelatedOf(ctx context.Context, conceptID uuid.UUID) ([]*domain.Concept, error) {
	return g.related[conceptID], nil
}

func (g *fakeGraph) FindNextCandidates(ctx context.Context, completed []uuid.UUID) ([]graph.NextCandidate, error) {
	return g.candidates, g.candidatesErr
}

func (g *fakeGraph) CreatePath(ctx context.Context, path *domain.LearningPath, members []*domain.LearningPathConcept) (*domain.LearningPath, error) {
	return path, nil
}

func (g *fakeGraph) GetPath(ctx context.Context, id uuid.UUID) (*domain.LearningPath, []*domain.LearningPathConcept, error) {
	return nil, nil, nil
}

func (g *fakeGraph) ListPublicPaths(ctx context.Context) ([]*domain.LearningPath, error) {
	return nil, nil
}

func (g *fakeGraph) SyncAll(ctx context.Context) error { return nil }
func (g *fakeGraph) GraphAvailable() bool              { return false }

// fakeStats is a ProgressService that serves fixed stats to the achievement
// evaluator.
type fakeStats struct {
	stats domain.UserStats
}

func (f *fakeStats) UpdateConceptProgress(ctx context.Context, userID, conceptID uuid.UUID, delta ConceptProgressDelta) (*domain.ConceptProgress, error) {
	return nil, nil
}

func (f *fakeStats) UpdateContentProgress(ctx context.Context, userID, contentID uuid.UUID, delta ContentProgressDelta) (*domain.ContentProgress, error) {
	return nil, nil
}

func (f *fakeStats) GetUserConceptProgress(ctx context.Context, userID uuid.UUID) ([]*domain.ConceptProgress, error) {
	return nil, nil
}

func (f *fakeStats) GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	st := f.stats
	if st.DomainConcepts == nil {
		st.DomainConcepts = map[string]int{}
	}
	return &st, nil
}

func (f *fakeStats) Subscribe(fn ProgressSubscriber) {}

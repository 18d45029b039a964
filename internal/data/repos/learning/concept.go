package learning

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type ConceptFilter struct {
	Category   string
	Domain     string
	Difficulty domain.Difficulty
	Query      string
	Page       int
	PageSize   int
}

type ConceptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.Concept) ([]*domain.Concept, error)

	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Concept, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Concept, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*domain.Concept, error)

	List(ctx context.Context, tx *gorm.DB, filter ConceptFilter) ([]*domain.Concept, int64, error)
	ListByDifficulty(ctx context.Context, tx *gorm.DB, difficulty domain.Difficulty, limit int) ([]*domain.Concept, error)
	ListExcluding(ctx context.Context, tx *gorm.DB, excludeIDs []uuid.UUID, limit int) ([]*domain.Concept, error)

	Update(ctx context.Context, tx *gorm.DB, row *domain.Concept) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	IncrementUsage(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "ConceptRepo")}
}

func (r *conceptRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.Concept) ([]*domain.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.Concept{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conceptRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Concept
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Concept, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *conceptRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*domain.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var out []*domain.Concept
	if err := t.WithContext(ctx).Where("slug = ?", slug).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *conceptRepo) List(ctx context.Context, tx *gorm.DB, filter ConceptFilter) ([]*domain.Concept, int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).Model(&domain.Concept{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Domain != "" {
		q = q.Where("domain = ?", filter.Domain)
	}
	if filter.Difficulty != "" {
		q = q.Where("difficulty = ?", filter.Difficulty)
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 || size > 200 {
		size = 50
	}

	var out []*domain.Concept
	if err := q.Order("name ASC").Offset((page - 1) * size).Limit(size).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *conceptRepo) ListByDifficulty(ctx context.Context, tx *gorm.DB, difficulty domain.Difficulty, limit int) ([]*domain.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Concept
	if limit <= 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("difficulty = ?", difficulty).
		Order("usage_frequency DESC, name ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) ListExcluding(ctx context.Context, tx *gorm.DB, excludeIDs []uuid.UUID, limit int) ([]*domain.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Concept
	if limit <= 0 {
		return out, nil
	}
	q := t.WithContext(ctx).Model(&domain.Concept{})
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if err := q.Order("usage_frequency DESC, name ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) Update(ctx context.Context, tx *gorm.DB, row *domain.Concept) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).Save(row).Error
}

func (r *conceptRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(ctx).Model(&domain.Concept{}).Where("id = ?", id).Updates(updates).Error
}

func (r *conceptRepo) IncrementUsage(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&domain.Concept{}).
		Where("id IN ?", ids).
		UpdateColumn("usage_frequency", gorm.Expr("usage_frequency + 1")).Error
}

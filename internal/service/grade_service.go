package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error)
	ListAll(ctx context.Context) ([]models.Grade, error)
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
}

type gradeStudentRepository interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type gradeClassRepository interface {
	ListAll(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// GradeRequest holds the payload for creating and updating grades.
type GradeRequest struct {
	StudentID      string     `json:"student_id" validate:"required"`
	ClassID        string     `json:"class_id" validate:"required"`
	AssignmentName string     `json:"assignment_name" validate:"required"`
	Score          float64    `json:"score" validate:"gte=0"`
	MaxScore       float64    `json:"max_score" validate:"required,gt=0"`
	Date           *time.Time `json:"date"`
	Category       string     `json:"category"`
	Notes          string     `json:"notes"`
}

// GradeServiceParams bundles the dependencies of GradeService.
type GradeServiceParams struct {
	Repo      gradeRepository
	Students  gradeStudentRepository
	Classes   gradeClassRepository
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Now       func() time.Time
}

// GradeService handles grade-book use-cases.
type GradeService struct {
	repo      gradeRepository
	students  gradeStudentRepository
	classes   gradeClassRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewGradeService constructs the grade service.
func NewGradeService(params GradeServiceParams) *GradeService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &GradeService{
		repo:      params.Repo,
		students:  params.Students,
		classes:   params.Classes,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: params.Validator,
		logger:    params.Logger,
		now:       params.Now,
	}
}

// List returns grades and pagination metadata.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, *models.Pagination, error) {
	grades, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "grade not found", "failed to list grades")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return grades, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single grade.
func (s *GradeService) Get(ctx context.Context, id string) (*models.Grade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "grade not found", "failed to load grade")
	}
	return grade, nil
}

// Gradebook returns the decorated, name-sorted grade rows with summary
// stats. Derived from full snapshots, cached until the next mutation.
func (s *GradeService) Gradebook(ctx context.Context, filter models.GradeFilter) (*analytics.Gradebook, bool, error) {
	cacheKey := "views:gradebook"
	if filter.ClassID != "" {
		cacheKey += ":" + filter.ClassID
	}
	var cached analytics.Gradebook
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	grades, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, false, storeError(err, "grade not found", "failed to load grades")
	}
	if filter.ClassID != "" {
		filtered := grades[:0]
		for _, g := range grades {
			if g.ClassID == filter.ClassID {
				filtered = append(filtered, g)
			}
		}
		grades = filtered
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, false, storeError(err, "student not found", "failed to load students")
	}
	classes, err := s.classes.ListAll(ctx)
	if err != nil {
		return nil, false, storeError(err, "class not found", "failed to load classes")
	}

	idx := analytics.NewIndex(students, classes)
	book := analytics.BuildGradebook(idx, grades)
	if s.metrics != nil {
		s.metrics.RecordUnresolvedReferences(idx.Misses())
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, book, 0)
	}
	return &book, false, nil
}

func (s *GradeService) validate(ctx context.Context, req GradeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if req.Score > req.MaxScore {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("score %.1f exceeds max score %.1f", req.Score, req.MaxScore))
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return storeError(err, "student not found", "failed to load student")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		return storeError(err, "class not found", "failed to load class")
	}
	return nil
}

func (s *GradeService) apply(grade *models.Grade, req GradeRequest) {
	grade.StudentID = req.StudentID
	grade.ClassID = req.ClassID
	grade.AssignmentName = req.AssignmentName
	grade.Score = req.Score
	grade.MaxScore = req.MaxScore
	grade.Category = req.Category
	grade.Notes = req.Notes
	if req.Date != nil {
		grade.Date = *req.Date
	}
}

// Create records a new grade. The date defaults to now when omitted.
func (s *GradeService) Create(ctx context.Context, req GradeRequest) (*models.Grade, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	grade := &models.Grade{Date: s.now().UTC()}
	s.apply(grade, req)
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, storeError(err, "grade not found", "failed to create grade")
	}
	s.invalidate(ctx)
	return grade, nil
}

// Update modifies an existing grade.
func (s *GradeService) Update(ctx context.Context, id string, req GradeRequest) (*models.Grade, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "grade not found", "failed to load grade")
	}
	s.apply(grade, req)
	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, storeError(err, "grade not found", "failed to update grade")
	}
	s.invalidate(ctx)
	return grade, nil
}

// Delete removes a grade record.
func (s *GradeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "grade not found", "failed to delete grade")
	}
	s.invalidate(ctx)
	return nil
}

func (s *GradeService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateViews(ctx)
	}
}

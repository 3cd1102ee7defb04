package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	ListAll(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

type classStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// ClassRequest holds the payload for creating and updating classes.
type ClassRequest struct {
	Name        string   `json:"name" validate:"required"`
	Subject     string   `json:"subject" validate:"required"`
	TeacherName string   `json:"teacher_name" validate:"required"`
	Room        string   `json:"room"`
	Schedule    []string `json:"schedule"`
	GradeLevel  string   `json:"grade_level" validate:"required"`
	MaxCapacity int      `json:"max_capacity" validate:"required,gt=0"`
	Description string   `json:"description"`
}

// ClassView decorates a class with its capacity indicator.
type ClassView struct {
	models.Class
	CapacityPercentage int                    `json:"capacity_percentage"`
	CapacityTier       analytics.BadgeVariant `json:"capacity_tier"`
}

// ClassService handles class use-cases, including roster enrollment.
type ClassService struct {
	repo       classRepository
	students   classStudentRepository
	cache      *CacheService
	thresholds analytics.CapacityThresholds
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewClassService constructs the class service.
func NewClassService(repo classRepository, students classStudentRepository, cache *CacheService, thresholds analytics.CapacityThresholds, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if thresholds == (analytics.CapacityThresholds{}) {
		thresholds = analytics.DefaultCapacityThresholds
	}
	return &ClassService{repo: repo, students: students, cache: cache, thresholds: thresholds, validator: validate, logger: logger}
}

func (s *ClassService) view(class models.Class) ClassView {
	pct := analytics.CapacityPercentage(class.EnrolledCount(), class.MaxCapacity)
	return ClassView{Class: class, CapacityPercentage: pct, CapacityTier: s.thresholds.Tier(pct)}
}

// List returns classes with capacity indicators and pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]ClassView, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "class not found", "failed to list classes")
	}
	views := make([]ClassView, 0, len(classes))
	for _, c := range classes {
		views = append(views, s.view(c))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return views, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single class with its capacity indicator.
func (s *ClassService) Get(ctx context.Context, id string) (*ClassView, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "class not found", "failed to load class")
	}
	view := s.view(*class)
	return &view, nil
}

// Create registers a new class with an empty roster.
func (s *ClassService) Create(ctx context.Context, req ClassRequest) (*ClassView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class := &models.Class{
		Name:        req.Name,
		Subject:     req.Subject,
		TeacherName: req.TeacherName,
		Room:        req.Room,
		Schedule:    req.Schedule,
		GradeLevel:  req.GradeLevel,
		MaxCapacity: req.MaxCapacity,
		StudentIDs:  []string{},
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, storeError(err, "class not found", "failed to create class")
	}
	s.invalidate(ctx)
	view := s.view(*class)
	return &view, nil
}

// Update modifies an existing class. Shrinking max capacity below the
// current roster size is rejected.
func (s *ClassService) Update(ctx context.Context, id string, req ClassRequest) (*ClassView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "class not found", "failed to load class")
	}
	if req.MaxCapacity < class.EnrolledCount() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("max capacity %d is below current enrollment %d", req.MaxCapacity, class.EnrolledCount()))
	}
	class.Name = req.Name
	class.Subject = req.Subject
	class.TeacherName = req.TeacherName
	class.Room = req.Room
	class.Schedule = req.Schedule
	class.GradeLevel = req.GradeLevel
	class.MaxCapacity = req.MaxCapacity
	class.Description = req.Description
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, storeError(err, "class not found", "failed to update class")
	}
	s.invalidate(ctx)
	view := s.view(*class)
	return &view, nil
}

// Delete removes a class record.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "class not found", "failed to delete class")
	}
	s.invalidate(ctx)
	return nil
}

// Enroll adds a student to the class roster. The roster never exceeds the
// class max capacity.
func (s *ClassService) Enroll(ctx context.Context, classID, studentID string) (*ClassView, error) {
	class, err := s.repo.FindByID(ctx, classID)
	if err != nil {
		return nil, storeError(err, "class not found", "failed to load class")
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, storeError(err, "student not found", "failed to load student")
	}
	if class.HasStudent(studentID) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled")
	}
	if class.EnrolledCount() >= class.MaxCapacity {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class is at max capacity")
	}
	class.StudentIDs = append(class.StudentIDs, studentID)
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, storeError(err, "class not found", "failed to update roster")
	}
	s.invalidate(ctx)
	view := s.view(*class)
	return &view, nil
}

// Unenroll removes a student from the class roster.
func (s *ClassService) Unenroll(ctx context.Context, classID, studentID string) (*ClassView, error) {
	class, err := s.repo.FindByID(ctx, classID)
	if err != nil {
		return nil, storeError(err, "class not found", "failed to load class")
	}
	if !class.HasStudent(studentID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not enrolled in class")
	}
	kept := class.StudentIDs[:0]
	for _, sid := range class.StudentIDs {
		if sid != studentID {
			kept = append(kept, sid)
		}
	}
	class.StudentIDs = kept
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, storeError(err, "class not found", "failed to update roster")
	}
	s.invalidate(ctx)
	view := s.view(*class)
	return &view, nil
}

func (s *ClassService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateViews(ctx)
	}
}

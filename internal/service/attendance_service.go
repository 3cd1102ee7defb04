package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/models"
	"github.com/classtrack/classtrack-api/internal/repository"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error)
	ListAll(ctx context.Context) ([]models.Attendance, error)
	ListWeek(ctx context.Context, start time.Time) ([]models.Attendance, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	Create(ctx context.Context, record *models.Attendance) error
	Update(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id string) error
}

type attendanceStudentRepository interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type attendanceClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// AttendanceRequest holds the payload for creating and updating attendance
// records.
type AttendanceRequest struct {
	StudentID string     `json:"student_id" validate:"required"`
	ClassID   string     `json:"class_id" validate:"required"`
	Date      *time.Time `json:"date"`
	Status    string     `json:"status" validate:"required,oneof=present absent late"`
	Notes     string     `json:"notes"`
}

// AttendanceServiceParams bundles the dependencies of AttendanceService.
type AttendanceServiceParams struct {
	Repo      attendanceRepository
	Students  attendanceStudentRepository
	Classes   attendanceClassRepository
	Cache     *CacheService
	Validator *validator.Validate
	Logger    *zap.Logger
	Now       func() time.Time
}

// AttendanceService handles attendance use-cases.
type AttendanceService struct {
	repo      attendanceRepository
	students  attendanceStudentRepository
	classes   attendanceClassRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(params AttendanceServiceParams) *AttendanceService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &AttendanceService{
		repo:      params.Repo,
		students:  params.Students,
		classes:   params.Classes,
		cache:     params.Cache,
		validator: params.Validator,
		logger:    params.Logger,
		now:       params.Now,
	}
}

// List returns attendance records and pagination metadata.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "attendance record not found", "failed to list attendance")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single attendance record.
func (s *AttendanceService) Get(ctx context.Context, id string) (*models.Attendance, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "attendance record not found", "failed to load attendance")
	}
	return record, nil
}

// WeekGrid returns the Monday-start weekday grid for the week containing
// ref, derived from full snapshots and cached until the next mutation.
func (s *AttendanceService) WeekGrid(ctx context.Context, ref time.Time) (*analytics.WeekGrid, bool, error) {
	start := analytics.WeekStart(ref)
	cacheKey := "views:attendance:week:" + start.Format("2006-01-02")
	var cached analytics.WeekGrid
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, false, storeError(err, "student not found", "failed to load students")
	}
	records, err := s.repo.ListWeek(ctx, start)
	if err != nil {
		return nil, false, storeError(err, "attendance record not found", "failed to load attendance")
	}

	grid := analytics.BuildWeekGrid(students, records, ref)
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, grid, 0)
	}
	return &grid, false, nil
}

// Rates returns the present, absent, and late shares over the full history,
// optionally narrowed to one student or class.
func (s *AttendanceService) Rates(ctx context.Context, studentID, classID string) (*analytics.AttendanceRates, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, storeError(err, "attendance record not found", "failed to load attendance")
	}
	if studentID != "" || classID != "" {
		filtered := records[:0]
		for _, r := range records {
			if studentID != "" && r.StudentID != studentID {
				continue
			}
			if classID != "" && r.ClassID != classID {
				continue
			}
			filtered = append(filtered, r)
		}
		records = filtered
	}
	rates := analytics.ComputeRates(records)
	return &rates, nil
}

func (s *AttendanceService) validate(ctx context.Context, req AttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return storeError(err, "student not found", "failed to load student")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		return storeError(err, "class not found", "failed to load class")
	}
	return nil
}

// Create records attendance for a student. At most one record may exist per
// student, class, and date; a second submission is rejected as a conflict.
func (s *AttendanceService) Create(ctx context.Context, req AttendanceRequest) (*models.Attendance, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	record := &models.Attendance{
		StudentID: req.StudentID,
		ClassID:   req.ClassID,
		Date:      s.now().UTC(),
		Status:    models.AttendanceStatus(req.Status),
		Notes:     req.Notes,
	}
	if req.Date != nil {
		record.Date = *req.Date
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateAttendance) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for this student, class, and date")
		}
		return nil, storeError(err, "attendance record not found", "failed to create attendance")
	}
	s.invalidate(ctx)
	return record, nil
}

// Update modifies an existing attendance record.
func (s *AttendanceService) Update(ctx context.Context, id string, req AttendanceRequest) (*models.Attendance, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "attendance record not found", "failed to load attendance")
	}
	record.StudentID = req.StudentID
	record.ClassID = req.ClassID
	record.Status = models.AttendanceStatus(req.Status)
	record.Notes = req.Notes
	if req.Date != nil {
		record.Date = *req.Date
	}
	if err := s.repo.Update(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateAttendance) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for this student, class, and date")
		}
		return nil, storeError(err, "attendance record not found", "failed to update attendance")
	}
	s.invalidate(ctx)
	return record, nil
}

// Delete removes an attendance record.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "attendance record not found", "failed to delete attendance")
	}
	s.invalidate(ctx)
	return nil
}

func (s *AttendanceService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateViews(ctx)
	}
}

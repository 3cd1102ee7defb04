package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/models"
)

const dashboardCacheKey = "views:dashboard"

type dashboardStudentRepository interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type dashboardClassRepository interface {
	ListAll(ctx context.Context) ([]models.Class, error)
}

type dashboardGradeRepository interface {
	ListAll(ctx context.Context) ([]models.Grade, error)
}

type dashboardAttendanceRepository interface {
	ListAll(ctx context.Context) ([]models.Attendance, error)
}

// DashboardServiceParams bundles the dependencies of DashboardService.
type DashboardServiceParams struct {
	Students   dashboardStudentRepository
	Classes    dashboardClassRepository
	Grades     dashboardGradeRepository
	Attendance dashboardAttendanceRepository
	Cache      *CacheService
	Metrics    *MetricsService
	Options    analytics.DashboardOptions
	Logger     *zap.Logger
	Now        func() time.Time
}

// DashboardService composes the landing-page summary from entity snapshots.
// The summary is cached until the next mutation invalidates the view keys.
type DashboardService struct {
	students   dashboardStudentRepository
	classes    dashboardClassRepository
	grades     dashboardGradeRepository
	attendance dashboardAttendanceRepository
	cache      *CacheService
	metrics    *MetricsService
	options    analytics.DashboardOptions
	logger     *zap.Logger
	now        func() time.Time
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &DashboardService{
		students:   params.Students,
		classes:    params.Classes,
		grades:     params.Grades,
		attendance: params.Attendance,
		cache:      params.Cache,
		metrics:    params.Metrics,
		options:    params.Options,
		logger:     params.Logger,
		now:        params.Now,
	}
}

// Summary returns the dashboard view. The boolean indicates whether the
// payload originated from cache.
func (s *DashboardService) Summary(ctx context.Context) (*analytics.DashboardSummary, bool, error) {
	var cached analytics.DashboardSummary
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, false, storeError(err, "student not found", "failed to load students")
	}
	classes, err := s.classes.ListAll(ctx)
	if err != nil {
		return nil, false, storeError(err, "class not found", "failed to load classes")
	}
	grades, err := s.grades.ListAll(ctx)
	if err != nil {
		return nil, false, storeError(err, "grade not found", "failed to load grades")
	}
	attendance, err := s.attendance.ListAll(ctx)
	if err != nil {
		return nil, false, storeError(err, "attendance record not found", "failed to load attendance")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("dashboard_snapshot", time.Since(start))
	}

	summary := analytics.BuildDashboard(students, classes, grades, attendance, s.now().UTC(), s.options)
	if s.metrics != nil {
		s.metrics.RecordUnresolvedReferences(summary.UnresolvedReferences)
	}
	if summary.UnresolvedReferences > 0 {
		s.logger.Warn("dashboard resolved sentinel references",
			zap.Int("unresolved", summary.UnresolvedReferences))
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, dashboardCacheKey, summary, 0)
	}
	return &summary, false, nil
}

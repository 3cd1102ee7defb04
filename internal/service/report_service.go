package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/models"
)

const (
	reportChartsCacheKey      = "views:reports:charts"
	reportPerformanceCacheKey = "views:reports:performance"
)

// ReportServiceParams bundles the dependencies of ReportService.
type ReportServiceParams struct {
	Students   dashboardStudentRepository
	Classes    dashboardClassRepository
	Grades     dashboardGradeRepository
	Attendance dashboardAttendanceRepository
	Cache      *CacheService
	Metrics    *MetricsService
	Thresholds analytics.CapacityThresholds
	Logger     *zap.Logger
}

// ReportService derives the chart series and class performance overview
// shown on the reports screen.
type ReportService struct {
	students   dashboardStudentRepository
	classes    dashboardClassRepository
	grades     dashboardGradeRepository
	attendance dashboardAttendanceRepository
	cache      *CacheService
	metrics    *MetricsService
	thresholds analytics.CapacityThresholds
	logger     *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(params ReportServiceParams) *ReportService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Thresholds == (analytics.CapacityThresholds{}) {
		params.Thresholds = analytics.DefaultCapacityThresholds
	}
	return &ReportService{
		students:   params.Students,
		classes:    params.Classes,
		grades:     params.Grades,
		attendance: params.Attendance,
		cache:      params.Cache,
		metrics:    params.Metrics,
		thresholds: params.Thresholds,
		logger:     params.Logger,
	}
}

// Charts returns the three report projections. The boolean indicates
// whether the payload originated from cache.
func (s *ReportService) Charts(ctx context.Context) (*analytics.ReportCharts, bool, error) {
	var cached analytics.ReportCharts
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, reportChartsCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, false, storeError(err, "student not found", "failed to load students")
	}
	attendance, err := s.attendance.ListAll(ctx)
	if err != nil {
		return nil, false, storeError(err, "attendance record not found", "failed to load attendance")
	}
	grades, err := s.grades.ListAll(ctx)
	if err != nil {
		return nil, false, storeError(err, "grade not found", "failed to load grades")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("report_charts_snapshot", time.Since(start))
	}

	charts := analytics.BuildReportCharts(students, attendance, grades)
	if s.cache != nil {
		_ = s.cache.Set(ctx, reportChartsCacheKey, charts, 0)
	}
	return &charts, false, nil
}

// ClassPerformance returns the per-class overview rows. The boolean
// indicates whether the payload originated from cache.
func (s *ReportService) ClassPerformance(ctx context.Context) ([]analytics.ClassPerformance, bool, error) {
	var cached []analytics.ClassPerformance
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, reportPerformanceCacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
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

	rows := analytics.BuildClassPerformance(classes, grades, attendance, s.thresholds)
	if s.cache != nil {
		_ = s.cache.Set(ctx, reportPerformanceCacheKey, rows, 0)
	}
	return rows, false, nil
}

// Snapshot exposes the instrumentation snapshot for the system endpoint.
func (s *ReportService) Snapshot() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

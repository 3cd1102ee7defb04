package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/models"
)

type fakeReportSrv struct {
	charts      *analytics.ReportCharts
	performance []analytics.ClassPerformance
	hit         bool
	err         error
	snapshot    models.SystemMetrics
}

func (f *fakeReportSrv) Charts(context.Context) (*analytics.ReportCharts, bool, error) {
	return f.charts, f.hit, f.err
}

func (f *fakeReportSrv) ClassPerformance(context.Context) ([]analytics.ClassPerformance, bool, error) {
	return f.performance, f.hit, f.err
}

func (f *fakeReportSrv) Snapshot() models.SystemMetrics {
	return f.snapshot
}

func TestReportHandlerCharts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&fakeReportSrv{
		charts: &analytics.ReportCharts{
			GradeDistribution: analytics.Series{Labels: []string{"A", "B", "C", "D", "F"}, Values: []int{3, 2, 1, 0, 0}},
		},
		hit: true,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/charts", nil)

	handler.Charts(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	require.Contains(t, envelope.Data, "grade_distribution")
}

func TestReportHandlerClassPerformance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&fakeReportSrv{
		performance: []analytics.ClassPerformance{{ClassID: "c1", ClassName: "Algebra I"}},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/performance", nil)

	handler.ClassPerformance(c)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReportHandlerNilService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/charts", nil)

	handler.Charts(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/middleware"
	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
	"github.com/classtrack/classtrack-api/pkg/response"
)

type reportService interface {
	Charts(ctx context.Context) (*analytics.ReportCharts, bool, error)
	ClassPerformance(ctx context.Context) ([]analytics.ClassPerformance, bool, error)
	Snapshot() models.SystemMetrics
}

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Charts godoc
// @Summary Chart series for the reports screen
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/charts [get]
func (h *ReportHandler) Charts(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	charts, cacheHit, err := h.service.Charts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, charts, nil, middleware.ExtractMeta(c))
}

// ClassPerformance godoc
// @Summary Per-class performance rows
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/performance [get]
func (h *ReportHandler) ClassPerformance(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	rows, cacheHit, err := h.service.ClassPerformance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

// System godoc
// @Summary Runtime counters snapshot
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/system [get]
func (h *ReportHandler) System(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Snapshot(), nil)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/classtrack/classtrack-api/api/swagger"
	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/handler"
	"github.com/classtrack/classtrack-api/internal/middleware"
	"github.com/classtrack/classtrack-api/internal/repository"
	"github.com/classtrack/classtrack-api/internal/service"
	"github.com/classtrack/classtrack-api/pkg/cache"
	"github.com/classtrack/classtrack-api/pkg/config"
	"github.com/classtrack/classtrack-api/pkg/database"
	"github.com/classtrack/classtrack-api/pkg/jobs"
	"github.com/classtrack/classtrack-api/pkg/logger"
	corsmiddleware "github.com/classtrack/classtrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classtrack/classtrack-api/pkg/middleware/requestid"
	"github.com/classtrack/classtrack-api/pkg/storage"
)

// @title ClassTrack API
// @version 1.0.0
// @description School administration backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, derived views run uncached", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, true)
		}
	}

	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	validate := validator.New()

	thresholds := analytics.CapacityThresholds{
		DangerPct:  int(cfg.Classes.CapacityDangerPct),
		WarningPct: int(cfg.Classes.CapacityWarningPct),
	}

	docStorage, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("document storage init failed", "error", err)
	}

	studentSvc := service.NewStudentService(service.StudentServiceParams{
		Repo:       studentRepo,
		Grades:     gradeRepo,
		Attendance: attendanceRepo,
		Documents:  documentRepo,
		Cache:      cacheSvc,
		Metrics:    metrics,
		Validator:  validate,
		Logger:     logr,
	})
	classSvc := service.NewClassService(classRepo, studentRepo, cacheSvc, thresholds, validate, logr)
	gradeSvc := service.NewGradeService(service.GradeServiceParams{
		Repo:      gradeRepo,
		Students:  studentRepo,
		Classes:   classRepo,
		Cache:     cacheSvc,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
	})
	attendanceSvc := service.NewAttendanceService(service.AttendanceServiceParams{
		Repo:      attendanceRepo,
		Students:  studentRepo,
		Classes:   classRepo,
		Cache:     cacheSvc,
		Validator: validate,
		Logger:    logr,
	})
	documentSvc := service.NewDocumentService(service.DocumentServiceParams{
		Repo:     documentRepo,
		Students: studentRepo,
		Storage:  docStorage,
		Cache:    cacheSvc,
		Logger:   logr,
	})
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:   studentRepo,
		Classes:    classRepo,
		Grades:     gradeRepo,
		Attendance: attendanceRepo,
		Cache:      cacheSvc,
		Metrics:    metrics,
		Options: analytics.DashboardOptions{
			AttendanceWindow: cfg.Dashboard.AttendanceWindow,
			GradeWindow:      cfg.Dashboard.GradeWindow,
			GradeEvents:      cfg.Dashboard.RecentGradeEvents,
			AbsenceEvents:    cfg.Dashboard.RecentAbsenceEvents,
			FeedLimit:        cfg.Dashboard.ActivityFeedLimit,
			OverviewLimit:    cfg.Dashboard.ClassOverviewLimit,
			Thresholds:       thresholds,
		},
		Logger: logr,
	})
	reportSvc := service.NewReportService(service.ReportServiceParams{
		Students:   studentRepo,
		Classes:    classRepo,
		Grades:     gradeRepo,
		Attendance: attendanceRepo,
		Cache:      cacheSvc,
		Metrics:    metrics,
		Thresholds: thresholds,
		Logger:     logr,
	})

	var exportJobSvc *service.ExportJobService
	if cfg.Exports.Enabled {
		exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("export storage init failed", "error", err)
		}
		exportJobRepo := repository.NewExportJobRepository(db)
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exporter := service.NewExportService(service.ExportServiceParams{
			Students:   studentRepo,
			Classes:    classRepo,
			Grades:     gradeRepo,
			Attendance: attendanceRepo,
			Storage:    exportStorage,
			Signer:     signer,
			Config: service.ExportConfig{
				APIPrefix: cfg.APIPrefix,
				ResultTTL: cfg.Exports.SignedURLTTL,
			},
			Logger: logr,
		})
		worker := service.NewExportWorker(exportJobRepo, exporter, cfg.Exports.WorkerRetries, logr)
		queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		exportJobSvc = service.NewExportJobService(exportJobRepo, queue, exporter, logr, service.ExportJobServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportJobSvc.RecoverPendingJobs(ctx)
		exportJobSvc.StartCleanup(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeServices{
		students:   studentSvc,
		classes:    classSvc,
		grades:     gradeSvc,
		attendance: attendanceSvc,
		documents:  documentSvc,
		dashboard:  dashboardSvc,
		reports:    reportSvc,
		exports:    exportJobSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("shutdown incomplete", "error", err)
	}
}

type routeServices struct {
	students   *service.StudentService
	classes    *service.ClassService
	grades     *service.GradeService
	attendance *service.AttendanceService
	documents  *service.DocumentService
	dashboard  *service.DashboardService
	reports    *service.ReportService
	exports    *service.ExportJobService
}

func registerRoutes(api *gin.RouterGroup, svcs routeServices) {
	students := handler.NewStudentHandler(svcs.students)
	api.GET("/students", students.List)
	api.POST("/students", students.Create)
	api.GET("/students/form", students.FormSchema)
	api.GET("/students/:id", students.Get)
	api.GET("/students/:id/profile", students.Profile)
	api.PUT("/students/:id", students.Update)
	api.DELETE("/students/:id", students.Delete)

	classes := handler.NewClassHandler(svcs.classes)
	api.GET("/classes", classes.List)
	api.POST("/classes", classes.Create)
	api.GET("/classes/:id", classes.Get)
	api.PUT("/classes/:id", classes.Update)
	api.DELETE("/classes/:id", classes.Delete)
	api.POST("/classes/:id/enroll", classes.Enroll)
	api.DELETE("/classes/:id/students/:studentId", classes.Unenroll)

	grades := handler.NewGradeHandler(svcs.grades)
	api.GET("/grades", grades.List)
	api.GET("/grades/gradebook", grades.Gradebook)
	api.POST("/grades", grades.Create)
	api.GET("/grades/:id", grades.Get)
	api.PUT("/grades/:id", grades.Update)
	api.DELETE("/grades/:id", grades.Delete)

	attendance := handler.NewAttendanceHandler(svcs.attendance)
	api.GET("/attendance", attendance.List)
	api.GET("/attendance/week", attendance.Week)
	api.GET("/attendance/rates", attendance.Rates)
	api.POST("/attendance", attendance.Create)
	api.GET("/attendance/:id", attendance.Get)
	api.PUT("/attendance/:id", attendance.Update)
	api.DELETE("/attendance/:id", attendance.Delete)

	documents := handler.NewDocumentHandler(svcs.documents)
	api.GET("/documents", documents.List)
	api.POST("/documents", documents.Upload)
	api.GET("/documents/:id", documents.Get)
	api.GET("/documents/:id/download", documents.Download)
	api.DELETE("/documents/:id", documents.Delete)

	dashboard := handler.NewDashboardHandler(svcs.dashboard)
	api.GET("/dashboard", dashboard.Summary)

	reports := handler.NewReportHandler(svcs.reports)
	api.GET("/reports/charts", reports.Charts)
	api.GET("/reports/performance", reports.ClassPerformance)
	api.GET("/reports/system", reports.System)

	if svcs.exports != nil {
		exports := handler.NewExportHandler(svcs.exports)
		api.GET("/exports", exports.List)
		api.POST("/exports", exports.Create)
		api.GET("/exports/:id", exports.Status)
		api.GET("/exports/download/:token", exports.Download)
	}
}

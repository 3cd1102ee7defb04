package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/models"
	"github.com/classtrack/classtrack-api/pkg/export"
	"github.com/classtrack/classtrack-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheetName string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService builds export datasets from entity snapshots and persists
// the rendered files.
type ExportService struct {
	students   dashboardStudentRepository
	classes    dashboardClassRepository
	grades     dashboardGradeRepository
	attendance dashboardAttendanceRepository
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	xlsx       xlsxRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// ExportServiceParams bundles the dependencies of ExportService.
type ExportServiceParams struct {
	Students   dashboardStudentRepository
	Classes    dashboardClassRepository
	Grades     dashboardGradeRepository
	Attendance dashboardAttendanceRepository
	Storage    fileStorage
	Signer     *storage.SignedURLSigner
	Config     ExportConfig
	Logger     *zap.Logger
}

// NewExportService constructs an ExportService with default renderers.
func NewExportService(params ExportServiceParams) *ExportService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Config.ResultTTL <= 0 {
		params.Config.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		students:   params.Students,
		classes:    params.Classes,
		grades:     params.Grades,
		attendance: params.Attendance,
		storage:    params.Storage,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		xlsx:       export.NewXLSXExporter(),
		signer:     params.Signer,
		logger:     params.Logger,
		cfg:        params.Config,
	}
}

// Generate builds the dataset named by the job and stores the rendered file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	case models.ExportFormatXLSX:
		payload, err = s.xlsx.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/exports/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured
// result TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scope := "all"
	if job.Params.ClassID != nil && *job.Params.ClassID != "" {
		scope = sanitizeFilename(*job.Params.ClassID)
	}
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Kind)), scope, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	switch job.Kind {
	case models.ExportKindRoster:
		return s.buildRosterDataset(ctx)
	case models.ExportKindGradebook:
		return s.buildGradebookDataset(ctx, job.Params)
	case models.ExportKindAttendance:
		return s.buildAttendanceDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export kind %s", job.Kind)
	}
}

func (s *ExportService) buildRosterDataset(ctx context.Context) (export.Dataset, string, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		rows = append(rows, map[string]string{
			"Name":        st.FullName(),
			"Email":       st.Email,
			"Grade Level": st.GradeLevel,
			"Status":      string(st.Status),
			"Enrolled":    st.EnrollmentDate.Format("2006-01-02"),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Name", "Email", "Grade Level", "Status", "Enrolled"},
		Rows:    rows,
	}
	return dataset, "Student Roster", nil
}

func (s *ExportService) buildGradebookDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	grades, err := s.grades.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	classes, err := s.classes.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	if params.ClassID != nil && *params.ClassID != "" {
		filtered := grades[:0]
		for _, g := range grades {
			if g.ClassID == *params.ClassID {
				filtered = append(filtered, g)
			}
		}
		grades = filtered
	}

	idx := analytics.NewIndex(students, classes)
	book := analytics.BuildGradebook(idx, grades)
	rows := make([]map[string]string, 0, len(book.Rows))
	for _, row := range book.Rows {
		rows = append(rows, map[string]string{
			"Student":    row.StudentName,
			"Class":      row.ClassName,
			"Assignment": row.Grade.AssignmentName,
			"Score":      fmt.Sprintf("%.1f / %.1f", row.Grade.Score, row.Grade.MaxScore),
			"Percentage": fmt.Sprintf("%d", row.Percentage),
			"Letter":     row.Letter,
			"Date":       row.Grade.Date.Format("2006-01-02"),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Student", "Class", "Assignment", "Score", "Percentage", "Letter", "Date"},
		Rows:    rows,
	}
	return dataset, "Gradebook", nil
}

func (s *ExportService) buildAttendanceDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	records, err := s.attendance.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	classes, err := s.classes.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	if params.ClassID != nil && *params.ClassID != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.ClassID == *params.ClassID {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	idx := analytics.NewIndex(students, classes)
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"Student": idx.StudentName(r.StudentID),
			"Class":   idx.ClassName(r.ClassID),
			"Date":    r.Date.Format("2006-01-02"),
			"Status":  string(r.Status),
			"Notes":   r.Notes,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Student", "Class", "Date", "Status", "Notes"},
		Rows:    rows,
	}
	return dataset, "Attendance Log", nil
}

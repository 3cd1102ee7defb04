package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type studentGradeRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error)
}

type studentAttendanceRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error)
}

type studentDocumentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Document, error)
}

// StudentRequest holds the payload for creating and updating students.
type StudentRequest struct {
	FirstName      string     `json:"first_name" validate:"required"`
	LastName       string     `json:"last_name" validate:"required"`
	Email          string     `json:"email" validate:"required,email"`
	Phone          string     `json:"phone"`
	GradeLevel     string     `json:"grade_level" validate:"required"`
	Status         string     `json:"status" validate:"omitempty,oneof=Active Inactive"`
	EnrollmentDate *time.Time `json:"enrollment_date"`
	Address        string     `json:"address"`
	ParentContact  string     `json:"parent_contact"`

	Newsletter         bool     `json:"newsletter"`
	TermsAgreed        bool     `json:"terms_agreed"`
	TuitionFee         *float64 `json:"tuition_fee" validate:"omitempty,gte=0"`
	ScholarshipAmount  *float64 `json:"scholarship_amount" validate:"omitempty,gte=0"`
	StudyMode          string   `json:"study_mode" validate:"omitempty,oneof=Online Offline"`
	StudyType          string   `json:"study_type" validate:"omitempty,oneof=Full-time Part-time"`
	Website            string   `json:"website" validate:"omitempty,url"`
	SocialProfile      string   `json:"social_profile" validate:"omitempty,url"`
	SatisfactionRating *int     `json:"satisfaction_rating" validate:"omitempty,min=1,max=5"`
	InstructorRating   *int     `json:"instructor_rating" validate:"omitempty,min=1,max=5"`
	Interests          []string `json:"interests"`
	Skills             []string `json:"skills"`
}

// StudentServiceParams bundles the dependencies of StudentService.
type StudentServiceParams struct {
	Repo       studentRepository
	Grades     studentGradeRepository
	Attendance studentAttendanceRepository
	Documents  studentDocumentRepository
	Cache      *CacheService
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
	Now        func() time.Time
}

// StudentService handles student use-cases.
type StudentService struct {
	repo       studentRepository
	grades     studentGradeRepository
	attendance studentAttendanceRepository
	documents  studentDocumentRepository
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(params StudentServiceParams) *StudentService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &StudentService{
		repo:       params.Repo,
		grades:     params.Grades,
		attendance: params.Attendance,
		documents:  params.Documents,
		cache:      params.Cache,
		metrics:    params.Metrics,
		validator:  params.Validator,
		logger:     params.Logger,
		now:        params.Now,
	}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "student not found", "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// Profile returns the derived summary for a student's detail page.
func (s *StudentService) Profile(ctx context.Context, id string) (*analytics.StudentProfile, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load student")
	}
	grades, err := s.grades.ListByStudent(ctx, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load grades")
	}
	attendance, err := s.attendance.ListByStudent(ctx, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load attendance")
	}
	documents, err := s.documents.ListByStudent(ctx, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load documents")
	}
	profile := analytics.BuildStudentProfile(*student, grades, attendance, documents)
	return &profile, nil
}

func (s *StudentService) validate(req StudentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !models.ValidGradeLevel(req.GradeLevel) {
		return appErrors.Clone(appErrors.ErrValidation, "grade level must be K or 1 through 12")
	}
	// Per-kind checks come from the form schema, so the API rejects the
	// same values the rendered form would. Required and default handling
	// stays with the struct tags, hence empty values are skipped here.
	values := req.formValues()
	for _, field := range models.StudentProfileFields {
		raw, ok := values[field.Name]
		if !ok || raw == "" {
			continue
		}
		if err := field.Validate(raw); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
	}
	return nil
}

// formValues flattens the request into the raw string representation the
// form schema validates.
func (r StudentRequest) formValues() map[string]string {
	values := map[string]string{
		"first_name":     r.FirstName,
		"last_name":      r.LastName,
		"email":          r.Email,
		"phone":          r.Phone,
		"grade_level":    r.GradeLevel,
		"status":         r.Status,
		"newsletter":     strconv.FormatBool(r.Newsletter),
		"terms_agreed":   strconv.FormatBool(r.TermsAgreed),
		"study_mode":     r.StudyMode,
		"study_type":     r.StudyType,
		"website":        r.Website,
		"social_profile": r.SocialProfile,
		"interests":      strings.Join(r.Interests, ","),
		"skills":         strings.Join(r.Skills, ","),
	}
	if r.TuitionFee != nil {
		values["tuition_fee"] = strconv.FormatFloat(*r.TuitionFee, 'f', -1, 64)
	}
	if r.ScholarshipAmount != nil {
		values["scholarship_amount"] = strconv.FormatFloat(*r.ScholarshipAmount, 'f', -1, 64)
	}
	if r.SatisfactionRating != nil {
		values["satisfaction_rating"] = strconv.Itoa(*r.SatisfactionRating)
	}
	if r.InstructorRating != nil {
		values["instructor_rating"] = strconv.Itoa(*r.InstructorRating)
	}
	return values
}

func (s *StudentService) apply(student *models.Student, req StudentRequest) {
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Email = req.Email
	student.Phone = req.Phone
	student.GradeLevel = req.GradeLevel
	student.Address = req.Address
	student.ParentContact = req.ParentContact
	student.Newsletter = req.Newsletter
	student.TermsAgreed = req.TermsAgreed
	student.TuitionFee = req.TuitionFee
	student.ScholarshipAmount = req.ScholarshipAmount
	student.StudyMode = models.StudyMode(req.StudyMode)
	student.StudyType = models.StudyType(req.StudyType)
	student.Website = req.Website
	student.SocialProfile = req.SocialProfile
	student.SatisfactionRating = req.SatisfactionRating
	student.InstructorRating = req.InstructorRating
	student.Interests = req.Interests
	student.Skills = req.Skills
	if req.Status != "" {
		student.Status = models.StudentStatus(req.Status)
	}
	if req.EnrollmentDate != nil {
		student.EnrollmentDate = *req.EnrollmentDate
	}
}

// Create registers a new student. Status defaults to Active and the
// enrollment date defaults to now when omitted; the stored record with all
// server-assigned fields is returned.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, storeError(err, "student not found", "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	student := &models.Student{Status: models.StudentStatusActive, EnrollmentDate: s.now().UTC()}
	s.apply(student, req)
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, storeError(err, "student not found", "failed to create student")
	}
	s.invalidate(ctx)
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) (*models.Student, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load student")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	s.apply(student, req)
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, storeError(err, "student not found", "failed to update student")
	}
	s.invalidate(ctx)
	return student, nil
}

// Delete removes a student record.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "student not found", "failed to delete student")
	}
	s.invalidate(ctx)
	return nil
}

func (s *StudentService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateViews(ctx)
	}
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type mockClassRepo struct {
	classes map[string]models.Class
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	out := make([]models.Class, 0, len(m.classes))
	for _, c := range m.classes {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockClassRepo) ListAll(ctx context.Context) ([]models.Class, error) {
	out, _, err := m.List(ctx, models.ClassFilter{})
	return out, err
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	if m.classes == nil {
		m.classes = make(map[string]models.Class)
	}
	if class.ID == "" {
		class.ID = "generated"
	}
	m.classes[class.ID] = *class
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class) error {
	if _, ok := m.classes[class.ID]; !ok {
		return sql.ErrNoRows
	}
	m.classes[class.ID] = *class
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.classes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.classes, id)
	return nil
}

type mockClassStudents struct{ known map[string]bool }

func (m *mockClassStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.known[id] {
		return &models.Student{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

func newClassService(repo *mockClassRepo, students *mockClassStudents) *ClassService {
	if students == nil {
		students = &mockClassStudents{known: map[string]bool{}}
	}
	return NewClassService(repo, students, nil, analytics.DefaultCapacityThresholds, validator.New(), nil)
}

func validClassRequest() ClassRequest {
	return ClassRequest{
		Name:        "Algebra I",
		Subject:     "Math",
		TeacherName: "Mr. Diaz",
		GradeLevel:  "5",
		MaxCapacity: 20,
	}
}

func TestClassServiceCreate(t *testing.T) {
	repo := &mockClassRepo{}
	svc := newClassService(repo, nil)

	view, err := svc.Create(context.Background(), validClassRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, 0, view.CapacityPercentage)
	assert.Equal(t, analytics.BadgeSuccess, view.CapacityTier)
}

func TestClassServiceCreateRejectsZeroCapacity(t *testing.T) {
	svc := newClassService(&mockClassRepo{}, nil)

	req := validClassRequest()
	req.MaxCapacity = 0
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
}

func TestClassServiceEnrollEnforcesCapacity(t *testing.T) {
	repo := &mockClassRepo{classes: map[string]models.Class{
		"c1": {ID: "c1", Name: "Full", MaxCapacity: 1, StudentIDs: []string{"s1"}},
	}}
	students := &mockClassStudents{known: map[string]bool{"s1": true, "s2": true}}
	svc := newClassService(repo, students)

	_, err := svc.Enroll(context.Background(), "c1", "s2")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestClassServiceEnrollRejectsDuplicate(t *testing.T) {
	repo := &mockClassRepo{classes: map[string]models.Class{
		"c1": {ID: "c1", MaxCapacity: 5, StudentIDs: []string{"s1"}},
	}}
	students := &mockClassStudents{known: map[string]bool{"s1": true}}
	svc := newClassService(repo, students)

	_, err := svc.Enroll(context.Background(), "c1", "s1")
	require.Error(t, err)
}

func TestClassServiceEnrollAndUnenroll(t *testing.T) {
	repo := &mockClassRepo{classes: map[string]models.Class{
		"c1": {ID: "c1", MaxCapacity: 2, StudentIDs: []string{}},
	}}
	students := &mockClassStudents{known: map[string]bool{"s1": true}}
	svc := newClassService(repo, students)

	view, err := svc.Enroll(context.Background(), "c1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.EnrolledCount())
	assert.Equal(t, 50, view.CapacityPercentage)

	view, err = svc.Unenroll(context.Background(), "c1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.EnrolledCount())
}

func TestClassServiceUpdateRejectsShrinkBelowRoster(t *testing.T) {
	repo := &mockClassRepo{classes: map[string]models.Class{
		"c1": {ID: "c1", Name: "Algebra I", Subject: "Math", TeacherName: "Mr. Diaz", GradeLevel: "5", MaxCapacity: 20, StudentIDs: []string{"s1", "s2", "s3"}},
	}}
	svc := newClassService(repo, nil)

	req := validClassRequest()
	req.MaxCapacity = 2
	_, err := svc.Update(context.Background(), "c1", req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestClassServiceCapacityTier(t *testing.T) {
	repo := &mockClassRepo{classes: map[string]models.Class{
		"c1": {ID: "c1", MaxCapacity: 20, StudentIDs: make([]string, 19)},
	}}
	svc := newClassService(repo, nil)

	view, err := svc.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 95, view.CapacityPercentage)
	assert.Equal(t, analytics.BadgeDanger, view.CapacityTier)
}

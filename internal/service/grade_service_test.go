package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/analytics"
	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type mockGradeRepo struct {
	grades   map[string]models.Grade
	listErr  error
	nextID   int
	listAlls int
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error) {
	all, err := m.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	return all, len(all), nil
}

func (m *mockGradeRepo) ListAll(ctx context.Context) ([]models.Grade, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.listAlls++
	out := make([]models.Grade, 0, len(m.grades))
	for _, g := range m.grades {
		out = append(out, g)
	}
	return out, nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	if g, ok := m.grades[id]; ok {
		return &g, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	if m.grades == nil {
		m.grades = make(map[string]models.Grade)
	}
	if grade.ID == "" {
		m.nextID++
		grade.ID = "g" + string(rune('0'+m.nextID))
	}
	m.grades[grade.ID] = *grade
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	if _, ok := m.grades[grade.ID]; !ok {
		return sql.ErrNoRows
	}
	m.grades[grade.ID] = *grade
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.grades[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.grades, id)
	return nil
}

type mockGradeStudents struct{ students []models.Student }

func (m *mockGradeStudents) ListAll(ctx context.Context) ([]models.Student, error) {
	return m.students, nil
}

func (m *mockGradeStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	for _, s := range m.students {
		if s.ID == id {
			copied := s
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockGradeClasses struct{ classes []models.Class }

func (m *mockGradeClasses) ListAll(ctx context.Context) ([]models.Class, error) {
	return m.classes, nil
}

func (m *mockGradeClasses) FindByID(ctx context.Context, id string) (*models.Class, error) {
	for _, c := range m.classes {
		if c.ID == id {
			copied := c
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newGradeService(repo *mockGradeRepo) *GradeService {
	return NewGradeService(GradeServiceParams{
		Repo:     repo,
		Students: &mockGradeStudents{students: []models.Student{{ID: "s1", FirstName: "Ana", LastName: "Lopez"}}},
		Classes:  &mockGradeClasses{classes: []models.Class{{ID: "c1", Name: "Algebra I"}}},
		Now:      func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) },
	})
}

func TestGradeServiceCreateDefaultsDate(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := newGradeService(repo)

	grade, err := svc.Create(context.Background(), GradeRequest{
		StudentID:      "s1",
		ClassID:        "c1",
		AssignmentName: "Quiz 1",
		Score:          45,
		MaxScore:       50,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), grade.Date)
	assert.NotEmpty(t, grade.ID)
}

func TestGradeServiceCreateRejectsScoreAboveMax(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{})

	_, err := svc.Create(context.Background(), GradeRequest{
		StudentID:      "s1",
		ClassID:        "c1",
		AssignmentName: "Quiz 1",
		Score:          60,
		MaxScore:       50,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGradeServiceCreateUnknownStudent(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{})

	_, err := svc.Create(context.Background(), GradeRequest{
		StudentID:      "missing",
		ClassID:        "c1",
		AssignmentName: "Quiz 1",
		Score:          10,
		MaxScore:       20,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGradeServiceGradebook(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]models.Grade{
		"g1": {ID: "g1", StudentID: "s1", ClassID: "c1", AssignmentName: "Quiz 1", Score: 45, MaxScore: 50},
	}}
	svc := newGradeService(repo)

	book, cached, err := svc.Gradebook(context.Background(), models.GradeFilter{})
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, book.Rows, 1)
	assert.Equal(t, "Ana Lopez", book.Rows[0].StudentName)
	assert.Equal(t, "Algebra I", book.Rows[0].ClassName)
	assert.Equal(t, 90, book.Rows[0].Percentage)
	assert.Equal(t, "A", book.Rows[0].Letter)
	assert.Equal(t, analytics.BadgeSuccess, book.Rows[0].Badge)
}

func TestGradeServiceGradebookFiltersByClass(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]models.Grade{
		"g1": {ID: "g1", StudentID: "s1", ClassID: "c1", Score: 45, MaxScore: 50},
		"g2": {ID: "g2", StudentID: "s1", ClassID: "other", Score: 30, MaxScore: 50},
	}}
	svc := newGradeService(repo)

	book, _, err := svc.Gradebook(context.Background(), models.GradeFilter{ClassID: "c1"})
	require.NoError(t, err)
	require.Len(t, book.Rows, 1)
	assert.Equal(t, "c1", book.Rows[0].Grade.ClassID)
}

func TestGradeServiceUpdateNotFound(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{})

	_, err := svc.Update(context.Background(), "missing", GradeRequest{
		StudentID:      "s1",
		ClassID:        "c1",
		AssignmentName: "Quiz 1",
		Score:          10,
		MaxScore:       20,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

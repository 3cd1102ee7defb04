package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/models"
	"github.com/classtrack/classtrack-api/internal/repository"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
	"github.com/classtrack/classtrack-api/pkg/jobs"
)

type mockExportJobStore struct {
	jobs   map[string]models.ExportJob
	nextID int
}

func (m *mockExportJobStore) Create(ctx context.Context, job *models.ExportJob) error {
	if m.jobs == nil {
		m.jobs = make(map[string]models.ExportJob)
	}
	if job.ID == "" {
		m.nextID++
		job.ID = "job" + string(rune('0'+m.nextID))
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	m.jobs[job.ID] = *job
	return nil
}

func (m *mockExportJobStore) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	if j, ok := m.jobs[id]; ok {
		return &j, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExportJobStore) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	m.jobs[id] = job
	return nil
}

func (m *mockExportJobStore) ListRecent(ctx context.Context, limit int) ([]models.ExportJob, error) {
	out := make([]models.ExportJob, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (m *mockExportJobStore) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	var out []models.ExportJob
	for _, j := range m.jobs {
		if j.Status == models.ExportStatusQueued {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *mockExportJobStore) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	return nil, nil
}

type mockDispatcher struct {
	enqueued []jobs.Job
	err      error
}

func (m *mockDispatcher) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

type mockExportGenerator struct {
	result *ExportResult
	err    error
	calls  int
}

func (m *mockExportGenerator) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestExportJobServiceCreateJob(t *testing.T) {
	store := &mockExportJobStore{}
	queue := &mockDispatcher{}
	svc := NewExportJobService(store, queue, nil, nil, ExportJobServiceConfig{})

	status, err := svc.CreateJob(context.Background(), ExportRequest{
		Kind:   models.ExportKindRoster,
		Format: models.ExportFormatCSV,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, status.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, status.ID, queue.enqueued[0].ID)
}

func TestExportJobServiceCreateJobRejectsUnknownKind(t *testing.T) {
	svc := NewExportJobService(&mockExportJobStore{}, &mockDispatcher{}, nil, nil, ExportJobServiceConfig{})

	_, err := svc.CreateJob(context.Background(), ExportRequest{Kind: "everything", Format: models.ExportFormatCSV})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportJobServiceCreateJobEnqueueFailure(t *testing.T) {
	store := &mockExportJobStore{}
	queue := &mockDispatcher{err: errors.New("queue full")}
	svc := NewExportJobService(store, queue, nil, nil, ExportJobServiceConfig{})

	_, err := svc.CreateJob(context.Background(), ExportRequest{
		Kind:   models.ExportKindGradebook,
		Format: models.ExportFormatPDF,
	})
	require.Error(t, err)
	require.Len(t, store.jobs, 1)
	for _, job := range store.jobs {
		assert.Equal(t, models.ExportStatusFailed, job.Status)
		require.NotNil(t, job.ErrorMessage)
	}
}

func TestExportJobServiceRecoverPendingJobs(t *testing.T) {
	store := &mockExportJobStore{jobs: map[string]models.ExportJob{
		"stale":    {ID: "stale", Kind: models.ExportKindRoster, Status: models.ExportStatusQueued},
		"finished": {ID: "finished", Kind: models.ExportKindRoster, Status: models.ExportStatusFinished},
	}}
	queue := &mockDispatcher{}
	svc := NewExportJobService(store, queue, nil, nil, ExportJobServiceConfig{})

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "stale", queue.enqueued[0].ID)
}

func TestExportWorkerHandleSuccess(t *testing.T) {
	store := &mockExportJobStore{jobs: map[string]models.ExportJob{
		"job1": {ID: "job1", Kind: models.ExportKindRoster, Status: models.ExportStatusQueued},
	}}
	gen := &mockExportGenerator{result: &ExportResult{URL: "/api/v1/exports/download/tok123"}}
	worker := NewExportWorker(store, gen, 3, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job1", Attempt: 1})
	require.NoError(t, err)
	job := store.jobs["job1"]
	assert.Equal(t, models.ExportStatusFinished, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ResultURL)
	assert.Equal(t, "/api/v1/exports/download/tok123", *job.ResultURL)
	require.NotNil(t, job.FinishedAt)
}

func TestExportWorkerHandleRequeuesOnFailure(t *testing.T) {
	store := &mockExportJobStore{jobs: map[string]models.ExportJob{
		"job1": {ID: "job1", Kind: models.ExportKindRoster, Status: models.ExportStatusQueued},
	}}
	gen := &mockExportGenerator{err: errors.New("render failed")}
	worker := NewExportWorker(store, gen, 3, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job1", Attempt: 1})
	require.Error(t, err)
	job := store.jobs["job1"]
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	assert.Equal(t, 0, job.Progress)
}

func TestExportWorkerHandleFailsAfterMaxRetries(t *testing.T) {
	store := &mockExportJobStore{jobs: map[string]models.ExportJob{
		"job1": {ID: "job1", Kind: models.ExportKindRoster, Status: models.ExportStatusQueued},
	}}
	gen := &mockExportGenerator{err: errors.New("render failed")}
	worker := NewExportWorker(store, gen, 3, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job1", Attempt: 3})
	require.Error(t, err)
	job := store.jobs["job1"]
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "render failed", *job.ErrorMessage)
}

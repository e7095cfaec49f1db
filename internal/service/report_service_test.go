package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/unitrack-api/internal/dto"
	"github.com/noah-isme/unitrack-api/internal/models"
	"github.com/noah-isme/unitrack-api/internal/repository"
	"github.com/noah-isme/unitrack-api/pkg/cache"
	"github.com/noah-isme/unitrack-api/pkg/jobs"
)

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type exportStub struct {
	result *ExportResult
	err    error
}

func (e exportStub) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

type reportFixture struct {
	svc      *ReportService
	repo     *repository.ReportJobRepository
	queue    *queueStub
	exporter *ExportService
	store    *memoryStore
}

func newReportFixture(t *testing.T) reportFixture {
	t.Helper()
	store := newMemoryStore()
	repo := repository.NewReportJobRepository(cache.NewMemory(0))
	queue := &queueStub{}
	exporter, _ := newExportServiceForTest(t, store)
	svc := NewReportService(repo, queue, exporter, nil, zap.NewNop(), ReportServiceConfig{
		ResultTTL:       time.Hour,
		CleanupInterval: time.Hour,
	})
	return reportFixture{svc: svc, repo: repo, queue: queue, exporter: exporter, store: store}
}

func TestReportServiceCreateJob(t *testing.T) {
	f := newReportFixture(t)
	resp, err := f.svc.CreateJob(context.Background(), "u1", dto.ReportRequest{Format: models.ReportFormatCSV})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, ReportJobType, f.queue.jobs[0].Type)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)

	job, err := f.repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", job.UserID)
}

func TestReportServiceCreateJobValidation(t *testing.T) {
	f := newReportFixture(t)
	_, err := f.svc.CreateJob(context.Background(), "u1", dto.ReportRequest{Format: "xlsx"})
	requireAppError(t, err, http.StatusBadRequest)

	_, err = f.svc.CreateJob(context.Background(), "", dto.ReportRequest{Format: models.ReportFormatCSV})
	requireAppError(t, err, http.StatusUnauthorized)
	assert.Empty(t, f.queue.jobs)
}

func TestReportServiceCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	f := newReportFixture(t)
	f.queue.err = jobs.ErrQueueFull
	_, err := f.svc.CreateJob(context.Background(), "u1", dto.ReportRequest{Format: models.ReportFormatPDF})
	requireAppError(t, err, http.StatusInternalServerError)

	failed, err := f.repo.ListFinishedBefore(context.Background(), time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, models.ReportStatusFailed, failed[0].Status)
}

func TestReportServiceGetStatusIsOwnerOnly(t *testing.T) {
	f := newReportFixture(t)
	job := &models.ReportJob{UserID: "u1", Format: models.ReportFormatCSV, Status: models.ReportStatusQueued}
	require.NoError(t, f.repo.Create(context.Background(), job))

	resp, err := f.svc.GetStatus(context.Background(), job.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)

	_, err = f.svc.GetStatus(context.Background(), job.ID, "u2")
	requireAppError(t, err, http.StatusNotFound)

	_, err = f.svc.GetStatus(context.Background(), "missing", "u1")
	requireAppError(t, err, http.StatusNotFound)
}

func TestReportServiceEndToEndDownload(t *testing.T) {
	f := newReportFixture(t)
	seedRecords(t, f.store, "u1", "Uppsala")
	ctx := context.Background()

	resp, err := f.svc.CreateJob(ctx, "u1", dto.ReportRequest{Format: models.ReportFormatCSV})
	require.NoError(t, err)

	worker := NewReportWorker(f.repo, f.exporter, NewMetricsService(), 3, zap.NewNop())
	require.NoError(t, worker.Handle(ctx, f.queue.jobs[0]))

	status, err := f.svc.GetStatus(ctx, resp.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.ResultURL)

	token := extractToken(status.ResultURL)
	download, err := f.svc.ResolveDownload(ctx, token)
	require.NoError(t, err)
	defer download.File.Close() //nolint:errcheck
	assert.Equal(t, models.ReportFormatCSV, download.Format)
	assert.Contains(t, download.Filename, ".csv")

	_, err = f.svc.ResolveDownload(ctx, token+"x")
	requireAppError(t, err, http.StatusForbidden)
}

func TestReportServiceCleanupExpired(t *testing.T) {
	f := newReportFixture(t)
	seedRecords(t, f.store, "u1", "Lund")
	ctx := context.Background()

	resp, err := f.svc.CreateJob(ctx, "u1", dto.ReportRequest{Format: models.ReportFormatCSV})
	require.NoError(t, err)
	worker := NewReportWorker(f.repo, f.exporter, nil, 3, nil)
	require.NoError(t, worker.Handle(ctx, f.queue.jobs[0]))
	status, err := f.svc.GetStatus(ctx, resp.ID, "u1")
	require.NoError(t, err)
	token := extractToken(status.ResultURL)

	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	f.svc.CleanupExpired(ctx)

	_, err = f.repo.GetByID(ctx, resp.ID)
	assert.Error(t, err)
	_, err = f.svc.ResolveDownload(ctx, token)
	assert.Error(t, err)
}

func TestReportWorkerHandleFailureRetriesThenFails(t *testing.T) {
	repo := repository.NewReportJobRepository(cache.NewMemory(0))
	job := &models.ReportJob{UserID: "u1", Format: models.ReportFormatCSV, Status: models.ReportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), job))
	worker := NewReportWorker(repo, exportStub{err: errors.New("backend unavailable")}, nil, 2, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 0})
	require.Error(t, err)
	stored, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "backend unavailable", *stored.ErrorMessage)

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 2}))
	stored, err = repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, stored.Status)
	assert.NotNil(t, stored.FinishedAt)
}

func TestReportWorkerSkipsVanishedJob(t *testing.T) {
	repo := repository.NewReportJobRepository(cache.NewMemory(0))
	worker := NewReportWorker(repo, exportStub{}, nil, 1, nil)
	assert.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "gone"}))
}

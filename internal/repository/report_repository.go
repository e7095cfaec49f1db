package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	goCache "github.com/patrickmn/go-cache"

	"github.com/noah-isme/unitrack-api/internal/models"
)

// UpdateReportJobParams captures mutable job fields.
type UpdateReportJobParams struct {
	Status       *models.ReportStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// ReportJobRepository keeps report job metadata in process. Jobs expire
// with the cache's default TTL, which should outlive the export files.
type ReportJobRepository struct {
	cache *goCache.Cache
	mu    sync.Mutex
	now   func() time.Time
}

// NewReportJobRepository constructs the job registry.
func NewReportJobRepository(cache *goCache.Cache) *ReportJobRepository {
	return &ReportJobRepository{cache: cache, now: time.Now}
}

// Create stores a new job, assigning id and creation time.
func (r *ReportJobRepository) Create(_ context.Context, job *models.ReportJob) error {
	if job == nil {
		return fmt.Errorf("create report job: nil job")
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = r.now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.cache.Add(job.ID, *job, goCache.DefaultExpiration); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// GetByID returns a copy of the job or sql.ErrNoRows.
func (r *ReportJobRepository) GetByID(_ context.Context, id string) (*models.ReportJob, error) {
	raw, ok := r.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("get report job %s: %w", id, sql.ErrNoRows)
	}
	job := raw.(models.ReportJob)
	return &job, nil
}

// Update applies the non-nil params to the stored job.
func (r *ReportJobRepository) Update(_ context.Context, id string, params UpdateReportJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok := r.cache.Get(id)
	if !ok {
		return fmt.Errorf("update report job %s: %w", id, sql.ErrNoRows)
	}
	job := raw.(models.ReportJob)
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		url := *params.ResultURL
		job.ResultURL = &url
	}
	if params.ErrorMessage != nil {
		if *params.ErrorMessage == "" {
			job.ErrorMessage = nil
		} else {
			msg := *params.ErrorMessage
			job.ErrorMessage = &msg
		}
	}
	if params.FinishedAt != nil {
		finished := *params.FinishedAt
		job.FinishedAt = &finished
	}
	r.cache.Set(id, job, goCache.DefaultExpiration)
	return nil
}

// ListFinishedBefore returns terminal jobs that finished before cutoff.
func (r *ReportJobRepository) ListFinishedBefore(_ context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return r.list(limit, func(job models.ReportJob) bool {
		return job.FinishedAt != nil && job.FinishedAt.Before(cutoff)
	}), nil
}

// Delete forgets a job.
func (r *ReportJobRepository) Delete(_ context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

func (r *ReportJobRepository) list(limit int, keep func(models.ReportJob) bool) []models.ReportJob {
	items := r.cache.Items()
	out := make([]models.ReportJob, 0, len(items))
	for _, item := range items {
		job, ok := item.Object.(models.ReportJob)
		if ok && keep(job) {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

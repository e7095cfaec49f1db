package service

import (
	"context"

	"github.com/noah-isme/unitrack-api/internal/models"
)

// Dashboard is the list view: every record plus per-status counts.
type Dashboard struct {
	Universities []models.University
	Total        int
	StatusCounts map[models.ApplicationStatus]int
}

// DashboardService composes the list view from a single store read.
type DashboardService struct {
	universities universityLister
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(universities universityLister) *DashboardService {
	return &DashboardService{universities: universities}
}

// Get returns the dashboard for userID.
func (s *DashboardService) Get(ctx context.Context, userID string) (*Dashboard, error) {
	records, err := s.universities.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ApplicationStatus]int, len(models.ApplicationStatuses))
	for _, status := range models.ApplicationStatuses {
		counts[status] = 0
	}
	for _, u := range records {
		counts[u.Status]++
	}
	return &Dashboard{Universities: records, Total: len(records), StatusCounts: counts}, nil
}

package dto

import "github.com/noah-isme/unitrack-api/internal/models"

// DashboardResponse is the list view payload.
type DashboardResponse struct {
	Universities []models.University `json:"universities"`
	Summary      DashboardSummary    `json:"summary"`
}

// DashboardSummary holds the status cards shown above the list.
type DashboardSummary struct {
	Total      int `json:"total"`
	Applying   int `json:"applying"`
	Waiting    int `json:"waiting"`
	Accepted   int `json:"accepted"`
	Waitlisted int `json:"waitlisted"`
	Rejected   int `json:"rejected"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusBreakdown is one status bucket of the analytics view.
type StatusBreakdown struct {
	Status     ApplicationStatus `json:"status"`
	Count      int               `json:"count"`
	Percentage float64           `json:"percentage"`
}

// CountryCount is one entry of the top-countries list.
type CountryCount struct {
	Country    string  `json:"country"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// UpcomingDeadline is a record whose deadline lies in the future.
type UpcomingDeadline struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Country   string            `json:"country"`
	Deadline  Date              `json:"deadline"`
	Status    ApplicationStatus `json:"status"`
	DaysUntil int               `json:"days_until"`
	Urgent    bool              `json:"urgent"`
}

// AnalyticsSummary is derived from one user's full record set.
type AnalyticsSummary struct {
	Total              int                `json:"total"`
	ByStatus           []StatusBreakdown  `json:"by_status"`
	TotalFees          decimal.Decimal    `json:"total_fees"`
	AverageScholarship float64            `json:"average_scholarship"`
	MaxScholarship     float64            `json:"max_scholarship"`
	CountryCount       int                `json:"country_count"`
	TopCountries       []CountryCount     `json:"top_countries"`
	UpcomingDeadlines  []UpcomingDeadline `json:"upcoming_deadlines"`
	GeneratedAt        time.Time          `json:"generated_at"`
}

// StatusCount returns the bucket count for status, zero when absent.
func (a AnalyticsSummary) StatusCount(status ApplicationStatus) int {
	for _, b := range a.ByStatus {
		if b.Status == status {
			return b.Count
		}
	}
	return 0
}

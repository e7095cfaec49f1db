package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/unitrack-api/internal/models"
)

const (
	topCountriesLimit      = 5
	upcomingDeadlinesLimit = 5
	urgentWithinDays       = 7
)

type universityLister interface {
	List(ctx context.Context, userID string) ([]models.University, error)
}

// AnalyticsService derives the analytics view from a user's records, with
// optional per-user response caching.
type AnalyticsService struct {
	universities universityLister
	cache        *CacheService
	logger       *zap.Logger
	now          func() time.Time
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(universities universityLister, cache *CacheService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{universities: universities, cache: cache, logger: logger, now: time.Now}
}

// Summary returns the analytics view for userID. The boolean reports a cache hit.
func (s *AnalyticsService) Summary(ctx context.Context, userID string) (*models.AnalyticsSummary, bool, error) {
	summary, hit, err := Remember(ctx, s.cache, CacheKey("analytics", userID), 0, func(ctx context.Context) (models.AnalyticsSummary, error) {
		records, err := s.universities.List(ctx, userID)
		if err != nil {
			return models.AnalyticsSummary{}, err
		}
		return ComputeAnalytics(records, s.now()), nil
	})
	if err != nil {
		return nil, false, err
	}
	if hit {
		s.logger.Debug("analytics served from cache", zap.String("user_id", userID))
	}
	return &summary, hit, nil
}

// ComputeAnalytics aggregates records relative to now. It never fails and
// treats an empty set as all zeros.
func ComputeAnalytics(records []models.University, now time.Time) models.AnalyticsSummary {
	total := len(records)
	summary := models.AnalyticsSummary{
		Total:       total,
		TotalFees:   decimal.Zero,
		GeneratedAt: now.UTC(),
	}

	counts := lo.CountValuesBy(records, func(u models.University) models.ApplicationStatus { return u.Status })
	summary.ByStatus = lo.Map(models.ApplicationStatuses, func(status models.ApplicationStatus, _ int) models.StatusBreakdown {
		return models.StatusBreakdown{Status: status, Count: counts[status], Percentage: percentage(counts[status], total)}
	})

	maxScholarship := 0.0
	scholarshipSum := 0.0
	for _, u := range records {
		summary.TotalFees = summary.TotalFees.Add(u.ApplicationFees)
		scholarshipSum += u.ScholarshipPercentage
		maxScholarship = math.Max(maxScholarship, u.ScholarshipPercentage)
	}
	summary.MaxScholarship = maxScholarship
	if total > 0 {
		summary.AverageScholarship = scholarshipSum / float64(total)
	}

	summary.TopCountries = topCountries(records, total)
	summary.CountryCount = len(lo.Uniq(lo.Map(records, func(u models.University, _ int) string { return u.Country })))
	summary.UpcomingDeadlines = upcomingDeadlines(records, now)
	return summary
}

func topCountries(records []models.University, total int) []models.CountryCount {
	order := make([]string, 0)
	counts := make(map[string]int)
	for _, u := range records {
		if _, seen := counts[u.Country]; !seen {
			order = append(order, u.Country)
		}
		counts[u.Country]++
	}
	entries := lo.Map(order, func(country string, _ int) models.CountryCount {
		return models.CountryCount{Country: country, Count: counts[country], Percentage: percentage(counts[country], total)}
	})
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	if len(entries) > topCountriesLimit {
		entries = entries[:topCountriesLimit]
	}
	return entries
}

func upcomingDeadlines(records []models.University, now time.Time) []models.UpcomingDeadline {
	future := lo.Filter(records, func(u models.University, _ int) bool {
		return !u.Deadline.IsZero() && u.Deadline.Time.After(now)
	})
	sort.SliceStable(future, func(i, j int) bool { return future[i].Deadline.Time.Before(future[j].Deadline.Time) })
	if len(future) > upcomingDeadlinesLimit {
		future = future[:upcomingDeadlinesLimit]
	}
	return lo.Map(future, func(u models.University, _ int) models.UpcomingDeadline {
		days := DaysUntil(u.Deadline, now)
		return models.UpcomingDeadline{
			ID:        u.ID,
			Name:      u.Name,
			Country:   u.Country,
			Deadline:  u.Deadline,
			Status:    u.Status,
			DaysUntil: days,
			Urgent:    days <= urgentWithinDays,
		}
	})
}

// DaysUntil is the whole days from now to the deadline's midnight UTC, rounded up.
func DaysUntil(deadline models.Date, now time.Time) int {
	diff := deadline.Time.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

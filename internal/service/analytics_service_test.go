package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unitrack-api/internal/models"
	"github.com/noah-isme/unitrack-api/internal/repository"
	"github.com/noah-isme/unitrack-api/pkg/cache"
)

func record(id, country string, status models.ApplicationStatus, scholarship float64, fees string, deadline models.Date) models.University {
	return models.University{
		ID:                    id,
		UserID:                "u1",
		Name:                  "Uni " + id,
		Country:               country,
		Status:                status,
		ScholarshipPercentage: scholarship,
		ApplicationFees:       decimal.RequireFromString(fees),
		Deadline:              deadline,
	}
}

func TestComputeAnalyticsEmpty(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	summary := ComputeAnalytics(nil, now)

	assert.Zero(t, summary.Total)
	assert.Zero(t, summary.AverageScholarship)
	assert.Zero(t, summary.MaxScholarship)
	assert.True(t, summary.TotalFees.IsZero())
	assert.Zero(t, summary.CountryCount)
	assert.Empty(t, summary.TopCountries)
	assert.Empty(t, summary.UpcomingDeadlines)
	require.Len(t, summary.ByStatus, len(models.ApplicationStatuses))
	for _, bucket := range summary.ByStatus {
		assert.Zero(t, bucket.Count)
		assert.Zero(t, bucket.Percentage)
	}
}

func TestComputeAnalyticsAggregates(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	d := models.NewDate(2024, time.December, 1)
	records := []models.University{
		record("1", "Germany", models.StatusApplying, 50, "100.10", d),
		record("2", "Germany", models.StatusAccepted, 100, "50.20", d),
		record("3", "Canada", models.StatusAccepted, 0, "0", d),
		record("4", "Japan", models.StatusRejected, 30, "25.00", d),
	}
	summary := ComputeAnalytics(records, now)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.StatusCount(models.StatusApplying))
	assert.Equal(t, 2, summary.StatusCount(models.StatusAccepted))
	assert.Equal(t, 0, summary.StatusCount(models.StatusWaiting))

	sum := 0
	for _, bucket := range summary.ByStatus {
		sum += bucket.Count
		if bucket.Status == models.StatusAccepted {
			assert.Equal(t, 50.0, bucket.Percentage)
		}
	}
	assert.Equal(t, summary.Total, sum)

	assert.Equal(t, "175.3", summary.TotalFees.String())
	assert.Equal(t, 45.0, summary.AverageScholarship)
	assert.Equal(t, 100.0, summary.MaxScholarship)
	assert.Equal(t, 3, summary.CountryCount)
	require.NotEmpty(t, summary.TopCountries)
	assert.Equal(t, models.CountryCount{Country: "Germany", Count: 2, Percentage: 50}, summary.TopCountries[0])
}

func TestComputeAnalyticsTopCountriesStableAndCapped(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var records []models.University
	for i, country := range []string{"A", "B", "C", "D", "E", "F", "G", "G"} {
		records = append(records, record(fmt.Sprint(i), country, models.StatusApplying, 0, "0", models.Date{}))
	}
	summary := ComputeAnalytics(records, now)

	require.Len(t, summary.TopCountries, 5)
	got := make([]string, 0, 5)
	for _, c := range summary.TopCountries {
		got = append(got, c.Country)
	}
	assert.Equal(t, []string{"G", "A", "B", "C", "D"}, got)
	assert.Equal(t, 7, summary.CountryCount)
}

func TestComputeAnalyticsUpcomingDeadlines(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []models.University{
		record("past", "X", models.StatusApplying, 0, "0", models.NewDate(2024, time.May, 20)),
		record("now", "X", models.StatusApplying, 0, "0", models.NewDate(2024, time.June, 1)),
		record("far", "X", models.StatusApplying, 0, "0", models.NewDate(2024, time.September, 1)),
		record("three", "X", models.StatusApplying, 0, "0", models.NewDate(2024, time.June, 4)),
		record("ten", "X", models.StatusApplying, 0, "0", models.NewDate(2024, time.June, 11)),
		record("seven", "X", models.StatusApplying, 0, "0", models.NewDate(2024, time.June, 8)),
		record("eight", "X", models.StatusApplying, 0, "0", models.NewDate(2024, time.June, 9)),
		record("thirty", "X", models.StatusApplying, 0, "0", models.NewDate(2024, time.July, 1)),
	}
	summary := ComputeAnalytics(records, now)

	require.Len(t, summary.UpcomingDeadlines, 5)
	ids := make([]string, 0, 5)
	for _, d := range summary.UpcomingDeadlines {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"three", "seven", "eight", "ten", "thirty"}, ids)

	assert.Equal(t, 3, summary.UpcomingDeadlines[0].DaysUntil)
	assert.True(t, summary.UpcomingDeadlines[0].Urgent)
	assert.Equal(t, 7, summary.UpcomingDeadlines[1].DaysUntil)
	assert.True(t, summary.UpcomingDeadlines[1].Urgent)
	assert.Equal(t, 8, summary.UpcomingDeadlines[2].DaysUntil)
	assert.False(t, summary.UpcomingDeadlines[2].Urgent)
}

func TestDaysUntilRoundsUp(t *testing.T) {
	deadline := models.NewDate(2024, time.June, 4)
	assert.Equal(t, 3, DaysUntil(deadline, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 3, DaysUntil(deadline, time.Date(2024, 6, 1, 0, 0, 1, 0, time.UTC)))
	assert.Equal(t, 1, DaysUntil(deadline, time.Date(2024, 6, 3, 23, 0, 0, 0, time.UTC)))
}

func TestAnalyticsServiceCachesPerUser(t *testing.T) {
	store := newMemoryStore()
	universities := NewUniversityService(store, nil, nil, nil)
	cacheSvc := NewCacheService(repository.NewMemoryCacheRepository(cache.NewMemory(time.Minute)), nil, time.Minute, nil, true)
	svc := NewAnalyticsService(universities, cacheSvc, nil)
	ctx := context.Background()

	_, err := universities.Create(ctx, "u1", sampleChanges("A", ""))
	require.NoError(t, err)

	first, hit, err := svc.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, first.Total)

	second, hit, err := svc.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, second.Total)

	withCache := NewUniversityService(store, cacheSvc, nil, nil)
	_, err = withCache.Create(ctx, "u1", sampleChanges("B", ""))
	require.NoError(t, err)

	third, hit, err := svc.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, third.Total)
}

func TestAnalyticsServiceWithoutCacheAlwaysRecomputes(t *testing.T) {
	store := newMemoryStore()
	svc := NewAnalyticsService(NewUniversityService(store, nil, nil, nil), nil, nil)

	_, hit, err := svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, err = svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, store.calls)
}

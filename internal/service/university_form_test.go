package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unitrack-api/internal/models"
)

func newFormService(store *memoryStore) *UniversityFormService {
	return NewUniversityFormService(NewUniversityService(store, nil, nil, nil), nil, nil)
}

func decodeDraft(t *testing.T, raw string) UniversityDraft {
	t.Helper()
	var draft UniversityDraft
	require.NoError(t, json.Unmarshal([]byte(raw), &draft))
	return draft
}

func TestNumericInputAcceptsNumbersStringsAndNull(t *testing.T) {
	draft := decodeDraft(t, `{"scholarship_percentage": 12.5, "application_fees": "80.00"}`)
	assert.True(t, draft.ScholarshipPercentage.IsSet())
	assert.Equal(t, "12.5", draft.ScholarshipPercentage.String())
	assert.Equal(t, "80.00", draft.ApplicationFees.String())

	draft = decodeDraft(t, `{"scholarship_percentage": null, "application_fees": "  "}`)
	assert.False(t, draft.ScholarshipPercentage.IsSet())
	assert.False(t, draft.ApplicationFees.IsSet())

	var n NumericInput
	assert.Error(t, json.Unmarshal([]byte(`true`), &n))

	out, err := json.Marshal(NumericFromFloat(42.5))
	require.NoError(t, err)
	assert.Equal(t, "42.5", string(out))
	out, err = json.Marshal(NumericInput{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestUniversityFormCreateSuccess(t *testing.T) {
	store := newMemoryStore()
	svc := newFormService(store)

	draft := decodeDraft(t, `{
		"name": "  ETH Zurich ",
		"country": "Switzerland",
		"deadline": "2030-01-15",
		"scholarship_percentage": "25.5",
		"application_fees": 150.25,
		"notes": "portfolio"
	}`)
	result, err := svc.Create(context.Background(), "u1", draft)
	require.NoError(t, err)
	assert.Equal(t, models.FormStateNavigatedAway, result.State)
	assert.Equal(t, "/dashboard", result.Redirect)

	u := result.University
	assert.Equal(t, "ETH Zurich", u.Name)
	assert.Equal(t, models.StatusApplying, u.Status)
	assert.Equal(t, 25.5, u.ScholarshipPercentage)
	assert.Equal(t, "150.25", u.ApplicationFees.String())
	assert.Equal(t, "2030-01-15", u.Deadline.String())
}

func TestUniversityFormValidation(t *testing.T) {
	base := map[string]interface{}{
		"name":                   "MIT",
		"country":                "USA",
		"deadline":               "2030-01-15",
		"scholarship_percentage": 10,
		"application_fees":       90,
		"status":                 "Waiting",
	}
	cases := []struct {
		name    string
		field   string
		value   interface{}
		message string
	}{
		{"missing name", "name", "   ", "name is required"},
		{"missing country", "country", "", "country is required"},
		{"missing deadline", "deadline", "", "deadline is required"},
		{"bad deadline", "deadline", "15/01/2030", "deadline must be a date in YYYY-MM-DD format"},
		{"missing scholarship", "scholarship_percentage", nil, "scholarship_percentage is required"},
		{"non numeric scholarship", "scholarship_percentage", "lots", "scholarship_percentage must be a number"},
		{"scholarship above range", "scholarship_percentage", 100.5, "scholarship_percentage must be between 0 and 100"},
		{"scholarship below range", "scholarship_percentage", -1, "scholarship_percentage must be between 0 and 100"},
		{"missing fees", "application_fees", "", "application_fees is required"},
		{"negative fees", "application_fees", "-5", "application_fees must be zero or greater"},
		{"unknown status", "status", "Pending", "status must be one of Applying, Waiting, Accepted, Waitlisted, Rejected"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := map[string]interface{}{}
			for k, v := range base {
				payload[k] = v
			}
			payload[tc.field] = tc.value
			raw, err := json.Marshal(payload)
			require.NoError(t, err)

			store := newMemoryStore()
			_, err = newFormService(store).Create(context.Background(), "u1", decodeDraft(t, string(raw)))
			appErr := requireAppError(t, err, http.StatusBadRequest)
			assert.Equal(t, tc.message, appErr.Message)
			assert.Zero(t, store.calls)
		})
	}
}

func TestUniversityFormBoundaryValuesAccepted(t *testing.T) {
	store := newMemoryStore()
	svc := newFormService(store)
	for _, pct := range []string{"0", "100"} {
		draft := decodeDraft(t, `{"name":"A","country":"B","deadline":"2030-01-01","scholarship_percentage":`+pct+`,"application_fees":0}`)
		_, err := svc.Create(context.Background(), "u1", draft)
		require.NoError(t, err)
	}
}

func TestUniversityFormRequiresUserBeforeValidation(t *testing.T) {
	store := newMemoryStore()
	svc := newFormService(store)

	_, err := svc.Create(context.Background(), "", UniversityDraft{})
	appErr := requireAppError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "You must be logged in to add a university", appErr.Message)

	_, err = svc.Update(context.Background(), "id", "", UniversityDraft{})
	appErr = requireAppError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "You must be logged in to update a university", appErr.Message)
	assert.Zero(t, store.calls)
}

func TestUniversityFormLoadAndUpdate(t *testing.T) {
	store := newMemoryStore()
	svc := newFormService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", decodeDraft(t, `{"name":"Oxford","country":"UK","deadline":"2030-02-01","scholarship_percentage":20,"application_fees":"60.5","status":"Waiting"}`))
	require.NoError(t, err)

	draft, err := svc.Load(ctx, created.University.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Oxford", draft.Name)
	assert.Equal(t, "2030-02-01", draft.Deadline)
	assert.Equal(t, "20", draft.ScholarshipPercentage.String())
	assert.Equal(t, "60.5", draft.ApplicationFees.String())
	assert.Equal(t, models.StatusWaiting, draft.Status)

	draft.Status = models.StatusAccepted
	result, err := svc.Update(ctx, created.University.ID, "u1", *draft)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, result.University.Status)

	_, err = svc.Load(ctx, created.University.ID, "u2")
	requireAppError(t, err, http.StatusNotFound)
}

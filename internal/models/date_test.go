package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		Deadline Date `json:"deadline"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"deadline":"2025-01-15"}`), &payload))
	assert.Equal(t, NewDate(2025, time.January, 15), payload.Deadline)
	assert.Equal(t, time.UTC, payload.Deadline.Location())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"deadline":"2025-01-15"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"deadline":null}`), &payload))
	assert.True(t, payload.Deadline.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"deadline":"15/01/2025"}`), &payload))
}

func TestParseDateTruncatesTimestamp(t *testing.T) {
	d, err := ParseDate("2025-03-01T18:30:00+00:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", d.String())
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 2, 3, 15, 0, 0, 0, time.FixedZone("x", 3600))))
	assert.Equal(t, "2025-02-03", d.String())

	require.NoError(t, d.Scan([]byte("2024-12-31")))
	assert.Equal(t, "2024-12-31", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2025, time.May, 9).Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-05-09", v)
}

func TestApplicationStatusValid(t *testing.T) {
	for _, s := range ApplicationStatuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, ApplicationStatus("Pending").Valid())
	assert.False(t, ApplicationStatus("").Valid())
}

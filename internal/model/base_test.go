package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 1, 31)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-31"`, string(b))

	var parsed Date
	require.NoError(t, json.Unmarshal(b, &parsed))
	assert.Equal(t, d, parsed)
}

func TestDateUnmarshalRejectsGarbage(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"31/01/2024"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"2024-13-01"`), &d))
}

func TestDateUnmarshalNull(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
}

func TestDateAddDays(t *testing.T) {
	assert.Equal(t, NewDate(2024, 1, 31), NewDate(2024, 1, 1).AddDays(30))
	assert.Equal(t, NewDate(2024, 2, 29), NewDate(2024, 2, 22).AddDays(7), "leap day")
	assert.Equal(t, NewDate(2025, 1, 2), NewDate(2024, 12, 26).AddDays(7))
}

func TestDateComparisons(t *testing.T) {
	a := NewDate(2024, 3, 14)
	b := NewDate(2024, 3, 15)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
	assert.False(t, a.Before(a))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 5, 2, 17, 30, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2024, 5, 2), d, "time-of-day is dropped")

	require.NoError(t, d.Scan("2024-06-01"))
	assert.Equal(t, NewDate(2024, 6, 1), d)

	assert.Error(t, d.Scan(42))
}

func TestNextRefill(t *testing.T) {
	assert.Equal(t, NewDate(2024, 1, 31), NextRefill(NewDate(2024, 1, 1), 30))
}

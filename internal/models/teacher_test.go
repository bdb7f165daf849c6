package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowOn(t *testing.T) {
	hours := WorkingHours{Weekday: int(time.Monday), Start: "09:30", End: "17:00"}
	date := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	window, err := hours.WindowOn(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC), window.Start)
	assert.Equal(t, time.Date(2026, time.January, 5, 17, 0, 0, 0, time.UTC), window.End)
}

func TestWindowOnBadClock(t *testing.T) {
	hours := WorkingHours{Start: "9h30", End: "17:00"}

	_, err := hours.WindowOn(time.Now())
	assert.Error(t, err)
}

func TestTimeWindowContains(t *testing.T) {
	day := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	window := TimeWindow{Start: day.Add(13 * time.Hour), End: day.Add(15 * time.Hour)}

	assert.True(t, window.Contains(day.Add(13*time.Hour), day.Add(14*time.Hour)))
	assert.True(t, window.Contains(day.Add(14*time.Hour+30*time.Minute), day.Add(15*time.Hour)), "an interval ending exactly at the window end fits")
	assert.False(t, window.Contains(day.Add(12*time.Hour+30*time.Minute), day.Add(13*time.Hour+30*time.Minute)))
	assert.False(t, window.Contains(day.Add(14*time.Hour+30*time.Minute), day.Add(15*time.Hour+30*time.Minute)))
}

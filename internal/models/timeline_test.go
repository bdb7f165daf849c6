package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimelineEntryOverlaps(t *testing.T) {
	day := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	entry := TimelineEntry{Start: day.Add(14 * time.Hour), End: day.Add(14*time.Hour + 30*time.Minute)}

	assert.True(t, entry.Overlaps(day.Add(14*time.Hour), day.Add(14*time.Hour+30*time.Minute)))
	assert.True(t, entry.Overlaps(day.Add(14*time.Hour+10*time.Minute), day.Add(14*time.Hour+40*time.Minute)))
	assert.False(t, entry.Overlaps(day.Add(13*time.Hour+30*time.Minute), day.Add(14*time.Hour)), "an abutting interval does not overlap")
	assert.False(t, entry.Overlaps(day.Add(14*time.Hour+30*time.Minute), day.Add(15*time.Hour)))
}

func TestTimelineEntryHasRoom(t *testing.T) {
	single := TimelineEntry{Capacity: 1}
	assert.True(t, single.HasRoom(0))
	assert.False(t, single.HasRoom(1))

	group := TimelineEntry{Capacity: 4}
	assert.True(t, group.HasRoom(3))
	assert.False(t, group.HasRoom(4))

	unset := TimelineEntry{}
	assert.True(t, unset.HasRoom(0), "zero capacity defaults to one seat")
	assert.False(t, unset.HasRoom(1))
}

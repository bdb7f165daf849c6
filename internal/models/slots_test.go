package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlotListNilVersusEmpty(t *testing.T) {
	var off SlotList
	assert.Nil(t, off.Clocks(), "a non-working day stays nil through rendering")
	assert.Nil(t, off.ByClock())

	booked := SlotList{}
	assert.NotNil(t, booked.Clocks(), "a fully booked day renders as empty, not nil")
	assert.Empty(t, booked.Clocks())
}

func TestSlotListClocks(t *testing.T) {
	day := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	slots := SlotList{day.Add(13 * time.Hour), day.Add(13*time.Hour + 30*time.Minute)}

	assert.Equal(t, []string{"13:00", "13:30"}, slots.Clocks())
	assert.Equal(t, day.Add(13*time.Hour), slots.ByClock()["13:00"])
}

package appointments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotTemplate(t *testing.T) {
	tpl := SlotTemplate()
	assert.Len(t, tpl, 14)
	assert.Equal(t, "09:00", tpl[0])
	assert.Equal(t, "16:30", tpl[len(tpl)-1])
	assert.NotContains(t, tpl, "13:00", "lunch gap excluded")
	assert.NotContains(t, tpl, "13:30", "lunch gap excluded")

	// Mutating the returned slice must not affect the template.
	tpl[0] = "00:00"
	assert.Equal(t, "09:00", SlotTemplate()[0])
}

func TestAvailableSlots(t *testing.T) {
	open := AvailableSlots([]string{"09:00", "10:30"})
	assert.Len(t, open, 12)
	assert.NotContains(t, open, "09:00")
	assert.NotContains(t, open, "10:30")

	// Ascending chronological order, each slot exactly once.
	seen := map[string]int{}
	for i := 1; i < len(open); i++ {
		assert.Less(t, open[i-1], open[i])
	}
	for _, s := range open {
		seen[s]++
	}
	for slot, n := range seen {
		assert.Equal(t, 1, n, "slot %s duplicated", slot)
	}
}

func TestAvailableSlotsFullyBooked(t *testing.T) {
	open := AvailableSlots(SlotTemplate())
	assert.Empty(t, open)
}

func TestAvailableSlotsIgnoresUnknownBookedTimes(t *testing.T) {
	// A booked time outside the template (e.g. a manually entered 13:00)
	// does not remove anything from the candidate set.
	open := AvailableSlots([]string{"13:00"})
	assert.Len(t, open, 14)
}

func TestFormat12Hour(t *testing.T) {
	assert.Equal(t, "09:00 AM", Format12Hour("09:00"))
	assert.Equal(t, "12:30 PM", Format12Hour("12:30"))
	assert.Equal(t, "02:30 PM", Format12Hour("14:30"))
	assert.Equal(t, "garbage", Format12Hour("garbage"))
}

package appointments

import "time"

// slotTemplate is the fixed candidate set: 30-minute slots from 09:00 to 17:00
// with the 13:00-14:00 lunch hour excluded. 14 slots total.
var slotTemplate = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"12:00", "12:30", "14:00", "14:30", "15:00", "15:30",
	"16:00", "16:30",
}

// SlotTemplate returns a copy of the fixed candidate slot set in chronological order.
func SlotTemplate() []string {
	out := make([]string, len(slotTemplate))
	copy(out, slotTemplate)
	return out
}

// AvailableSlots returns the template minus the booked set, preserving
// chronological order. Each slot appears at most once.
func AvailableSlots(booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}
	var open []string
	for _, slot := range slotTemplate {
		if _, ok := taken[slot]; !ok {
			open = append(open, slot)
		}
	}
	return open
}

// Format12Hour renders an HH:MM slot in 12-hour clock form, e.g. "02:30 PM".
func Format12Hour(slot string) string {
	t, err := time.Parse("15:04", slot)
	if err != nil {
		return slot
	}
	return t.Format("03:04 PM")
}

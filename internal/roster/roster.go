// Package roster defines the specialist roster. Specialists are the
// routable human experts; the roster is supplied read-only per triage run
// as part of the reference-data snapshot.
package roster

import "time"

// Specialist is a routable expert with coverage and availability.
type Specialist struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Specialties  []string     `json:"specialties"`
	Locations    []string     `json:"locations"`
	Departments  []string     `json:"departments"`
	Tags         []string     `json:"tags"`
	Availability Availability `json:"availability"`
}

// DaySlots is one upcoming calendar day and its open slot count. The
// calendar system supplies these; the engine only counts them.
type DaySlots struct {
	Date  time.Time `json:"date"`
	Slots int       `json:"slots"`
}

// Availability is the list of upcoming day/slot entries for a specialist.
type Availability struct {
	Days []DaySlots `json:"days"`
}

// SlotsWithin counts open slots from now through the next windowDays days.
// Entries in the past or beyond the window are ignored.
func (a Availability) SlotsWithin(windowDays int, now time.Time) int {
	start := now.Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, windowDays)

	total := 0
	for _, d := range a.Days {
		day := d.Date.Truncate(24 * time.Hour)
		if day.Before(start) || day.After(end) {
			continue
		}
		if d.Slots > 0 {
			total += d.Slots
		}
	}
	return total
}

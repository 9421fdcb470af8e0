package domain

import (
	"sort"
	"time"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// SlotStatus classifies a generated slot
type SlotStatus string

const (
	SlotAvailable  SlotStatus = "Available"
	SlotLunchBreak SlotStatus = "Lunch Break"
	SlotNoSchedule SlotStatus = "No Schedule"
)

// WorkingHours is the raw schedule from the doctor profile.
// WorkingTime and CheckupTime are "H:MM AM/PM - H:MM AM/PM", BreakTime is "H:MM AM/PM".
type WorkingHours struct {
	WorkingTime string
	CheckupTime string
	BreakTime   string
}

// Slot is one bookable unit of a doctor's day
type Slot struct {
	Date   time.Time
	Time   types.TimeOfDay
	Status SlotStatus
}

// IsAvailable returns true if the slot may be booked
func (s *Slot) IsAvailable() bool {
	return s.Status == SlotAvailable
}

// DaySlots is the ordered slot list of one calendar day
type DaySlots struct {
	Date  time.Time
	Slots []Slot
}

// WeekTable is seven consecutive DaySlots starting at WeekStart
type WeekTable struct {
	WeekStart time.Time
	Days      []DaySlots
}

// IsEmpty returns true when no day has any slot ("No Slots Available")
func (w *WeekTable) IsEmpty() bool {
	for _, d := range w.Days {
		if len(d.Slots) > 0 {
			return false
		}
	}
	return true
}

// BookedSlots is the projection of non-cancelled appointments of one doctor:
// date ("YYYY-MM-DD") -> occupied times
type BookedSlots map[string]map[types.TimeOfDay]struct{}

// Add marks (date, time) as occupied
func (b BookedSlots) Add(date time.Time, t types.TimeOfDay) {
	key := types.FormatDate(date)
	if b[key] == nil {
		b[key] = make(map[types.TimeOfDay]struct{})
	}
	b[key][t] = struct{}{}
}

// Contains returns true if (date, time) is occupied
func (b BookedSlots) Contains(date time.Time, t types.TimeOfDay) bool {
	times, ok := b[types.FormatDate(date)]
	if !ok {
		return false
	}
	_, ok = times[t]
	return ok
}

// Times returns occupied times of the date in ascending order
func (b BookedSlots) Times(date string) []types.TimeOfDay {
	times := make([]types.TimeOfDay, 0, len(b[date]))
	for t := range b[date] {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].IsBefore(times[j]) })
	return times
}

// BookingRequest is a patient's request for a slot
type BookingRequest struct {
	DoctorID        string
	PatientID       string
	Date            time.Time
	Time            types.TimeOfDay
	AppointmentType AppointmentType
	PatientIssue    string
	DiseaseName     *string
	DoctorFees      float64
}

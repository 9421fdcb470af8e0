package domain

import "time"

// ScheduleSettings slot generation parameters.
// DoctorID == nil is the clinic-wide row used when a doctor has no own settings.
type ScheduleSettings struct {
	ID                     int64
	DoctorID               *string
	SlotGranularityMinutes int
	BreakDurationMinutes   int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// IsGlobal returns true if the settings apply to every doctor
func (s *ScheduleSettings) IsGlobal() bool {
	return s.DoctorID == nil
}

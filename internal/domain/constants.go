package domain

// Default slot generation values
const (
	DefaultSlotGranularityMinutes = 60
	DefaultBreakDurationMinutes   = 60
)

// Business validation constants
const (
	MinSlotGranularityMinutes   = 5
	MaxSlotGranularityMinutes   = 480 // 8 hours
	MinBreakDurationMinutes     = 5
	MaxBreakDurationMinutes     = 480
	MaxPatientIssueLength       = 1000
	MaxCancellationReasonLength = 500
	DaysInWeek                  = 7
)

// ActiveStatuses statuses that occupy a slot
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusCompleted,
}

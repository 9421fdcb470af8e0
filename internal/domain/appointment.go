package domain

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// AppointmentType distinguishes video consultations from visits to the hospital
type AppointmentType string

const (
	AppointmentTypeOnline AppointmentType = "Online"
	AppointmentTypeOnsite AppointmentType = "Onsite"
)

// IsValid reports whether t is one of the known appointment types
func (t AppointmentType) IsValid() bool {
	return t == AppointmentTypeOnline || t == AppointmentTypeOnsite
}

// Appointment represents a patient's booking of a doctor's slot
type Appointment struct {
	ID              string
	DoctorID        string
	PatientID       string
	AppointmentDate time.Time
	AppointmentTime types.TimeOfDay
	AppointmentType AppointmentType
	PatientIssue    string
	DiseaseName     *string
	// DoctorFees is the consultation rate at booking time, never re-read from the profile
	DoctorFees float64
	Status     AppointmentStatus

	// Optional metadata captured by the booking form
	Specialty *string
	Hospital  *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesSlot returns true if the appointment holds its (doctor, date, time) exclusively
func (a *Appointment) OccupiesSlot() bool {
	return a.Status != StatusCancelled
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending
}

// CanBeRescheduled returns true if the appointment date/time may still change
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == StatusPending
}

// CanBeCompleted returns true if the appointment can be marked as completed
func (a *Appointment) CanBeCompleted() bool {
	return a.Status == StatusPending
}

// AppointmentTab mirrors the tabs of the appointment list screens
type AppointmentTab string

const (
	TabScheduled AppointmentTab = "scheduled" // everything except Cancelled
	TabPending   AppointmentTab = "pending"
	TabPrevious  AppointmentTab = "previous" // Completed
	TabCompleted AppointmentTab = "completed"
	TabCancelled AppointmentTab = "cancelled"
)

// Statuses returns the statuses shown on the tab
func (t AppointmentTab) Statuses() ([]AppointmentStatus, bool) {
	switch t {
	case TabScheduled:
		return ActiveStatuses, true
	case TabPending:
		return []AppointmentStatus{StatusPending}, true
	case TabPrevious, TabCompleted:
		return []AppointmentStatus{StatusCompleted}, true
	case TabCancelled:
		return []AppointmentStatus{StatusCancelled}, true
	default:
		return nil, false
	}
}

// AppointmentsFilter фильтр для списка приёмов пациента или врача
type AppointmentsFilter struct {
	DoctorID  *string             // Фильтр по врачу (опционально)
	PatientID *string             // Фильтр по пациенту (опционально)
	StartDate *time.Time          // Начало периода, включительно
	EndDate   *time.Time          // Конец периода, включительно
	Statuses  []AppointmentStatus // Пусто - все статусы
}

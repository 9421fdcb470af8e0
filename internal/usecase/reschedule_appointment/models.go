package reschedule_appointment

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// Request модель запроса на перенос приёма
type Request struct {
	UserID        string          // ID пользователя, выполняющего перенос (пациент или врач)
	AppointmentID string          // ID приёма
	Date          time.Time       // Новая дата
	Time          types.TimeOfDay // Новое время
}

// Response модель ответа с перенесённым приёмом
type Response struct {
	ID              string
	DoctorID        string
	PatientID       string
	AppointmentDate time.Time
	AppointmentTime types.TimeOfDay
	PreviousDate    time.Time
	PreviousTime    types.TimeOfDay
	Status          string
}

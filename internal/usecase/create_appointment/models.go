package create_appointment

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// Request модель запроса на запись к врачу
type Request struct {
	DoctorID        string          // ID врача
	PatientID       string          // ID пациента
	Date            time.Time       // Дата приёма (без времени)
	Time            types.TimeOfDay // Время начала слота
	AppointmentType string          // Online или Onsite
	PatientIssue    string          // Жалоба пациента
	DiseaseName     *string         // Диагноз (опционально)
	DoctorFees      *float64        // Стоимость приёма; nil - текущая ставка из профиля врача
}

// Response модель ответа с созданным приёмом
type Response struct {
	ID              string
	DoctorID        string
	PatientID       string
	AppointmentDate time.Time
	AppointmentTime types.TimeOfDay
	AppointmentType string
	PatientIssue    string
	DiseaseName     *string
	DoctorFees      float64
	Status          string

	// Денормализованные данные врача
	DoctorName string
	Specialty  *string
	Hospital   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

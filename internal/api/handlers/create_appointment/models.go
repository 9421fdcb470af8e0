package create_appointment

import (
	"fmt"
	"time"

	createAppointment "github.com/m04kA/HMS-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// CreateAppointmentRequest HTTP request model.
// Пустые обязательные поля не отклоняются здесь: их проверяет use case и отвечает отказом MissingField.
type CreateAppointmentRequest struct {
	DoctorID        string   `json:"doctorId"`
	PatientID       string   `json:"patientId"`
	Date            string   `json:"date"` // "2026-10-19"
	Time            string   `json:"time"` // "10:00 AM"
	AppointmentType string   `json:"appointmentType"`
	PatientIssue    string   `json:"patientIssue" validate:"max=1000"`
	DiseaseName     *string  `json:"diseaseName,omitempty" validate:"omitempty,max=255"`
	DoctorFees      *float64 `json:"doctorFees,omitempty" validate:"omitempty,gte=0"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              string  `json:"id"`
	DoctorID        string  `json:"doctorId"`
	PatientID       string  `json:"patientId"`
	DoctorName      string  `json:"doctorName"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	AppointmentType string  `json:"appointmentType"`
	PatientIssue    string  `json:"patientIssue"`
	DiseaseName     *string `json:"diseaseName,omitempty"`
	DoctorFees      float64 `json:"doctorFees"`
	Status          string  `json:"status"`
	Specialty       *string `json:"specialty,omitempty"`
	Hospital        *string `json:"hospital,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Пустые дата и время остаются нулевыми значениями.
func (r *CreateAppointmentRequest) ToUseCaseRequest() (*createAppointment.Request, error) {
	req := &createAppointment.Request{
		DoctorID:        r.DoctorID,
		PatientID:       r.PatientID,
		AppointmentType: r.AppointmentType,
		PatientIssue:    r.PatientIssue,
		DiseaseName:     r.DiseaseName,
		DoctorFees:      r.DoctorFees,
	}

	if r.Date != "" {
		date, err := types.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidDate, err)
		}
		req.Date = date
	}

	if r.Time != "" {
		t, err := types.ParseTimeOfDay(r.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidTime, err)
		}
		req.Time = t
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              resp.ID,
		DoctorID:        resp.DoctorID,
		PatientID:       resp.PatientID,
		DoctorName:      resp.DoctorName,
		Date:            types.FormatDate(resp.AppointmentDate),
		Time:            resp.AppointmentTime.String(),
		AppointmentType: resp.AppointmentType,
		PatientIssue:    resp.PatientIssue,
		DiseaseName:     resp.DiseaseName,
		DoctorFees:      resp.DoctorFees,
		Status:          resp.Status,
		Specialty:       resp.Specialty,
		Hospital:        resp.Hospital,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}

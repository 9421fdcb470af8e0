package reschedule_appointment

import (
	"errors"
	"fmt"

	rescheduleAppointment "github.com/m04kA/HMS-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

// RescheduleAppointmentRequest HTTP request model
type RescheduleAppointmentRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// RescheduleAppointmentResponse HTTP response model
type RescheduleAppointmentResponse struct {
	ID           string `json:"id"`
	DoctorID     string `json:"doctorId"`
	PatientID    string `json:"patientId"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	PreviousDate string `json:"previousDate"`
	PreviousTime string `json:"previousTime"`
	Status       string `json:"status"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleAppointmentRequest) ToUseCaseRequest(userID, appointmentID string) (*rescheduleAppointment.Request, error) {
	req := &rescheduleAppointment.Request{
		UserID:        userID,
		AppointmentID: appointmentID,
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
func FromUseCaseResponse(resp *rescheduleAppointment.Response) *RescheduleAppointmentResponse {
	return &RescheduleAppointmentResponse{
		ID:           resp.ID,
		DoctorID:     resp.DoctorID,
		PatientID:    resp.PatientID,
		Date:         types.FormatDate(resp.AppointmentDate),
		Time:         resp.AppointmentTime.String(),
		PreviousDate: types.FormatDate(resp.PreviousDate),
		PreviousTime: resp.PreviousTime.String(),
		Status:       resp.Status,
	}
}

package create_appointment

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/scheduling"
)

// toBookingRequest приводит запрос к виду, который проверяет валидатор
func toBookingRequest(req *Request) domain.BookingRequest {
	br := domain.BookingRequest{
		DoctorID:        strings.TrimSpace(req.DoctorID),
		PatientID:       strings.TrimSpace(req.PatientID),
		Date:            req.Date,
		Time:            req.Time,
		AppointmentType: domain.AppointmentType(req.AppointmentType),
		PatientIssue:    req.PatientIssue,
		DiseaseName:     req.DiseaseName,
	}
	if req.DoctorFees != nil {
		br.DoctorFees = *req.DoctorFees
	}
	return br
}

// validateRequest проверяет входные данные до обращения к внешним сервисам.
// Пустые обязательные поля дают отказ MissingField.
func validateRequest(req *Request) error {
	br := toBookingRequest(req)
	if missing := scheduling.MissingFields(br); len(missing) > 0 {
		return &RejectionError{Reason: scheduling.ReasonMissingField, Detail: strings.Join(missing, ",")}
	}

	if !br.AppointmentType.IsValid() {
		return fmt.Errorf("%w: appointmentType must be Online or Onsite", ErrInvalidInput)
	}

	if utf8.RuneCountInString(req.PatientIssue) > domain.MaxPatientIssueLength {
		return fmt.Errorf("%w: patientIssue is longer than %d characters", ErrInvalidInput, domain.MaxPatientIssueLength)
	}

	if req.DoctorFees != nil && *req.DoctorFees < 0 {
		return fmt.Errorf("%w: doctorFees must not be negative", ErrInvalidInput)
	}

	return nil
}

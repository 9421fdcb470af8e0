package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/api/middleware"
	createAppointment "github.com/m04kA/HMS-AppointmentService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты приёма, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени, ожидается HH:MM AM/PM"
	msgMissingUserID      = "не указан ID пользователя"
	msgForbidden          = "нельзя записать другого пациента"
	msgDoctorNotFound     = "врач не найден"
	msgInvalidInput       = "некорректные данные записи"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.Validate(req); err != nil {
		h.logger.Warn("POST /appointments - Request validation failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidInput)
		return
	}

	// Пациент записывает только себя
	if req.PatientID != "" && req.PatientID != userID {
		h.logger.Warn("POST /appointments - user_id=%s tried to book for patient_id=%s", userID, req.PatientID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var rejection *createAppointment.RejectionError
		switch {
		case errors.As(err, &rejection):
			h.logger.Warn("POST /appointments - Rejected: doctor_id=%s, patient_id=%s, reason=%s",
				req.DoctorID, req.PatientID, rejection.Reason)
			handlers.RespondBookingRejection(w, rejection)

		case errors.Is(err, createAppointment.ErrDoctorNotFound):
			h.logger.Warn("POST /appointments - Doctor not found: doctor_id=%s", req.DoctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: doctor_id=%s, patient_id=%s, error=%v",
				req.DoctorID, req.PatientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%s, doctor_id=%s, patient_id=%s",
		result.ID, result.DoctorID, result.PatientID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

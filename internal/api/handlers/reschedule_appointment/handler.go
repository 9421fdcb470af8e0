package reschedule_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/api/middleware"
	rescheduleAppointment "github.com/m04kA/HMS-AppointmentService/internal/usecase/reschedule_appointment"
)

const (
	msgMissingAppointmentID = "ID приёма обязателен"
	msgMissingUserID        = "не указан ID пользователя"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты приёма, ожидается YYYY-MM-DD"
	msgInvalidTime          = "некорректный формат времени, ожидается HH:MM AM/PM"
	msgNotFound             = "приём не найден"
	msgForbidden            = "доступ запрещен"
	msgInvalidStatus        = "перенести можно только ожидающий приём"
	msgDoctorNotFound       = "врач не найден"
	msgInvalidInput         = "некорректные данные переноса"
)

type Handler struct {
	useCase RescheduleAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID := mux.Vars(r)["appointmentId"]
	if appointmentID == "" {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Missing appointment ID")
		handlers.RespondBadRequest(w, msgMissingAppointmentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID, appointmentID)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var rejection *rescheduleAppointment.RejectionError
		switch {
		case errors.As(err, &rejection):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Rejected: appointment_id=%s, reason=%s",
				appointmentID, rejection.Reason)
			handlers.RespondBookingRejection(w, rejection)

		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Appointment not found: appointment_id=%s", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleAppointment.ErrAccessDenied):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Access denied: appointment_id=%s, user_id=%s",
				appointmentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleAppointment.ErrInvalidStatus):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid status: appointment_id=%s", appointmentID)
			handlers.RespondConflict(w, msgInvalidStatus)

		case errors.Is(err, rescheduleAppointment.ErrDoctorNotFound):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Doctor not found: appointment_id=%s", appointmentID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		case errors.Is(err, rescheduleAppointment.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /appointments/{id}/reschedule - Failed to reschedule: appointment_id=%s, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	resp := FromUseCaseResponse(result)
	h.logger.Info("PATCH /appointments/{id}/reschedule - Appointment rescheduled: appointment_id=%s, %s %s -> %s %s",
		resp.ID, resp.PreviousDate, resp.PreviousTime, resp.Date, resp.Time)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

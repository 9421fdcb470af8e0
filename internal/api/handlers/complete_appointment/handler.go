package complete_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/api/middleware"
	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments"
)

const (
	msgMissingAppointmentID = "ID приёма обязателен"
	msgMissingUserID        = "не указан ID пользователя"
	msgNotFound             = "приём не найден"
	msgForbidden            = "отметить приём может только врач"
	msgCannotComplete       = "приём не может быть завершён"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID := mux.Vars(r)["appointmentId"]
	if appointmentID == "" {
		h.logger.Warn("PATCH /appointments/{id}/complete - Missing appointment ID")
		handlers.RespondBadRequest(w, msgMissingAppointmentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /appointments/{id}/complete - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	err := h.service.Complete(r.Context(), appointmentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/complete - Appointment not found: appointment_id=%s", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("PATCH /appointments/{id}/complete - Access denied: appointment_id=%s, user_id=%s",
				appointmentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrCannotComplete):
			h.logger.Warn("PATCH /appointments/{id}/complete - Cannot complete: appointment_id=%s", appointmentID)
			handlers.RespondConflict(w, msgCannotComplete)

		default:
			h.logger.Error("PATCH /appointments/{id}/complete - Failed to complete appointment: appointment_id=%s, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/complete - Appointment completed: appointment_id=%s", appointmentID)
	handlers.RespondJSON(w, http.StatusOK, nil)
}

package get_patient_appointments

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/api/middleware"
	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments"
	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments/models"
)

const (
	msgMissingPatientID = "ID пациента обязателен"
	msgMissingUserID    = "не указан ID пользователя"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidFilter    = "некорректные параметры фильтра"
	msgForbidden        = "доступ запрещен"
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

// Handle GET /api/v1/patients/{patientId}/appointments
// Query params: tab (optional: scheduled, pending, previous/completed, cancelled), from, to (optional, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["patientId"]
	if ownerID == "" {
		h.logger.Warn("GET /patients/{id}/appointments - Missing patient ID")
		handlers.RespondBadRequest(w, msgMissingPatientID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /patients/{id}/appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	startDate, err := handlers.OptionalDateQuery(r, "from")
	if err != nil {
		h.logger.Warn("GET /patients/{id}/appointments - Invalid from: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	endDate, err := handlers.OptionalDateQuery(r, "to")
	if err != nil {
		h.logger.Warn("GET /patients/{id}/appointments - Invalid to: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	req := &models.ListAppointmentsRequest{
		UserID:    userID,
		OwnerID:   ownerID,
		StartDate: startDate,
		EndDate:   endDate,
	}
	if tab := r.URL.Query().Get("tab"); tab != "" {
		req.Tab = &tab
	}

	result, err := h.service.ListByPatient(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /patients/{id}/appointments - Access denied: patient_id=%s, user_id=%s", ownerID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrInvalidInput), errors.Is(err, appointments.ErrInvalidTimeRange):
			h.logger.Warn("GET /patients/{id}/appointments - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /patients/{id}/appointments - Failed to list appointments: patient_id=%s, error=%v", ownerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /patients/{id}/appointments - Retrieved %d appointments for patient_id=%s",
		len(result.Appointments), ownerID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

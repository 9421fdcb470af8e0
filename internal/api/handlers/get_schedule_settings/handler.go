package get_schedule_settings

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/service/settings"
)

const msgMissingDoctorID = "ID врача обязателен"

type Handler struct {
	service SettingsService
	logger  Logger
}

func NewHandler(service SettingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/doctors/{doctorId}/schedule-settings
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctorId"]
	if doctorID == "" {
		h.logger.Warn("GET /doctors/{id}/schedule-settings - Missing doctor ID")
		handlers.RespondBadRequest(w, msgMissingDoctorID)
		return
	}

	result, err := h.service.Get(r.Context(), doctorID)
	if err != nil {
		if errors.Is(err, settings.ErrInvalidInput) {
			h.logger.Warn("GET /doctors/{id}/schedule-settings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgMissingDoctorID)
			return
		}
		h.logger.Error("GET /doctors/{id}/schedule-settings - Failed to get settings: doctor_id=%s, error=%v", doctorID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /doctors/{id}/schedule-settings - doctor_id=%s, source=%s", doctorID, result.Source)
	handlers.RespondJSON(w, http.StatusOK, result)
}

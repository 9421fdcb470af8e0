package update_schedule_settings

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/api/middleware"
	"github.com/m04kA/HMS-AppointmentService/internal/service/settings"
)

const (
	msgMissingDoctorID    = "ID врача обязателен"
	msgMissingUserID      = "не указан ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSettings    = "значения настроек вне допустимого диапазона"
	msgForbidden          = "изменить настройки может только сам врач"
)

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

// Handle PUT /api/v1/doctors/{doctorId}/schedule-settings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctorId"]
	if doctorID == "" {
		h.logger.Warn("PUT /doctors/{id}/schedule-settings - Missing doctor ID")
		handlers.RespondBadRequest(w, msgMissingDoctorID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /doctors/{id}/schedule-settings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateSettingsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /doctors/{id}/schedule-settings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.Validate(req); err != nil {
		h.logger.Warn("PUT /doctors/{id}/schedule-settings - Validation failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSettings)
		return
	}

	result, err := h.service.Update(r.Context(), doctorID, req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrAccessDenied):
			h.logger.Warn("PUT /doctors/{id}/schedule-settings - Access denied: doctor_id=%s, user_id=%s", doctorID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, settings.ErrInvalidInput):
			h.logger.Warn("PUT /doctors/{id}/schedule-settings - Invalid settings: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSettings)

		default:
			h.logger.Error("PUT /doctors/{id}/schedule-settings - Failed to update settings: doctor_id=%s, error=%v", doctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /doctors/{id}/schedule-settings - Settings updated: doctor_id=%s, granularity=%d, break=%d",
		doctorID, result.SlotGranularityMinutes, result.BreakDurationMinutes)
	handlers.RespondJSON(w, http.StatusOK, result)
}

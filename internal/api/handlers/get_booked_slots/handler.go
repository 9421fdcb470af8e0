package get_booked_slots

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments"
)

const (
	msgMissingDoctorID = "ID врача обязателен"
	msgMissingPeriod   = "параметры from и to обязательны"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidPeriod   = "некорректный период"
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

// Handle GET /api/v1/doctors/{doctorId}/booked-slots
// Query params: from, to (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctorId"]
	if doctorID == "" {
		h.logger.Warn("GET /doctors/{id}/booked-slots - Missing doctor ID")
		handlers.RespondBadRequest(w, msgMissingDoctorID)
		return
	}

	query := r.URL.Query()
	if query.Get("from") == "" || query.Get("to") == "" {
		h.logger.Warn("GET /doctors/{id}/booked-slots - Missing period")
		handlers.RespondBadRequest(w, msgMissingPeriod)
		return
	}

	from, err := handlers.ParseDate(query.Get("from"))
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/booked-slots - Invalid from: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	to, err := handlers.ParseDate(query.Get("to"))
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/booked-slots - Invalid to: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetBookedSlots(r.Context(), doctorID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidTimeRange), errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /doctors/{id}/booked-slots - Invalid period: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPeriod)

		default:
			h.logger.Error("GET /doctors/{id}/booked-slots - Failed to get booked slots: doctor_id=%s, error=%v", doctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /doctors/{id}/booked-slots - doctor_id=%s, period=%s..%s, days=%d",
		doctorID, from.Format(time.DateOnly), to.Format(time.DateOnly), len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result)
}

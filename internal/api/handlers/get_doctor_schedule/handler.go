package get_doctor_schedule

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	getDoctorSchedule "github.com/m04kA/HMS-AppointmentService/internal/usecase/get_doctor_schedule"
)

const (
	msgMissingDoctorID = "ID врача обязателен"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgDoctorNotFound  = "врач не найден"
	msgInvalidInput    = "некорректные параметры запроса"
)

type Handler struct {
	useCase GetDoctorScheduleUseCase
	logger  Logger
}

func NewHandler(useCase GetDoctorScheduleUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/doctors/{doctorId}/schedule
// Query params: weekStart (optional, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctorId"]
	if doctorID == "" {
		h.logger.Warn("GET /doctors/{id}/schedule - Missing doctor ID")
		handlers.RespondBadRequest(w, msgMissingDoctorID)
		return
	}

	weekStart, err := handlers.OptionalDateQuery(r, "weekStart")
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/schedule - Invalid weekStart: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	req := &getDoctorSchedule.Request{DoctorID: doctorID}
	if weekStart != nil {
		req.WeekStart = *weekStart
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getDoctorSchedule.ErrDoctorNotFound):
			h.logger.Warn("GET /doctors/{id}/schedule - Doctor not found: doctor_id=%s", doctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		case errors.Is(err, getDoctorSchedule.ErrInvalidInput):
			h.logger.Warn("GET /doctors/{id}/schedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /doctors/{id}/schedule - Failed to build schedule: doctor_id=%s, error=%v", doctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /doctors/{id}/schedule - Schedule built: doctor_id=%s, week_start=%s, days=%d",
		doctorID, result.WeekStart.Format("2006-01-02"), len(result.Days))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

package get_booked_slots

import (
	"context"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments/models"
)

type AppointmentService interface {
	GetBookedSlots(ctx context.Context, doctorID string, from, to time.Time) (*models.BookedSlotsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package appointments

import (
	"context"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория приёмов
type AppointmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	GetBookedSlots(ctx context.Context, doctorID string, from, to time.Time, excludeID *string) (domain.BookedSlots, error)
	UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) error
	Cancel(ctx context.Context, id string, reason *string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

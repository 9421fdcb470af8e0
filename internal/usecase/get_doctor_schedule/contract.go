package get_doctor_schedule

import (
	"context"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
)

// AppointmentRepository интерфейс репозитория приёмов
type AppointmentRepository interface {
	// GetBookedSlots возвращает занятые слоты врача за период (без отменённых приёмов)
	GetBookedSlots(ctx context.Context, doctorID string, from, to time.Time, excludeID *string) (domain.BookedSlots, error)
}

// SettingsRepository интерфейс репозитория настроек генерации слотов
type SettingsRepository interface {
	// GetWithHierarchy получает настройки врача, а если их нет - глобальные
	GetWithHierarchy(ctx context.Context, doctorID string) (*domain.ScheduleSettings, error)
}

// DoctorServiceClient интерфейс клиента сервиса профилей врачей
type DoctorServiceClient interface {
	GetDoctor(ctx context.Context, doctorID string) (*doctorservice.Doctor, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

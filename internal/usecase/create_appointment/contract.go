package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/infra/lock"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
)

// AppointmentRepository интерфейс репозитория приёмов
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	GetBookedSlots(ctx context.Context, doctorID string, from, to time.Time, excludeID *string) (domain.BookedSlots, error)
}

// SettingsRepository интерфейс репозитория настроек генерации слотов
type SettingsRepository interface {
	GetWithHierarchy(ctx context.Context, doctorID string) (*domain.ScheduleSettings, error)
}

// DoctorServiceClient интерфейс клиента сервиса профилей врачей
type DoctorServiceClient interface {
	GetDoctor(ctx context.Context, doctorID string) (*doctorservice.Doctor, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotLocker кратковременная блокировка слота на время транзакции
type SlotLocker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (lock.Release, error)
}

// DecisionRecorder счётчик решений валидатора
type DecisionRecorder interface {
	RecordBookingDecision(operation, outcome string)
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

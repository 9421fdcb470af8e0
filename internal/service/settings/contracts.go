package settings

import (
	"context"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// SettingsRepository интерфейс репозитория настроек генерации слотов
type SettingsRepository interface {
	Create(ctx context.Context, s *domain.ScheduleSettings) (*domain.ScheduleSettings, error)
	GetByDoctor(ctx context.Context, doctorID *string) (*domain.ScheduleSettings, error)
	GetWithHierarchy(ctx context.Context, doctorID string) (*domain.ScheduleSettings, error)
	Update(ctx context.Context, s *domain.ScheduleSettings) (*domain.ScheduleSettings, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

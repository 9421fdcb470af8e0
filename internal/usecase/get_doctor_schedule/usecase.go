package get_doctor_schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"

	settingsRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/settings"
	doctorClient "github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	"github.com/m04kA/HMS-AppointmentService/internal/scheduling"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// UseCase use case для получения недельной таблицы слотов врача
type UseCase struct {
	appointmentRepo AppointmentRepository
	settingsRepo    SettingsRepository
	doctorClient    DoctorServiceClient
	defaults        scheduling.Options
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// defaults используются, если в БД нет ни настроек врача, ни глобальных.
func NewUseCase(
	appointmentRepo AppointmentRepository,
	settingsRepo SettingsRepository,
	doctorClient DoctorServiceClient,
	defaults scheduling.Options,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		settingsRepo:    settingsRepo,
		doctorClient:    doctorClient,
		defaults:        defaults,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения расписания
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if strings.TrimSpace(req.DoctorID) == "" {
		uc.logger.Warn("GetDoctorSchedule: validation failed: empty doctorId")
		return nil, fmt.Errorf("%w: doctorId is required", ErrInvalidInput)
	}

	// 2. Неделя не может начинаться раньше сегодняшнего дня
	today := types.DateOnly(uc.timeProvider.Now())
	weekStart := scheduling.NormalizeAnchor(req.WeekStart, today)
	weekEnd := scheduling.WeekEnd(weekStart)

	uc.logger.Info("GetDoctorSchedule: doctor=%s, week=%s..%s",
		req.DoctorID, types.FormatDate(weekStart), types.FormatDate(weekEnd))

	// 3. Получаем профиль врача
	doctor, err := uc.doctorClient.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctorClient.ErrDoctorNotFound) {
			uc.logger.Warn("GetDoctorSchedule: doctor id=%s not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("GetDoctorSchedule: failed to get doctor id=%s: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}

	// 4. Настройки генерации с учетом иерархии
	opts := uc.defaults
	settings, err := uc.settingsRepo.GetWithHierarchy(ctx, req.DoctorID)
	switch {
	case err == nil:
		opts = scheduling.OptionsFromSettings(settings)
		uc.logger.Info("GetDoctorSchedule: using settings id=%d (global=%t)", settings.ID, settings.IsGlobal())
	case errors.Is(err, settingsRepo.ErrSettingsNotFound):
		uc.logger.Info("GetDoctorSchedule: using default settings for doctor=%s", req.DoctorID)
	default:
		uc.logger.Error("GetDoctorSchedule: failed to get settings: %v", err)
		return nil, fmt.Errorf("%w: failed to get settings: %v", ErrInternal, err)
	}

	// 5. Генерируем таблицу. Некорректные рабочие часы дают пустые дни.
	generator := scheduling.NewGenerator(opts)
	table, err := generator.GenerateWeek(doctor.WorkingHours.ToDomain(), weekStart)
	if err != nil {
		uc.logger.Warn("GetDoctorSchedule: doctor id=%s has no valid schedule: %v", req.DoctorID, err)
	}

	// 6. Занятые слоты за неделю
	booked, err := uc.appointmentRepo.GetBookedSlots(ctx, req.DoctorID, weekStart, weekEnd, nil)
	if err != nil {
		uc.logger.Error("GetDoctorSchedule: failed to get booked slots: %v", err)
		return nil, fmt.Errorf("%w: failed to get booked slots: %v", ErrInternal, err)
	}

	days := buildDays(table, booked)

	uc.logger.Info("GetDoctorSchedule: generated %d days for doctor=%s, empty=%t",
		len(days), req.DoctorID, table.IsEmpty())

	return &Response{
		DoctorID:               req.DoctorID,
		DoctorName:             doctor.FullName(),
		WeekStart:              weekStart,
		WeekEnd:                weekEnd,
		PreviousWeek:           scheduling.PreviousWeek(weekStart, today),
		NextWeek:               scheduling.NextWeek(weekStart),
		CanGoPrevious:          scheduling.CanGoPrevious(weekStart, today),
		IsEmpty:                table.IsEmpty(),
		SlotGranularityMinutes: generator.Granularity(),
		Days:                   days,
	}, nil
}

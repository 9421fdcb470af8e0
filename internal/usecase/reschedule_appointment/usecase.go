package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/infra/lock"
	appointmentRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	settingsRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/settings"
	doctorClient "github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	"github.com/m04kA/HMS-AppointmentService/internal/scheduling"
	"github.com/m04kA/HMS-AppointmentService/pkg/txmanager"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

const operation = "reschedule"

// Config параметры use case
type Config struct {
	Defaults scheduling.Options
	LockTTL  time.Duration
}

// UseCase use case переноса приёма на другой слот
type UseCase struct {
	appointmentRepo AppointmentRepository
	settingsRepo    SettingsRepository
	doctorClient    DoctorServiceClient
	txManager       TransactionManager
	locker          SlotLocker
	recorder        DecisionRecorder
	validator       *scheduling.Validator
	cfg             Config
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	settingsRepo SettingsRepository,
	doctorClient DoctorServiceClient,
	txManager TransactionManager,
	locker SlotLocker,
	recorder DecisionRecorder,
	cfg Config,
	logger Logger,
) *UseCase {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		settingsRepo:    settingsRepo,
		doctorClient:    doctorClient,
		txManager:       txManager,
		locker:          locker,
		recorder:        recorder,
		validator:       scheduling.NewValidator(),
		cfg:             cfg,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute переносит ожидающий приём на новую дату и время.
// Новый слот проверяется тем же валидатором, что и при записи; собственный слот приёма занятым не считается.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: id=%s, user=%s, date=%s, time=%s",
		req.AppointmentID, req.UserID, types.FormatDate(req.Date), req.Time)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		if errors.Is(err, ErrMissingField) {
			uc.record(string(scheduling.ReasonMissingField))
		}
		return nil, err
	}
	newDate := types.DateOnly(req.Date)

	// 2. Загружаем приём и проверяем права
	current, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		return nil, uc.mapLoadError(req.AppointmentID, err)
	}
	if current.PatientID != req.UserID && current.DoctorID != req.UserID {
		uc.logger.Warn("RescheduleAppointment: access denied for user=%s to appointment id=%s", req.UserID, req.AppointmentID)
		return nil, ErrAccessDenied
	}
	if !current.CanBeRescheduled() {
		uc.logger.Warn("RescheduleAppointment: appointment id=%s has status=%s", req.AppointmentID, current.Status)
		return nil, ErrInvalidStatus
	}

	// 3. Получаем профиль врача и строим слоты новой даты
	doctor, err := uc.doctorClient.GetDoctor(ctx, current.DoctorID)
	if err != nil {
		if errors.Is(err, doctorClient.ErrDoctorNotFound) {
			uc.logger.Warn("RescheduleAppointment: doctor id=%s not found", current.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get doctor id=%s: %v", current.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}

	opts, err := uc.resolveOptions(ctx, current.DoctorID)
	if err != nil {
		return nil, err
	}
	slots, err := scheduling.NewGenerator(opts).GenerateDay(doctor.WorkingHours.ToDomain(), newDate)
	if err != nil {
		uc.logger.Warn("RescheduleAppointment: doctor id=%s has no valid schedule: %v", current.DoctorID, err)
	}

	var slot *domain.Slot
	if !types.IsDateBefore(newDate, uc.timeProvider.Now()) {
		slot = scheduling.FindSlotInDay(slots, req.Time)
	}

	// 4. Блокируем новый слот
	release, err := uc.acquire(ctx, current.DoctorID, newDate, req.Time)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.logger.Warn("RescheduleAppointment: failed to release slot lock: %v", err)
		}
	}()

	var previous *domain.Appointment

	// 5. Повторная проверка статуса, занятости и обновление в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		locked, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			return uc.mapLoadError(req.AppointmentID, err)
		}
		if !locked.CanBeRescheduled() {
			return ErrInvalidStatus
		}

		booked, err := uc.appointmentRepo.GetBookedSlots(txCtx, locked.DoctorID, newDate, newDate, &locked.ID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSerialization) {
				uc.record(string(scheduling.ReasonSlotAlreadyBooked))
				return scheduling.Conflict("concurrent read")
			}
			uc.logger.Error("RescheduleAppointment: failed to get booked slots: %v", err)
			return fmt.Errorf("%w: failed to get booked slots: %v", ErrInternal, err)
		}

		decision := uc.validator.Validate(bookingRequest(locked, newDate, req.Time), slot, booked)
		if !decision.Accepted {
			uc.record(decision.Outcome())
			uc.logger.Warn("RescheduleAppointment: rejected %s: %s", decision.Reason, decision.Detail)
			return decision.Err()
		}

		if err := uc.appointmentRepo.Reschedule(txCtx, locked.ID, newDate, req.Time); err != nil {
			switch {
			case errors.Is(err, appointmentRepo.ErrSlotTaken), errors.Is(err, appointmentRepo.ErrSerialization):
				uc.logger.Warn("RescheduleAppointment: slot taken concurrently: %v", err)
				uc.record(string(scheduling.ReasonSlotAlreadyBooked))
				return scheduling.Conflict("taken concurrently")
			case errors.Is(err, appointmentRepo.ErrStatusConflict):
				return ErrInvalidStatus
			default:
				uc.logger.Error("RescheduleAppointment: failed to update appointment: %v", err)
				return fmt.Errorf("%w: failed to update appointment: %v", ErrInternal, err)
			}
		}

		previous = locked
		return nil
	})

	if err != nil {
		var rejection *RejectionError
		switch {
		case errors.As(err, &rejection),
			errors.Is(err, ErrInternal),
			errors.Is(err, ErrInvalidStatus),
			errors.Is(err, ErrAppointmentNotFound):
			return nil, err
		case errors.Is(err, txmanager.ErrSerialization):
			uc.logger.Warn("RescheduleAppointment: serialization conflict on commit: %v", err)
			uc.record(string(scheduling.ReasonSlotAlreadyBooked))
			return nil, scheduling.Conflict("serialization failure")
		default:
			uc.logger.Error("RescheduleAppointment: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
		}
	}

	uc.record(scheduling.OutcomeAccepted)
	uc.logger.Info("RescheduleAppointment: appointment id=%s moved from %s %s to %s %s",
		previous.ID, types.FormatDate(previous.AppointmentDate), previous.AppointmentTime, types.FormatDate(newDate), req.Time)

	return &Response{
		ID:              previous.ID,
		DoctorID:        previous.DoctorID,
		PatientID:       previous.PatientID,
		AppointmentDate: newDate,
		AppointmentTime: req.Time,
		PreviousDate:    previous.AppointmentDate,
		PreviousTime:    previous.AppointmentTime,
		Status:          string(previous.Status),
	}, nil
}

func (uc *UseCase) mapLoadError(id string, err error) error {
	if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
		uc.logger.Warn("RescheduleAppointment: appointment id=%s not found", id)
		return ErrAppointmentNotFound
	}
	uc.logger.Error("RescheduleAppointment: failed to get appointment id=%s: %v", id, err)
	return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
}

// resolveOptions настройки врача > глобальные настройки > значения из конфигурации
func (uc *UseCase) resolveOptions(ctx context.Context, doctorID string) (scheduling.Options, error) {
	s, err := uc.settingsRepo.GetWithHierarchy(ctx, doctorID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return uc.cfg.Defaults, nil
		}
		uc.logger.Error("RescheduleAppointment: failed to get schedule settings for doctor=%s: %v", doctorID, err)
		return scheduling.Options{}, fmt.Errorf("%w: failed to get schedule settings: %v", ErrInternal, err)
	}
	return scheduling.OptionsFromSettings(s), nil
}

func (uc *UseCase) acquire(ctx context.Context, doctorID string, date time.Time, t types.TimeOfDay) (lock.Release, error) {
	key := lock.SlotKey(doctorID, types.FormatDate(date), t.Minutes())

	release, err := uc.locker.Lock(ctx, key, uc.cfg.LockTTL)
	if err == nil {
		return release, nil
	}
	if errors.Is(err, lock.ErrLockHeld) {
		uc.logger.Warn("RescheduleAppointment: slot %s is being booked by another request", key)
		uc.record(string(scheduling.ReasonSlotAlreadyBooked))
		return nil, scheduling.Conflict("slot is being booked")
	}

	uc.logger.Error("RescheduleAppointment: slot lock unavailable, continuing without it: %v", err)
	return func(context.Context) error { return nil }, nil
}

func (uc *UseCase) record(outcome string) {
	if uc.recorder != nil {
		uc.recorder.RecordBookingDecision(operation, outcome)
	}
}

// bookingRequest запрос валидатору: данные приёма с новыми датой и временем
func bookingRequest(a *domain.Appointment, date time.Time, t types.TimeOfDay) domain.BookingRequest {
	return domain.BookingRequest{
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		Date:            date,
		Time:            t,
		AppointmentType: a.AppointmentType,
		PatientIssue:    a.PatientIssue,
		DiseaseName:     a.DiseaseName,
		DoctorFees:      a.DoctorFees,
	}
}

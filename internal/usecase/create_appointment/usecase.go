package create_appointment

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

const operation = "create"

// Config параметры use case
type Config struct {
	// Defaults используются, если для врача нет сохранённых настроек
	Defaults scheduling.Options
	// LockTTL время жизни блокировки слота
	LockTTL time.Duration
}

// UseCase use case записи пациента к врачу
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

// Execute выполняет use case записи к врачу.
// Проверка слота и вставка выполняются в одной сериализуемой транзакции под блокировкой слота.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: doctor=%s, patient=%s, date=%s, time=%s, type=%s",
		req.DoctorID, req.PatientID, types.FormatDate(req.Date), req.Time, req.AppointmentType)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		if errors.Is(err, ErrMissingField) {
			uc.record(string(scheduling.ReasonMissingField))
		}
		return nil, err
	}
	bookingReq := toBookingRequest(req)
	bookingReq.Date = types.DateOnly(bookingReq.Date)

	// 2. Получаем профиль врача
	doctor, err := uc.doctorClient.GetDoctor(ctx, bookingReq.DoctorID)
	if err != nil {
		if errors.Is(err, doctorClient.ErrDoctorNotFound) {
			uc.logger.Warn("CreateAppointment: doctor id=%s not found", bookingReq.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get doctor id=%s: %v", bookingReq.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}

	// Стоимость фиксируется на момент записи
	if req.DoctorFees == nil {
		bookingReq.DoctorFees = float64(doctor.OnlineConsultationRate)
	}

	// 3. Строим слоты дня с учетом настроек врача
	opts, err := uc.resolveOptions(ctx, bookingReq.DoctorID)
	if err != nil {
		return nil, err
	}
	slots, err := scheduling.NewGenerator(opts).GenerateDay(doctor.WorkingHours.ToDomain(), bookingReq.Date)
	if err != nil {
		uc.logger.Warn("CreateAppointment: doctor id=%s has no valid schedule: %v", bookingReq.DoctorID, err)
	}

	// 4. Прошедшие даты не бронируются
	var slot *domain.Slot
	if !types.IsDateBefore(bookingReq.Date, uc.timeProvider.Now()) {
		slot = scheduling.FindSlotInDay(slots, bookingReq.Time)
	}

	// 5. Блокируем слот на время транзакции
	release, err := uc.acquire(ctx, bookingReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.logger.Warn("CreateAppointment: failed to release slot lock: %v", err)
		}
	}()

	var result *domain.Appointment

	// 6. Проверка занятости и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booked, err := uc.appointmentRepo.GetBookedSlots(txCtx, bookingReq.DoctorID, bookingReq.Date, bookingReq.Date, nil)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSerialization) {
				uc.record(string(scheduling.ReasonSlotAlreadyBooked))
				return scheduling.Conflict("concurrent read")
			}
			uc.logger.Error("CreateAppointment: failed to get booked slots: %v", err)
			return fmt.Errorf("%w: failed to get booked slots: %v", ErrInternal, err)
		}

		decision := uc.validator.Validate(bookingReq, slot, booked)
		if !decision.Accepted {
			uc.record(decision.Outcome())
			uc.logger.Warn("CreateAppointment: rejected %s: %s", decision.Reason, decision.Detail)
			return decision.Err()
		}

		appointment := &domain.Appointment{
			DoctorID:        bookingReq.DoctorID,
			PatientID:       bookingReq.PatientID,
			AppointmentDate: bookingReq.Date,
			AppointmentTime: bookingReq.Time,
			AppointmentType: bookingReq.AppointmentType,
			PatientIssue:    bookingReq.PatientIssue,
			DiseaseName:     bookingReq.DiseaseName,
			DoctorFees:      bookingReq.DoctorFees,
			Status:          domain.StatusPending,
			Specialty:       nonEmpty(doctor.Specialty),
			Hospital:        nonEmpty(doctor.HospitalName),
		}

		created, err := uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotTaken) || errors.Is(err, appointmentRepo.ErrSerialization) {
				uc.logger.Warn("CreateAppointment: slot taken concurrently: %v", err)
				uc.record(string(scheduling.ReasonSlotAlreadyBooked))
				return scheduling.Conflict("taken concurrently")
			}
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		var rejection *RejectionError
		switch {
		case errors.As(err, &rejection), errors.Is(err, ErrInternal):
			return nil, err
		case errors.Is(err, txmanager.ErrSerialization):
			uc.logger.Warn("CreateAppointment: serialization conflict on commit: %v", err)
			uc.record(string(scheduling.ReasonSlotAlreadyBooked))
			return nil, scheduling.Conflict("serialization failure")
		default:
			uc.logger.Error("CreateAppointment: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
		}
	}

	uc.record(scheduling.OutcomeAccepted)
	uc.logger.Info("CreateAppointment: successfully created appointment id=%s", result.ID)

	return toResponse(result, doctor), nil
}

// resolveOptions настройки врача > глобальные настройки > значения из конфигурации
func (uc *UseCase) resolveOptions(ctx context.Context, doctorID string) (scheduling.Options, error) {
	s, err := uc.settingsRepo.GetWithHierarchy(ctx, doctorID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return uc.cfg.Defaults, nil
		}
		uc.logger.Error("CreateAppointment: failed to get schedule settings for doctor=%s: %v", doctorID, err)
		return scheduling.Options{}, fmt.Errorf("%w: failed to get schedule settings: %v", ErrInternal, err)
	}
	return scheduling.OptionsFromSettings(s), nil
}

// acquire берёт блокировку слота. Недоступность Redis не мешает записи:
// взаимное исключение всё равно обеспечивают транзакция и уникальный индекс.
func (uc *UseCase) acquire(ctx context.Context, req domain.BookingRequest) (lock.Release, error) {
	key := lock.SlotKey(req.DoctorID, types.FormatDate(req.Date), req.Time.Minutes())

	release, err := uc.locker.Lock(ctx, key, uc.cfg.LockTTL)
	if err == nil {
		return release, nil
	}
	if errors.Is(err, lock.ErrLockHeld) {
		uc.logger.Warn("CreateAppointment: slot %s is being booked by another request", key)
		uc.record(string(scheduling.ReasonSlotAlreadyBooked))
		return nil, scheduling.Conflict("slot is being booked")
	}

	uc.logger.Error("CreateAppointment: slot lock unavailable, continuing without it: %v", err)
	return func(context.Context) error { return nil }, nil
}

func (uc *UseCase) record(outcome string) {
	if uc.recorder != nil {
		uc.recorder.RecordBookingDecision(operation, outcome)
	}
}

func toResponse(a *domain.Appointment, doctor *doctorClient.Doctor) *Response {
	return &Response{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		AppointmentDate: a.AppointmentDate,
		AppointmentTime: a.AppointmentTime,
		AppointmentType: string(a.AppointmentType),
		PatientIssue:    a.PatientIssue,
		DiseaseName:     a.DiseaseName,
		DoctorFees:      a.DoctorFees,
		Status:          string(a.Status),
		DoctorName:      doctor.FullName(),
		Specialty:       a.Specialty,
		Hospital:        a.Hospital,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

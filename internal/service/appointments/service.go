package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// MaxBookedSlotsRangeDays максимальная длина периода для запроса занятых слотов
const MaxBookedSlotsRangeDays = 92

// Service сервис для работы с приёмами
type Service struct {
	appointmentRepo AppointmentRepository
	logger          Logger
}

// NewService создает новый экземпляр сервиса приёмов
func NewService(appointmentRepo AppointmentRepository, logger Logger) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		logger:          logger,
	}
}

// GetByID получает приём по ID.
// Приём видят только его пациент и врач.
func (s *Service) GetByID(ctx context.Context, id string, userID string) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%s for user=%s", id, userID)

	appointment, err := s.load(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !isParticipant(appointment, userID) {
		s.logger.Warn("GetByID: access denied for user=%s to appointment id=%s", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainAppointment(appointment), nil
}

// ListByPatient получает приёмы пациента с фильтром по вкладке и периоду
func (s *Service) ListByPatient(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListByPatient: fetching appointments for patient=%s, user=%s, tab=%v", req.OwnerID, req.UserID, req.Tab)

	if req.UserID != req.OwnerID {
		s.logger.Warn("ListByPatient: user=%s cannot list appointments of patient=%s", req.UserID, req.OwnerID)
		return nil, ErrAccessDenied
	}

	return s.list(ctx, "ListByPatient", req, func(f *domain.AppointmentsFilter) { f.PatientID = &req.OwnerID })
}

// ListByDoctor получает приёмы врача с фильтром по вкладке и периоду
func (s *Service) ListByDoctor(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListByDoctor: fetching appointments for doctor=%s, user=%s, tab=%v", req.OwnerID, req.UserID, req.Tab)

	if req.UserID != req.OwnerID {
		s.logger.Warn("ListByDoctor: user=%s cannot list appointments of doctor=%s", req.UserID, req.OwnerID)
		return nil, ErrAccessDenied
	}

	return s.list(ctx, "ListByDoctor", req, func(f *domain.AppointmentsFilter) { f.DoctorID = &req.OwnerID })
}

// Cancel отменяет ожидающий приём. Отмена освобождает слот для новой записи.
// Отменить приём может пациент или врач.
func (s *Service) Cancel(ctx context.Context, id string, req *models.CancelAppointmentRequest) error {
	s.logger.Info("Cancel: cancelling appointment id=%s by user=%s", id, req.UserID)

	reason := normalizeReason(req.CancellationReason)
	if reason != nil && utf8.RuneCountInString(*reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellationReason is longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	appointment, err := s.load(ctx, "Cancel", id)
	if err != nil {
		return err
	}

	if !isParticipant(appointment, req.UserID) {
		s.logger.Warn("Cancel: access denied for user=%s to appointment id=%s", req.UserID, id)
		return ErrAccessDenied
	}

	if !appointment.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%s cannot be cancelled, status=%s", id, appointment.Status)
		return ErrCannotCancel
	}

	if err := s.appointmentRepo.Cancel(ctx, id, reason); err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			s.logger.Warn("Cancel: appointment id=%s changed status during cancellation", id)
			return ErrCannotCancel
		}
		s.logger.Error("Cancel: repository error for appointment id=%s: %v", id, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled appointment id=%s", id)
	return nil
}

// Complete отмечает приём как состоявшийся. Доступно только врачу приёма.
func (s *Service) Complete(ctx context.Context, id string, userID string) error {
	s.logger.Info("Complete: completing appointment id=%s by user=%s", id, userID)

	appointment, err := s.load(ctx, "Complete", id)
	if err != nil {
		return err
	}

	if appointment.DoctorID != userID {
		s.logger.Warn("Complete: user=%s is not the doctor of appointment id=%s", userID, id)
		return ErrAccessDenied
	}

	if !appointment.CanBeCompleted() {
		s.logger.Warn("Complete: appointment id=%s cannot be completed, status=%s", id, appointment.Status)
		return ErrCannotComplete
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, domain.StatusCompleted); err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			return ErrCannotComplete
		}
		s.logger.Error("Complete: repository error for appointment id=%s: %v", id, err)
		return fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Complete: successfully completed appointment id=%s", id)
	return nil
}

// GetBookedSlots возвращает занятые слоты врача за период [from, to]
func (s *Service) GetBookedSlots(ctx context.Context, doctorID string, from, to time.Time) (*models.BookedSlotsResponse, error) {
	from, to = types.DateOnly(from), types.DateOnly(to)
	s.logger.Info("GetBookedSlots: doctor=%s, period=%s to %s", doctorID, types.FormatDate(from), types.FormatDate(to))

	if strings.TrimSpace(doctorID) == "" {
		return nil, fmt.Errorf("%w: doctorId is required", ErrInvalidInput)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", ErrInvalidTimeRange)
	}
	if to.Sub(from) > MaxBookedSlotsRangeDays*24*time.Hour {
		return nil, fmt.Errorf("%w: period is longer than %d days", ErrInvalidTimeRange, MaxBookedSlotsRangeDays)
	}

	booked, err := s.appointmentRepo.GetBookedSlots(ctx, doctorID, from, to, nil)
	if err != nil {
		s.logger.Error("GetBookedSlots: repository error for doctor=%s: %v", doctorID, err)
		return nil, fmt.Errorf("%w: GetBookedSlots - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookedSlots(doctorID, from, to, booked), nil
}

// Вспомогательные методы

func (s *Service) load(ctx context.Context, op, id string) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%s not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appointment, nil
}

func (s *Service) list(
	ctx context.Context,
	op string,
	req *models.ListAppointmentsRequest,
	owner func(f *domain.AppointmentsFilter),
) (*models.AppointmentListResponse, error) {
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidTimeRange)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("%s: invalid filter: %v", op, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	owner(&filter)

	appointments, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("%s: repository error for owner=%s: %v", op, req.OwnerID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	s.logger.Info("%s: successfully fetched %d appointments for owner=%s", op, len(appointments), req.OwnerID)
	return models.FromDomainAppointmentList(appointments), nil
}

// isParticipant пользователь - пациент или врач приёма
func isParticipant(a *domain.Appointment, userID string) bool {
	return userID != "" && (a.PatientID == userID || a.DoctorID == userID)
}

func normalizeReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

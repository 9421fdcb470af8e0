package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	settingsRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/settings"
	"github.com/m04kA/HMS-AppointmentService/internal/scheduling"
	"github.com/m04kA/HMS-AppointmentService/internal/service/settings/models"
)

// Service сервис для работы с настройками генерации слотов
type Service struct {
	settingsRepo SettingsRepository
	txManager    TransactionManager
	defaults     scheduling.Options
	logger       Logger
}

// NewService создает новый экземпляр сервиса настроек
func NewService(
	settingsRepo SettingsRepository,
	txManager TransactionManager,
	defaults scheduling.Options,
	logger Logger,
) *Service {
	return &Service{
		settingsRepo: settingsRepo,
		txManager:    txManager,
		defaults:     defaults,
		logger:       logger,
	}
}

// Get получает действующие настройки врача.
// Приоритет: настройки врача > глобальные настройки > значения из конфигурации.
func (s *Service) Get(ctx context.Context, doctorID string) (*models.SettingsResponse, error) {
	s.logger.Info("Get: fetching settings for doctor=%s", doctorID)

	if strings.TrimSpace(doctorID) == "" {
		return nil, fmt.Errorf("%w: doctorId is required", ErrInvalidInput)
	}

	settings, err := s.settingsRepo.GetWithHierarchy(ctx, doctorID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			s.logger.Info("Get: no stored settings for doctor=%s, using defaults", doctorID)
			return &models.SettingsResponse{
				DoctorID:               doctorID,
				SlotGranularityMinutes: s.defaults.SlotGranularityMinutes,
				BreakDurationMinutes:   s.defaults.BreakDurationMinutes,
				Source:                 models.SourceDefault,
			}, nil
		}
		s.logger.Error("Get: repository error for doctor=%s: %v", doctorID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSettings(doctorID, settings), nil
}

// Update изменяет настройки врача. Изменить их может только сам врач.
// Если у врача ещё нет своих настроек, они создаются на основе действующих.
func (s *Service) Update(ctx context.Context, doctorID string, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	s.logger.Info("Update: updating settings for doctor=%s by user=%s", doctorID, req.UserID)

	if req.UserID != doctorID {
		s.logger.Warn("Update: user=%s cannot change settings of doctor=%s", req.UserID, doctorID)
		return nil, ErrAccessDenied
	}

	var result *domain.ScheduleSettings

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		own, err := s.settingsRepo.GetByDoctor(txCtx, &doctorID)
		if err != nil && !errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}

		if own == nil {
			base, err := s.Get(txCtx, doctorID)
			if err != nil {
				return err
			}
			own = &domain.ScheduleSettings{
				DoctorID:               &doctorID,
				SlotGranularityMinutes: base.SlotGranularityMinutes,
				BreakDurationMinutes:   base.BreakDurationMinutes,
			}
		}

		req.ApplyTo(own)
		if err := validate(own); err != nil {
			return err
		}

		if own.ID == 0 {
			result, err = s.settingsRepo.Create(txCtx, own)
		} else {
			result, err = s.settingsRepo.Update(txCtx, own)
		}
		if err != nil {
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			s.logger.Warn("Update: validation failed for doctor=%s: %v", doctorID, err)
			return nil, err
		}
		s.logger.Error("Update: failed for doctor=%s: %v", doctorID, err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: Update - transaction failed: %v", ErrInternal, err)
	}

	s.logger.Info("Update: settings id=%d saved for doctor=%s (granularity=%d, break=%d)",
		result.ID, doctorID, result.SlotGranularityMinutes, result.BreakDurationMinutes)
	return models.FromDomainSettings(doctorID, result), nil
}

// validate проверяет границы параметров генерации
func validate(s *domain.ScheduleSettings) error {
	if s.SlotGranularityMinutes < domain.MinSlotGranularityMinutes || s.SlotGranularityMinutes > domain.MaxSlotGranularityMinutes {
		return fmt.Errorf("%w: slotGranularityMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotGranularityMinutes, domain.MaxSlotGranularityMinutes)
	}
	if s.BreakDurationMinutes < domain.MinBreakDurationMinutes || s.BreakDurationMinutes > domain.MaxBreakDurationMinutes {
		return fmt.Errorf("%w: breakDurationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinBreakDurationMinutes, domain.MaxBreakDurationMinutes)
	}
	return nil
}

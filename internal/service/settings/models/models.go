package models

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// Источник действующих настроек
const (
	SourceDoctor  = "doctor"
	SourceGlobal  = "global"
	SourceDefault = "default"
)

// Request модели

// UpdateSettingsRequest запрос на изменение настроек врача.
// Все поля опциональны - обновляются только переданные значения.
type UpdateSettingsRequest struct {
	UserID                 string `json:"userId"`
	SlotGranularityMinutes *int   `json:"slotGranularityMinutes,omitempty"`
	BreakDurationMinutes   *int   `json:"breakDurationMinutes,omitempty"`
}

// ApplyTo применяет обновления к настройкам
func (r *UpdateSettingsRequest) ApplyTo(s *domain.ScheduleSettings) {
	if r.SlotGranularityMinutes != nil {
		s.SlotGranularityMinutes = *r.SlotGranularityMinutes
	}
	if r.BreakDurationMinutes != nil {
		s.BreakDurationMinutes = *r.BreakDurationMinutes
	}
}

// Response модели

// SettingsResponse действующие настройки генерации слотов врача
type SettingsResponse struct {
	DoctorID               string     `json:"doctorId"`
	SlotGranularityMinutes int        `json:"slotGranularityMinutes"`
	BreakDurationMinutes   int        `json:"breakDurationMinutes"`
	Source                 string     `json:"source"` // doctor, global или default
	UpdatedAt              *time.Time `json:"updatedAt,omitempty"`
}

// FromDomainSettings конвертирует domain модель в DTO
func FromDomainSettings(doctorID string, s *domain.ScheduleSettings) *SettingsResponse {
	source := SourceDoctor
	if s.IsGlobal() {
		source = SourceGlobal
	}

	updatedAt := s.UpdatedAt
	return &SettingsResponse{
		DoctorID:               doctorID,
		SlotGranularityMinutes: s.SlotGranularityMinutes,
		BreakDurationMinutes:   s.BreakDurationMinutes,
		Source:                 source,
		UpdatedAt:              &updatedAt,
	}
}

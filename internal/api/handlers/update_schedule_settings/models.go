package update_schedule_settings

import (
	"github.com/m04kA/HMS-AppointmentService/internal/service/settings/models"
)

// UpdateSettingsRequest HTTP request model. Все поля опциональны.
type UpdateSettingsRequest struct {
	SlotGranularityMinutes *int `json:"slotGranularityMinutes,omitempty" validate:"omitempty,min=5,max=480"`
	BreakDurationMinutes   *int `json:"breakDurationMinutes,omitempty" validate:"omitempty,min=5,max=480"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateSettingsRequest) ToServiceRequest(userID string) *models.UpdateSettingsRequest {
	return &models.UpdateSettingsRequest{
		UserID:                 userID,
		SlotGranularityMinutes: r.SlotGranularityMinutes,
		BreakDurationMinutes:   r.BreakDurationMinutes,
	}
}

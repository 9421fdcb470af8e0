package cancel_appointment

import (
	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments/models"
)

// CancelAppointmentRequest HTTP request model. Тело запроса необязательно.
type CancelAppointmentRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelAppointmentRequest) ToServiceRequest(userID string) *models.CancelAppointmentRequest {
	return &models.CancelAppointmentRequest{
		UserID:             userID,
		CancellationReason: r.CancellationReason,
	}
}

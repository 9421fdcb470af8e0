package reschedule_appointment

import (
	"fmt"
	"strings"

	"github.com/m04kA/HMS-AppointmentService/internal/scheduling"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.AppointmentID) == "" {
		return fmt.Errorf("%w: appointmentId is required", ErrInvalidInput)
	}

	missing := make([]string, 0, 2)
	if req.Date.IsZero() {
		missing = append(missing, "date")
	}
	if req.Time.IsZero() {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return &RejectionError{Reason: scheduling.ReasonMissingField, Detail: strings.Join(missing, ",")}
	}

	return nil
}

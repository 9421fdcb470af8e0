package complete_appointment

import "context"

type AppointmentService interface {
	Complete(ctx context.Context, id string, userID string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

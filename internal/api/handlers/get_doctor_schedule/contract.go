package get_doctor_schedule

import (
	"context"

	getDoctorSchedule "github.com/m04kA/HMS-AppointmentService/internal/usecase/get_doctor_schedule"
)

type GetDoctorScheduleUseCase interface {
	Execute(ctx context.Context, req *getDoctorSchedule.Request) (*getDoctorSchedule.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

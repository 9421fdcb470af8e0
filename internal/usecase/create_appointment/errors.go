package create_appointment

import (
	"errors"

	"github.com/m04kA/HMS-AppointmentService/internal/scheduling"
)

// RejectionError отказ в бронировании (MissingField, SlotNotAvailable, SlotAlreadyBooked)
type RejectionError = scheduling.RejectionError

var (
	// ErrMissingField возвращается, когда не заполнено обязательное поле
	ErrMissingField = scheduling.ErrMissingField

	// ErrSlotNotAvailable возвращается, когда слот - перерыв, вне приёма или в прошлом
	ErrSlotNotAvailable = scheduling.ErrSlotNotAvailable

	// ErrSlotAlreadyBooked возвращается, когда слот уже занят, в том числе конкурирующим запросом
	ErrSlotAlreadyBooked = scheduling.ErrSlotAlreadyBooked

	// ErrDoctorNotFound возвращается, когда врач не найден
	ErrDoctorNotFound = errors.New("create_appointment: doctor not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)

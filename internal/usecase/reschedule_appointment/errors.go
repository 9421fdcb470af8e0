package reschedule_appointment

import (
	"errors"

	"github.com/m04kA/HMS-AppointmentService/internal/scheduling"
)

// RejectionError отказ валидатора
type RejectionError = scheduling.RejectionError

var (
	// ErrMissingField не заполнены дата или время нового слота
	ErrMissingField = scheduling.ErrMissingField

	// ErrSlotNotAvailable новый слот - перерыв, вне приёма или в прошлом
	ErrSlotNotAvailable = scheduling.ErrSlotNotAvailable

	// ErrSlotAlreadyBooked новый слот занят другим приёмом
	ErrSlotAlreadyBooked = scheduling.ErrSlotAlreadyBooked

	// ErrAppointmentNotFound возвращается, когда приём не найден
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrAccessDenied возвращается, когда пользователь не пациент и не врач этого приёма
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidStatus возвращается, когда перенести можно только ожидающий приём
	ErrInvalidStatus = errors.New("only pending appointments can be rescheduled")

	// ErrDoctorNotFound возвращается, когда врач не найден
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)

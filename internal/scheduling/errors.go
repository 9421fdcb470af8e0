package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSchedule возвращается, когда рабочие часы врача не заполнены или не разбираются.
	// Такое расписание даёт пустую таблицу слотов, а не ошибку запроса.
	ErrMalformedSchedule = errors.New("scheduling: malformed working hours")

	// ErrMissingField не заполнено обязательное поле запроса
	ErrMissingField = errors.New("scheduling: missing required field")

	// ErrSlotNotAvailable слот - перерыв, вне приёма или вне расписания
	ErrSlotNotAvailable = errors.New("scheduling: slot is not available")

	// ErrSlotAlreadyBooked слот занят неотменённым приёмом
	ErrSlotAlreadyBooked = errors.New("scheduling: slot already booked")
)

// RejectionError отказ валидатора в виде ошибки.
// errors.Is сопоставляет его с ErrMissingField, ErrSlotNotAvailable или ErrSlotAlreadyBooked.
type RejectionError struct {
	Reason Reason
	Detail string
}

// Error реализует error
func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("booking rejected: %s", e.Reason)
	}
	return fmt.Sprintf("booking rejected: %s (%s)", e.Reason, e.Detail)
}

// Is сопоставляет причину отказа с sentinel-ошибкой
func (e *RejectionError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *RejectionError) sentinel() error {
	switch e.Reason {
	case ReasonMissingField:
		return ErrMissingField
	case ReasonSlotNotAvailable:
		return ErrSlotNotAvailable
	case ReasonSlotAlreadyBooked:
		return ErrSlotAlreadyBooked
	default:
		return nil
	}
}

// Err возвращает nil для принятого решения, иначе *RejectionError
func (d Decision) Err() error {
	if d.Accepted {
		return nil
	}
	return &RejectionError{Reason: d.Reason, Detail: d.Detail}
}

// Conflict отказ, когда слот заняли между проверкой и записью
func Conflict(detail string) error {
	return &RejectionError{Reason: ReasonSlotAlreadyBooked, Detail: detail}
}

package scheduling

import (
	"strings"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// Reason причина отказа в бронировании
type Reason string

const (
	ReasonMissingField      Reason = "MissingField"
	ReasonSlotNotAvailable  Reason = "SlotNotAvailable"
	ReasonSlotAlreadyBooked Reason = "SlotAlreadyBooked"
)

// OutcomeAccepted метка успешного решения для метрик
const OutcomeAccepted = "accepted"

// Decision результат проверки запроса. Отказ - это значение, а не ошибка.
type Decision struct {
	Accepted bool
	Reason   Reason
	// Detail уточнение для логов (например, список пустых полей)
	Detail string
}

// Outcome метка решения: accepted или причина отказа
func (d Decision) Outcome() string {
	if d.Accepted {
		return OutcomeAccepted
	}
	return string(d.Reason)
}

func accept() Decision {
	return Decision{Accepted: true}
}

func reject(reason Reason, detail string) Decision {
	return Decision{Reason: reason, Detail: detail}
}

// Validator проверяет запрос на бронирование против таблицы слотов и занятых слотов.
// Порядок проверок: обязательные поля, статус слота, занятость.
type Validator struct{}

// NewValidator создает валидатор
func NewValidator() *Validator {
	return &Validator{}
}

// Validate возвращает решение по запросу.
// slot == nil означает, что время вне сгенерированной таблицы (или дата в прошлом).
func (v *Validator) Validate(req domain.BookingRequest, slot *domain.Slot, booked domain.BookedSlots) Decision {
	if missing := MissingFields(req); len(missing) > 0 {
		return reject(ReasonMissingField, strings.Join(missing, ","))
	}

	if slot == nil {
		return reject(ReasonSlotNotAvailable, "outside generated range")
	}
	if !slot.IsAvailable() {
		return reject(ReasonSlotNotAvailable, string(slot.Status))
	}

	if booked.Contains(req.Date, req.Time) {
		return reject(ReasonSlotAlreadyBooked, types.FormatDate(req.Date)+" "+req.Time.String())
	}

	return accept()
}

// MissingFields имена незаполненных обязательных полей
func MissingFields(req domain.BookingRequest) []string {
	missing := make([]string, 0)
	if strings.TrimSpace(req.DoctorID) == "" {
		missing = append(missing, "doctorId")
	}
	if strings.TrimSpace(req.PatientID) == "" {
		missing = append(missing, "patientId")
	}
	if req.Date.IsZero() {
		missing = append(missing, "date")
	}
	if req.Time.IsZero() {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(req.PatientIssue) == "" {
		missing = append(missing, "patientIssue")
	}
	if req.AppointmentType == "" {
		missing = append(missing, "appointmentType")
	}
	return missing
}

// FindSlot ищет слот (date, time) в недельной таблице
func FindSlot(table domain.WeekTable, date time.Time, t types.TimeOfDay) *domain.Slot {
	for i := range table.Days {
		if types.IsSameDay(table.Days[i].Date, date) {
			return FindSlotInDay(table.Days[i].Slots, t)
		}
	}
	return nil
}

// FindSlotInDay ищет слот по времени в списке одного дня
func FindSlotInDay(slots []domain.Slot, t types.TimeOfDay) *domain.Slot {
	for i := range slots {
		if slots[i].Time.Equal(t) {
			return &slots[i]
		}
	}
	return nil
}

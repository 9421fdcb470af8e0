package get_doctor_schedule

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// Request модель запроса недельного расписания врача
type Request struct {
	DoctorID  string    // ID врача
	WeekStart time.Time // Первый день недели; нулевое значение - текущая неделя
}

// Response модель ответа с таблицей слотов на неделю
type Response struct {
	DoctorID   string
	DoctorName string

	WeekStart     time.Time // Первый день показанной недели
	WeekEnd       time.Time // Последний день показанной недели
	PreviousWeek  time.Time // Начало предыдущей недели (не раньше сегодняшнего дня)
	NextWeek      time.Time // Начало следующей недели
	CanGoPrevious bool      // false, если неделя начинается сегодня
	IsEmpty       bool      // Ни в одном дне нет слотов

	SlotGranularityMinutes int
	Days                   []Day
}

// Day слоты одного дня
type Day struct {
	Date  time.Time
	Slots []Slot
}

// Slot модель слота в таблице
type Slot struct {
	Time     types.TimeOfDay // Время начала слота
	Status   string          // Available, Lunch Break или No Schedule
	Booked   bool            // Занят неотменённым приёмом
	Bookable bool            // Available и не занят
}

package get_doctor_schedule

import (
	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// buildDays накладывает занятые слоты на сгенерированную таблицу.
// Занятым помечается только слот со статусом Available: перерыв и время вне приёма остаются как есть.
func buildDays(table domain.WeekTable, booked domain.BookedSlots) []Day {
	days := make([]Day, len(table.Days))

	for i, day := range table.Days {
		slots := make([]Slot, len(day.Slots))
		for j, s := range day.Slots {
			isBooked := s.IsAvailable() && booked.Contains(day.Date, s.Time)
			slots[j] = Slot{
				Time:     s.Time,
				Status:   string(s.Status),
				Booked:   isBooked,
				Bookable: s.IsAvailable() && !isBooked,
			}
		}
		days[i] = Day{Date: day.Date, Slots: slots}
	}

	return days
}

package scheduling

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// WeekDays семь последовательных дат начиная с start
func WeekDays(start time.Time) []time.Time {
	first := types.DateOnly(start)
	days := make([]time.Time, domain.DaysInWeek)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

// WeekEnd последний день недели, начинающейся с start
func WeekEnd(start time.Time) time.Time {
	return types.DateOnly(start).AddDate(0, 0, domain.DaysInWeek-1)
}

// NormalizeAnchor не даёт неделе начинаться раньше сегодняшнего дня.
// Пустой anchor означает текущую неделю.
func NormalizeAnchor(anchor, today time.Time) time.Time {
	if anchor.IsZero() || types.IsDateBefore(anchor, today) {
		return types.DateOnly(today)
	}
	return types.DateOnly(anchor)
}

// NextWeek следующая неделя, без ограничений
func NextWeek(anchor time.Time) time.Time {
	return types.DateOnly(anchor).AddDate(0, 0, domain.DaysInWeek)
}

// PreviousWeek предыдущая неделя, но не раньше today
func PreviousWeek(anchor, today time.Time) time.Time {
	return NormalizeAnchor(types.DateOnly(anchor).AddDate(0, 0, -domain.DaysInWeek), today)
}

// CanGoPrevious false, как только начало недели достигло сегодняшнего дня
func CanGoPrevious(anchor, today time.Time) bool {
	return types.IsDateBefore(today, anchor)
}

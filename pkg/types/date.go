package types

import "time"

// DateFormat формат календарной даты на границе API
const DateFormat = "2006-01-02"

// DateOnly отбрасывает время и приводит дату к UTC-полуночи.
// Мультизонность не поддерживается: календарная дата берётся из часового пояса значения.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate разбирает дату "YYYY-MM-DD"
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// FormatDate форматирует дату как "YYYY-MM-DD"
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// IsSameDay проверяет, что две даты относятся к одному и тому же дню
func IsSameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// IsDateBefore проверяет, что календарная дата a раньше календарной даты b
func IsDateBefore(a, b time.Time) bool {
	return DateOnly(a).Before(DateOnly(b))
}

package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
	noonMinutes    = 12 * minutesPerHour
)

var (
	// ErrInvalidTimeFormat возвращается, когда строка не соответствует формату "H:MM AM/PM"
	ErrInvalidTimeFormat = errors.New("invalid time string format")

	// ErrInvalidWindowFormat возвращается, когда строка не соответствует формату "H:MM AM/PM - H:MM AM/PM"
	ErrInvalidWindowFormat = errors.New("invalid time window format")

	// ErrTimeOverflow возвращается, когда арифметика выходит за пределы суток
	ErrTimeOverflow = errors.New("time of day out of range")
)

// TimeOfDay время суток в минутах от полуночи.
// Строковое представление используется только на границе системы (JSON, БД, CLI).
type TimeOfDay struct {
	minutes int
	valid   bool
}

// NewTimeOfDay создает время суток из часов (0-23) и минут
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", ErrTimeOverflow, hour, minute)
	}
	return TimeOfDay{minutes: hour*minutesPerHour + minute, valid: true}, nil
}

// FromMinutes создает время суток из количества минут от полуночи
func FromMinutes(minutes int) (TimeOfDay, error) {
	if minutes < 0 || minutes >= minutesPerDay {
		return TimeOfDay{}, fmt.Errorf("%w: %d minutes", ErrTimeOverflow, minutes)
	}
	return TimeOfDay{minutes: minutes, valid: true}, nil
}

// MustTimeOfDay как ParseTimeOfDay, но паникует. Только для тестов и констант.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay разбирает строку вида "9:00 AM", "09:00 PM" или "12:30 AM".
//
// 12 AM -> 00:xx, 12 PM -> 12:xx, остальные PM добавляют 12 часов.
// Старые клиенты сохраняли время как "13:00 PM" (24-часовой час с суффиксом),
// такая запись тоже принимается.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	clock, period := fields[0], strings.ToUpper(fields[1])
	if period != "AM" && period != "PM" {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 2 || len(parts[1]) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	switch {
	case hour >= 1 && hour <= 11:
		if period == "PM" {
			hour += 12
		}
	case hour == 12:
		if period == "AM" {
			hour = 0
		}
	case hour >= 13 && hour <= 23 && period == "PM":
		// legacy 24h notation
	case hour == 0 && period == "AM":
	default:
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	return NewTimeOfDay(hour, minute)
}

// ParseWindow разбирает интервал "H:MM AM/PM - H:MM AM/PM"
func ParseWindow(s string) (start, end TimeOfDay, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return TimeOfDay{}, TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidWindowFormat, s)
	}

	start, err = ParseTimeOfDay(parts[0])
	if err != nil {
		return TimeOfDay{}, TimeOfDay{}, fmt.Errorf("%w: start: %v", ErrInvalidWindowFormat, err)
	}
	end, err = ParseTimeOfDay(parts[1])
	if err != nil {
		return TimeOfDay{}, TimeOfDay{}, fmt.Errorf("%w: end: %v", ErrInvalidWindowFormat, err)
	}
	return start, end, nil
}

// Minutes возвращает количество минут от полуночи
func (t TimeOfDay) Minutes() int {
	return t.minutes
}

// IsZero возвращает true для неинициализированного значения
func (t TimeOfDay) IsZero() bool {
	return !t.valid
}

// AddMinutes сдвигает время, не переходя через полночь
func (t TimeOfDay) AddMinutes(m int) (TimeOfDay, error) {
	return FromMinutes(t.minutes + m)
}

// IsBefore проверяет, что t строго раньше other
func (t TimeOfDay) IsBefore(other TimeOfDay) bool {
	return t.minutes < other.minutes
}

// IsAfter проверяет, что t строго позже other
func (t TimeOfDay) IsAfter(other TimeOfDay) bool {
	return t.minutes > other.minutes
}

// Equal сравнивает два значения
func (t TimeOfDay) Equal(other TimeOfDay) bool {
	return t.valid == other.valid && t.minutes == other.minutes
}

// String форматирует время как "HH:MM AM/PM".
// Период вычисляется из минут по модулю суток, а не по фиксированному порогу.
func (t TimeOfDay) String() string {
	if !t.valid {
		return ""
	}

	m := ((t.minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	period := "AM"
	if m >= noonMinutes {
		period = "PM"
	}

	hour := (m / minutesPerHour) % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%02d:%02d %s", hour, m%minutesPerHour, period)
}

// MarshalText реализует encoding.TextMarshaler
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler
func (t *TimeOfDay) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*t = TimeOfDay{}
		return nil
	}
	parsed, err := ParseTimeOfDay(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value реализует driver.Valuer. В БД время хранится как SMALLINT минут от полуночи.
func (t TimeOfDay) Value() (driver.Value, error) {
	if !t.valid {
		return nil, nil
	}
	return int64(t.minutes), nil
}

// Scan реализует sql.Scanner
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TimeOfDay{}
		return nil
	case int64:
		parsed, err := FromMinutes(int(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return fmt.Errorf("%w: scan %q", ErrInvalidTimeFormat, v)
		}
		return t.Scan(int64(n))
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidTimeFormat, src)
	}
}

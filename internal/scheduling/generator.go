// Package scheduling строит таблицу слотов врача и решает, можно ли забронировать слот.
// Пакет не обращается к БД и сети: все функции детерминированы.
package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// Options параметры генерации слотов
type Options struct {
	SlotGranularityMinutes int
	BreakDurationMinutes   int
}

// DefaultOptions шаг 60 минут, перерыв 60 минут
func DefaultOptions() Options {
	return Options{
		SlotGranularityMinutes: domain.DefaultSlotGranularityMinutes,
		BreakDurationMinutes:   domain.DefaultBreakDurationMinutes,
	}
}

// OptionsFromSettings переводит сохранённые настройки в параметры генератора
func OptionsFromSettings(s *domain.ScheduleSettings) Options {
	if s == nil {
		return DefaultOptions()
	}
	return Options{
		SlotGranularityMinutes: s.SlotGranularityMinutes,
		BreakDurationMinutes:   s.BreakDurationMinutes,
	}
}

// Schedule разобранные рабочие часы врача
type Schedule struct {
	WorkStart  types.TimeOfDay
	WorkEnd    types.TimeOfDay
	CheckupEnd types.TimeOfDay
	BreakStart types.TimeOfDay
}

// ParseWorkingHours разбирает строки профиля врача и проверяет их согласованность:
// начало смены раньше конца, конец приёма внутри смены, перерыв начинается внутри смены.
func ParseWorkingHours(wh domain.WorkingHours) (Schedule, error) {
	if strings.TrimSpace(wh.WorkingTime) == "" || strings.TrimSpace(wh.CheckupTime) == "" || strings.TrimSpace(wh.BreakTime) == "" {
		return Schedule{}, fmt.Errorf("%w: missing field", ErrMalformedSchedule)
	}

	workStart, workEnd, err := types.ParseWindow(wh.WorkingTime)
	if err != nil {
		return Schedule{}, fmt.Errorf("%w: working time: %v", ErrMalformedSchedule, err)
	}

	_, checkupEnd, err := types.ParseWindow(wh.CheckupTime)
	if err != nil {
		return Schedule{}, fmt.Errorf("%w: checkup time: %v", ErrMalformedSchedule, err)
	}

	breakStart, err := types.ParseTimeOfDay(wh.BreakTime)
	if err != nil {
		return Schedule{}, fmt.Errorf("%w: break time: %v", ErrMalformedSchedule, err)
	}

	if !workStart.IsBefore(workEnd) {
		return Schedule{}, fmt.Errorf("%w: working window %s - %s is empty", ErrMalformedSchedule, workStart, workEnd)
	}
	if checkupEnd.IsBefore(workStart) || checkupEnd.IsAfter(workEnd) {
		return Schedule{}, fmt.Errorf("%w: checkup end %s outside working window", ErrMalformedSchedule, checkupEnd)
	}
	if breakStart.IsBefore(workStart) || !breakStart.IsBefore(workEnd) {
		return Schedule{}, fmt.Errorf("%w: break start %s outside working window", ErrMalformedSchedule, breakStart)
	}

	return Schedule{
		WorkStart:  workStart,
		WorkEnd:    workEnd,
		CheckupEnd: checkupEnd,
		BreakStart: breakStart,
	}, nil
}

// Generator строит слоты с фиксированным шагом
type Generator struct {
	granularity   int
	breakDuration int
}

// NewGenerator создает генератор. Значения вне допустимых границ заменяются значениями по умолчанию.
func NewGenerator(opts Options) *Generator {
	g := &Generator{
		granularity:   opts.SlotGranularityMinutes,
		breakDuration: opts.BreakDurationMinutes,
	}
	if g.granularity < domain.MinSlotGranularityMinutes || g.granularity > domain.MaxSlotGranularityMinutes {
		g.granularity = domain.DefaultSlotGranularityMinutes
	}
	if g.breakDuration < domain.MinBreakDurationMinutes || g.breakDuration > domain.MaxBreakDurationMinutes {
		g.breakDuration = domain.DefaultBreakDurationMinutes
	}
	return g
}

// Granularity шаг слотов в минутах
func (g *Generator) Granularity() int {
	return g.granularity
}

// Classify определяет статус слота, начинающегося в t.
// Перерыв важнее окна приёма.
func (g *Generator) Classify(s Schedule, t types.TimeOfDay) domain.SlotStatus {
	breakStart := s.BreakStart.Minutes()
	breakEnd := breakStart + g.breakDuration

	switch m := t.Minutes(); {
	case m >= breakStart && m < breakEnd:
		return domain.SlotLunchBreak
	case t.IsBefore(s.CheckupEnd):
		return domain.SlotAvailable
	default:
		return domain.SlotNoSchedule
	}
}

// Times все начала слотов от начала смены (включительно) до конца (не включительно)
func (g *Generator) Times(s Schedule) []types.TimeOfDay {
	times := make([]types.TimeOfDay, 0, (s.WorkEnd.Minutes()-s.WorkStart.Minutes()+g.granularity-1)/g.granularity)
	for m := s.WorkStart.Minutes(); m < s.WorkEnd.Minutes(); m += g.granularity {
		t, err := types.FromMinutes(m)
		if err != nil {
			break
		}
		times = append(times, t)
	}
	return times
}

// GenerateDay строит слоты одного дня.
// Для некорректного расписания возвращает пустой список и ErrMalformedSchedule.
func (g *Generator) GenerateDay(wh domain.WorkingHours, date time.Time) ([]domain.Slot, error) {
	s, err := ParseWorkingHours(wh)
	if err != nil {
		return []domain.Slot{}, err
	}
	return g.slotsFor(s, types.DateOnly(date)), nil
}

// GenerateWeek строит таблицу на 7 дней начиная с weekStart.
// Для некорректного расписания все дни пустые, а ошибка сообщает причину для логирования.
func (g *Generator) GenerateWeek(wh domain.WorkingHours, weekStart time.Time) (domain.WeekTable, error) {
	days := WeekDays(weekStart)
	table := domain.WeekTable{
		WeekStart: days[0],
		Days:      make([]domain.DaySlots, len(days)),
	}

	s, err := ParseWorkingHours(wh)
	for i, day := range days {
		table.Days[i] = domain.DaySlots{Date: day, Slots: []domain.Slot{}}
		if err == nil {
			table.Days[i].Slots = g.slotsFor(s, day)
		}
	}

	return table, err
}

func (g *Generator) slotsFor(s Schedule, date time.Time) []domain.Slot {
	times := g.Times(s)
	slots := make([]domain.Slot, len(times))
	for i, t := range times {
		slots[i] = domain.Slot{
			Date:   date,
			Time:   t,
			Status: g.Classify(s, t),
		}
	}
	return slots
}

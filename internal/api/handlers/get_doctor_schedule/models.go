package get_doctor_schedule

import (
	getDoctorSchedule "github.com/m04kA/HMS-AppointmentService/internal/usecase/get_doctor_schedule"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// ScheduleResponse HTTP response model
type ScheduleResponse struct {
	DoctorID               string        `json:"doctorId"`
	DoctorName             string        `json:"doctorName"`
	WeekStart              string        `json:"weekStart"`
	WeekEnd                string        `json:"weekEnd"`
	PreviousWeek           string        `json:"previousWeek"`
	NextWeek               string        `json:"nextWeek"`
	CanGoPrevious          bool          `json:"canGoPrevious"`
	IsEmpty                bool          `json:"isEmpty"`
	SlotGranularityMinutes int           `json:"slotGranularityMinutes"`
	Days                   []DayResponse `json:"days"`
}

// DayResponse слоты одного дня
type DayResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

// SlotResponse слот таблицы
type SlotResponse struct {
	Time     string `json:"time"`
	Status   string `json:"status"`
	Booked   bool   `json:"booked"`
	Bookable bool   `json:"bookable"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getDoctorSchedule.Response) *ScheduleResponse {
	days := make([]DayResponse, 0, len(resp.Days))
	for _, day := range resp.Days {
		slots := make([]SlotResponse, 0, len(day.Slots))
		for _, slot := range day.Slots {
			slots = append(slots, SlotResponse{
				Time:     slot.Time.String(),
				Status:   slot.Status,
				Booked:   slot.Booked,
				Bookable: slot.Bookable,
			})
		}
		days = append(days, DayResponse{
			Date:  types.FormatDate(day.Date),
			Slots: slots,
		})
	}

	return &ScheduleResponse{
		DoctorID:               resp.DoctorID,
		DoctorName:             resp.DoctorName,
		WeekStart:              types.FormatDate(resp.WeekStart),
		WeekEnd:                types.FormatDate(resp.WeekEnd),
		PreviousWeek:           types.FormatDate(resp.PreviousWeek),
		NextWeek:               types.FormatDate(resp.NextWeek),
		CanGoPrevious:          resp.CanGoPrevious,
		IsEmpty:                resp.IsEmpty,
		SlotGranularityMinutes: resp.SlotGranularityMinutes,
		Days:                   days,
	}
}

package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

func validRequest(t string) domain.BookingRequest {
	return domain.BookingRequest{
		DoctorID:        "doc-1",
		PatientID:       "pat-1",
		Date:            date("2026-10-19"),
		Time:            types.MustTimeOfDay(t),
		AppointmentType: domain.AppointmentTypeOnsite,
		PatientIssue:    "headache",
		DoctorFees:      500,
	}
}

func weekTable(t *testing.T) domain.WeekTable {
	t.Helper()
	table, err := NewGenerator(DefaultOptions()).GenerateWeek(standardHours, date("2026-10-19"))
	require.NoError(t, err)
	return table
}

func TestValidator_Accepts(t *testing.T) {
	table := weekTable(t)
	req := validRequest("10:00 AM")

	decision := NewValidator().Validate(req, FindSlot(table, req.Date, req.Time), domain.BookedSlots{})

	assert.True(t, decision.Accepted)
	assert.Equal(t, OutcomeAccepted, decision.Outcome())
}

func TestValidator_MissingField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *domain.BookingRequest)
		field  string
	}{
		{name: "doctor", mutate: func(r *domain.BookingRequest) { r.DoctorID = "" }, field: "doctorId"},
		{name: "patient", mutate: func(r *domain.BookingRequest) { r.PatientID = "  " }, field: "patientId"},
		{name: "date", mutate: func(r *domain.BookingRequest) { r.Date = time.Time{} }, field: "date"},
		{name: "time", mutate: func(r *domain.BookingRequest) { r.Time = types.TimeOfDay{} }, field: "time"},
		{name: "issue", mutate: func(r *domain.BookingRequest) { r.PatientIssue = "" }, field: "patientIssue"},
		{name: "type", mutate: func(r *domain.BookingRequest) { r.AppointmentType = "" }, field: "appointmentType"},
	}

	table := weekTable(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest("10:00 AM")
			tt.mutate(&req)

			// даже занятый и недоступный слот не влияет: поля проверяются первыми
			booked := domain.BookedSlots{}
			booked.Add(date("2026-10-19"), types.MustTimeOfDay("10:00 AM"))

			decision := NewValidator().Validate(req, FindSlot(table, req.Date, req.Time), booked)
			assert.False(t, decision.Accepted)
			assert.Equal(t, ReasonMissingField, decision.Reason)
			assert.Contains(t, decision.Detail, tt.field)
		})
	}
}

func TestValidator_SlotNotAvailable(t *testing.T) {
	table := weekTable(t)

	for _, tm := range []string{"01:00 PM", "03:00 PM", "04:00 PM", "07:00 AM", "05:00 PM", "09:30 AM"} {
		t.Run(tm, func(t *testing.T) {
			req := validRequest(tm)
			// занятость проверяется после статуса слота
			booked := domain.BookedSlots{}
			booked.Add(req.Date, req.Time)

			decision := NewValidator().Validate(req, FindSlot(table, req.Date, req.Time), booked)
			assert.False(t, decision.Accepted)
			assert.Equal(t, ReasonSlotNotAvailable, decision.Reason)
		})
	}
}

func TestValidator_SlotOutsideWeek(t *testing.T) {
	table := weekTable(t)
	req := validRequest("10:00 AM")
	req.Date = date("2026-10-30")

	decision := NewValidator().Validate(req, FindSlot(table, req.Date, req.Time), nil)
	assert.Equal(t, ReasonSlotNotAvailable, decision.Reason)
}

func TestValidator_SlotAlreadyBooked(t *testing.T) {
	table := weekTable(t)
	req := validRequest("11:00 AM")

	booked := domain.BookedSlots{}
	booked.Add(req.Date, req.Time)

	decision := NewValidator().Validate(req, FindSlot(table, req.Date, req.Time), booked)
	assert.False(t, decision.Accepted)
	assert.Equal(t, ReasonSlotAlreadyBooked, decision.Reason)
	assert.Equal(t, string(ReasonSlotAlreadyBooked), decision.Outcome())

	// тот же час в другой день свободен
	other := validRequest("11:00 AM")
	other.Date = date("2026-10-20")
	assert.True(t, NewValidator().Validate(other, FindSlot(table, other.Date, other.Time), booked).Accepted)
}

func TestValidator_NeverAcceptsUnavailableSlots(t *testing.T) {
	table := weekTable(t)
	v := NewValidator()

	for _, day := range table.Days {
		for _, slot := range day.Slots {
			req := validRequest(slot.Time.String())
			req.Date = day.Date

			decision := v.Validate(req, FindSlot(table, req.Date, req.Time), domain.BookedSlots{})
			if slot.Status == domain.SlotAvailable {
				assert.True(t, decision.Accepted, "%s %s", day.Date, slot.Time)
			} else {
				assert.Equal(t, ReasonSlotNotAvailable, decision.Reason, "%s %s", day.Date, slot.Time)
			}
		}
	}
}

func TestFindSlotInDay(t *testing.T) {
	table := weekTable(t)

	slot := FindSlotInDay(table.Days[0].Slots, types.MustTimeOfDay("02:00 PM"))
	require.NotNil(t, slot)
	assert.Equal(t, domain.SlotAvailable, slot.Status)

	assert.Nil(t, FindSlotInDay(table.Days[0].Slots, types.MustTimeOfDay("02:30 PM")))
	assert.Nil(t, FindSlotInDay(nil, types.MustTimeOfDay("02:00 PM")))
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, Decision{Accepted: true}.Err())

	err := Decision{Reason: ReasonSlotAlreadyBooked, Detail: "2026-10-19 10:00 AM"}.Err()
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	assert.NotErrorIs(t, err, ErrSlotNotAvailable)

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, ReasonSlotAlreadyBooked, rejection.Reason)

	assert.ErrorIs(t, Decision{Reason: ReasonMissingField}.Err(), ErrMissingField)
	assert.ErrorIs(t, Decision{Reason: ReasonSlotNotAvailable}.Err(), ErrSlotNotAvailable)
	assert.ErrorIs(t, Conflict("race"), ErrSlotAlreadyBooked)
}

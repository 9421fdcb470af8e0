package reschedule_appointment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/infra/lock"
	appointmentRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	settingsRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/settings"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	"github.com/m04kA/HMS-AppointmentService/internal/scheduling"
	"github.com/m04kA/HMS-AppointmentService/pkg/logger"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

type fakeStore struct {
	mu           sync.Mutex
	appointments map[string]*domain.Appointment
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.appointments[id]
	if !ok {
		return nil, fmt.Errorf("%w: GetByID - id=%s", appointmentRepo.ErrAppointmentNotFound, id)
	}
	out := *a
	return &out, nil
}

func (f *fakeStore) GetBookedSlots(_ context.Context, doctorID string, from, to time.Time, excludeID *string) (domain.BookedSlots, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booked := make(domain.BookedSlots)
	for _, a := range f.appointments {
		if !a.OccupiesSlot() || a.DoctorID != doctorID || (excludeID != nil && a.ID == *excludeID) {
			continue
		}
		if a.AppointmentDate.Before(from) || a.AppointmentDate.After(to) {
			continue
		}
		booked.Add(a.AppointmentDate, a.AppointmentTime)
	}
	return booked, nil
}

func (f *fakeStore) Reschedule(_ context.Context, id string, date time.Time, t types.TimeOfDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	target := f.appointments[id]
	if target == nil || target.Status != domain.StatusPending {
		return fmt.Errorf("%w: Reschedule - no pending appointment", appointmentRepo.ErrStatusConflict)
	}
	for _, a := range f.appointments {
		if a.ID != id && a.OccupiesSlot() && a.DoctorID == target.DoctorID &&
			a.AppointmentDate.Equal(date) && a.AppointmentTime.Equal(t) {
			return fmt.Errorf("%w: Reschedule", appointmentRepo.ErrSlotTaken)
		}
	}
	target.AppointmentDate = date
	target.AppointmentTime = t
	return nil
}

type fakeSettings struct{}

func (fakeSettings) GetWithHierarchy(context.Context, string) (*domain.ScheduleSettings, error) {
	return nil, settingsRepo.ErrSettingsNotFound
}

type fakeDoctors struct{}

func (fakeDoctors) GetDoctor(_ context.Context, id string) (*doctorservice.Doctor, error) {
	if id != "doc-1" {
		return nil, doctorservice.ErrDoctorNotFound
	}
	return &doctorservice.Doctor{
		ID: "doc-1",
		WorkingHours: doctorservice.WorkingHours{
			WorkingTime: "09:00 AM - 05:00 PM",
			CheckupTime: "09:00 AM - 03:00 PM",
			BreakTime:   "01:00 PM",
		},
	}, nil
}

type passthroughTx struct{}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

func date(day int) time.Time {
	return time.Date(2026, 10, day, 0, 0, 0, 0, time.UTC)
}

func pending(id, patientID string, day int, tm string) *domain.Appointment {
	return &domain.Appointment{
		ID:              id,
		DoctorID:        "doc-1",
		PatientID:       patientID,
		AppointmentDate: date(day),
		AppointmentTime: types.MustTimeOfDay(tm),
		AppointmentType: domain.AppointmentTypeOnsite,
		PatientIssue:    "headache",
		Status:          domain.StatusPending,
	}
}

func newTestUseCase(t *testing.T, appointments ...*domain.Appointment) (*UseCase, *fakeStore) {
	t.Helper()

	store := &fakeStore{appointments: make(map[string]*domain.Appointment)}
	for _, a := range appointments {
		store.appointments[a.ID] = a
	}

	uc := NewUseCase(store, fakeSettings{}, fakeDoctors{}, passthroughTx{}, lock.NoopLocker{}, nil,
		Config{Defaults: scheduling.DefaultOptions()}, logger.NewNop())
	uc.timeProvider = fixedTime{now: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}

	return uc, store
}

func TestExecute_MovesAppointment(t *testing.T) {
	uc, store := newTestUseCase(t, pending("a1", "pat-1", 19, "10:00 AM"))

	resp, err := uc.Execute(context.Background(), &Request{
		UserID:        "pat-1",
		AppointmentID: "a1",
		Date:          date(20),
		Time:          types.MustTimeOfDay("11:00 AM"),
	})
	require.NoError(t, err)

	assert.Equal(t, date(20), resp.AppointmentDate)
	assert.Equal(t, "11:00 AM", resp.AppointmentTime.String())
	assert.Equal(t, date(19), resp.PreviousDate)
	assert.Equal(t, "10:00 AM", resp.PreviousTime.String())

	stored := store.appointments["a1"]
	assert.Equal(t, date(20), stored.AppointmentDate)
	assert.Equal(t, "11:00 AM", stored.AppointmentTime.String())
}

func TestExecute_SameSlotIsNotAConflictWithItself(t *testing.T) {
	uc, _ := newTestUseCase(t, pending("a1", "pat-1", 19, "10:00 AM"))

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        "doc-1",
		AppointmentID: "a1",
		Date:          date(19),
		Time:          types.MustTimeOfDay("10:00 AM"),
	})
	assert.NoError(t, err)
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "missing time",
			req:     Request{UserID: "pat-1", AppointmentID: "a1", Date: date(20)},
			wantErr: ErrMissingField,
		},
		{
			name:    "missing id",
			req:     Request{UserID: "pat-1", Date: date(20), Time: types.MustTimeOfDay("11:00 AM")},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "slot of another patient",
			req:     Request{UserID: "pat-1", AppointmentID: "a1", Date: date(20), Time: types.MustTimeOfDay("02:00 PM")},
			wantErr: ErrSlotAlreadyBooked,
		},
		{
			name:    "lunch break",
			req:     Request{UserID: "pat-1", AppointmentID: "a1", Date: date(20), Time: types.MustTimeOfDay("01:00 PM")},
			wantErr: ErrSlotNotAvailable,
		},
		{
			name:    "past date",
			req:     Request{UserID: "pat-1", AppointmentID: "a1", Date: date(15), Time: types.MustTimeOfDay("11:00 AM")},
			wantErr: ErrSlotNotAvailable,
		},
		{
			name:    "stranger",
			req:     Request{UserID: "pat-9", AppointmentID: "a1", Date: date(20), Time: types.MustTimeOfDay("11:00 AM")},
			wantErr: ErrAccessDenied,
		},
		{
			name:    "unknown appointment",
			req:     Request{UserID: "pat-1", AppointmentID: "nope", Date: date(20), Time: types.MustTimeOfDay("11:00 AM")},
			wantErr: ErrAppointmentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store := newTestUseCase(t,
				pending("a1", "pat-1", 19, "10:00 AM"),
				pending("a2", "pat-2", 20, "02:00 PM"),
			)

			_, err := uc.Execute(context.Background(), &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, date(19), store.appointments["a1"].AppointmentDate)
		})
	}
}

func TestExecute_OnlyPending(t *testing.T) {
	completed := pending("a1", "pat-1", 19, "10:00 AM")
	completed.Status = domain.StatusCompleted
	uc, _ := newTestUseCase(t, completed)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        "pat-1",
		AppointmentID: "a1",
		Date:          date(20),
		Time:          types.MustTimeOfDay("11:00 AM"),
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestExecute_CancelledAppointmentDoesNotBlock(t *testing.T) {
	cancelled := pending("a2", "pat-2", 20, "11:00 AM")
	cancelled.Status = domain.StatusCancelled
	uc, _ := newTestUseCase(t, pending("a1", "pat-1", 19, "10:00 AM"), cancelled)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        "pat-1",
		AppointmentID: "a1",
		Date:          date(20),
		Time:          types.MustTimeOfDay("11:00 AM"),
	})
	assert.NoError(t, err)
}

package create_appointment

import (
	"context"
	"errors"
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
	"github.com/m04kA/HMS-AppointmentService/pkg/ptr"
	"github.com/m04kA/HMS-AppointmentService/pkg/txmanager"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// fakeStore хранилище приёмов в памяти с тем же ограничением уникальности, что и индекс в БД
type fakeStore struct {
	mu           sync.Mutex
	appointments map[string]*domain.Appointment
	seq          int
	// hideBooked имитирует конкурента, вставившего запись после чтения занятых слотов
	hideBooked bool
	readErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{appointments: make(map[string]*domain.Appointment)}
}

func (f *fakeStore) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.appointments {
		if existing.OccupiesSlot() && existing.DoctorID == a.DoctorID &&
			existing.AppointmentDate.Equal(a.AppointmentDate) && existing.AppointmentTime.Equal(a.AppointmentTime) {
			return nil, fmt.Errorf("%w: Create - ux_appointments_active_slot", appointmentRepo.ErrSlotTaken)
		}
	}

	f.seq++
	stored := *a
	stored.ID = fmt.Sprintf("appt-%d", f.seq)
	stored.CreatedAt = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	stored.UpdatedAt = stored.CreatedAt
	f.appointments[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (f *fakeStore) GetBookedSlots(_ context.Context, doctorID string, from, to time.Time, excludeID *string) (domain.BookedSlots, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readErr != nil {
		return nil, f.readErr
	}

	booked := make(domain.BookedSlots)
	if f.hideBooked {
		return booked, nil
	}
	for _, a := range f.appointments {
		if !a.OccupiesSlot() || a.DoctorID != doctorID {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.AppointmentDate.Before(from) || a.AppointmentDate.After(to) {
			continue
		}
		booked.Add(a.AppointmentDate, a.AppointmentTime)
	}
	return booked, nil
}

func (f *fakeStore) cancel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appointments[id].Status = domain.StatusCancelled
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appointments)
}

type fakeSettings struct {
	settings *domain.ScheduleSettings
	err      error
}

func (f *fakeSettings) GetWithHierarchy(context.Context, string) (*domain.ScheduleSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.settings == nil {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	return f.settings, nil
}

type fakeDoctors struct {
	doctors map[string]*doctorservice.Doctor
	calls   int
}

func (f *fakeDoctors) GetDoctor(_ context.Context, id string) (*doctorservice.Doctor, error) {
	f.calls++
	d, ok := f.doctors[id]
	if !ok {
		return nil, doctorservice.ErrDoctorNotFound
	}
	return d, nil
}

type fakeTx struct {
	commitErr error
}

func (f *fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return f.commitErr
}

type fakeLocker struct {
	held map[string]bool
	err  error
}

func (f *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (lock.Release, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.held[key] {
		return nil, fmt.Errorf("lock: %w", lock.ErrLockHeld)
	}
	return func(context.Context) error { return nil }, nil
}

type spyRecorder struct {
	outcomes []string
}

func (s *spyRecorder) RecordBookingDecision(_, outcome string) {
	s.outcomes = append(s.outcomes, outcome)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type testEnv struct {
	uc       *UseCase
	store    *fakeStore
	settings *fakeSettings
	doctors  *fakeDoctors
	tx       *fakeTx
	locker   *fakeLocker
	recorder *spyRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:    newFakeStore(),
		settings: &fakeSettings{},
		doctors: &fakeDoctors{doctors: map[string]*doctorservice.Doctor{
			"doc-1": {
				ID:        "doc-1",
				FirstName: "Ann",
				LastName:  "Lee",
				Specialty: "Cardiology",
				WorkingHours: doctorservice.WorkingHours{
					WorkingTime: "09:00 AM - 05:00 PM",
					CheckupTime: "09:00 AM - 03:00 PM",
					BreakTime:   "01:00 PM",
				},
				OnlineConsultationRate: 1000,
			},
			"doc-broken": {
				ID:           "doc-broken",
				WorkingHours: doctorservice.WorkingHours{WorkingTime: "whenever"},
			},
		}},
		tx:       &fakeTx{},
		locker:   &fakeLocker{held: map[string]bool{}},
		recorder: &spyRecorder{},
	}

	env.uc = NewUseCase(env.store, env.settings, env.doctors, env.tx, env.locker, env.recorder,
		Config{Defaults: scheduling.DefaultOptions(), LockTTL: time.Second}, logger.NewNop())
	env.uc.timeProvider = fixedTime{now: time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)}

	return env
}

func validRequest(tm string) *Request {
	return &Request{
		DoctorID:        "doc-1",
		PatientID:       "pat-1",
		Date:            time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Time:            types.MustTimeOfDay(tm),
		AppointmentType: "Onsite",
		PatientIssue:    "chest pain",
		DoctorFees:      ptr.Ptr(800.0),
	}
}

func TestExecute_Success(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.uc.Execute(context.Background(), validRequest("10:00 AM"))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Pending", resp.Status)
	assert.Equal(t, 800.0, resp.DoctorFees)
	assert.Equal(t, "10:00 AM", resp.AppointmentTime.String())
	assert.Equal(t, "Ann Lee", resp.DoctorName)
	require.NotNil(t, resp.Specialty)
	assert.Equal(t, "Cardiology", *resp.Specialty)
	assert.Nil(t, resp.Hospital)
	assert.Equal(t, []string{scheduling.OutcomeAccepted}, env.recorder.outcomes)
}

func TestExecute_FeesDefaultToDoctorRate(t *testing.T) {
	env := newTestEnv(t)
	req := validRequest("10:00 AM")
	req.DoctorFees = nil

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, resp.DoctorFees)
}

func TestExecute_MissingField(t *testing.T) {
	env := newTestEnv(t)
	req := validRequest("10:00 AM")
	req.PatientIssue = ""

	_, err := env.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrMissingField)
	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "patientIssue", rejection.Detail)
	assert.Zero(t, env.doctors.calls)
	assert.Equal(t, []string{"MissingField"}, env.recorder.outcomes)
}

func TestExecute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "unknown type", mutate: func(r *Request) { r.AppointmentType = "Home" }},
		{name: "negative fees", mutate: func(r *Request) { r.DoctorFees = ptr.Ptr(-1.0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := validRequest("10:00 AM")
			tt.mutate(req)

			_, err := env.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_DoctorNotFound(t *testing.T) {
	env := newTestEnv(t)
	req := validRequest("10:00 AM")
	req.DoctorID = "nobody"

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestExecute_SlotNotAvailable(t *testing.T) {
	tests := []struct {
		name string
		req  func() *Request
	}{
		{name: "lunch break", req: func() *Request { return validRequest("01:00 PM") }},
		{name: "after checkup window", req: func() *Request { return validRequest("03:00 PM") }},
		{name: "off grid", req: func() *Request { return validRequest("10:30 AM") }},
		{name: "before shift", req: func() *Request { return validRequest("08:00 AM") }},
		{
			name: "past date",
			req: func() *Request {
				r := validRequest("10:00 AM")
				r.Date = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
				return r
			},
		},
		{
			name: "malformed schedule",
			req: func() *Request {
				r := validRequest("10:00 AM")
				r.DoctorID = "doc-broken"
				return r
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.uc.Execute(context.Background(), tt.req())
			assert.ErrorIs(t, err, ErrSlotNotAvailable)
			assert.Zero(t, env.store.count())
		})
	}
}

func TestExecute_TodayIsBookable(t *testing.T) {
	env := newTestEnv(t)
	req := validRequest("02:00 PM")
	req.Date = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	_, err := env.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_SecondIdenticalRequestIsRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.Execute(context.Background(), validRequest("11:00 AM"))
	require.NoError(t, err)

	other := validRequest("11:00 AM")
	other.PatientID = "pat-2"
	_, err = env.uc.Execute(context.Background(), other)

	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	assert.Equal(t, 1, env.store.count())
	assert.Equal(t, []string{scheduling.OutcomeAccepted, "SlotAlreadyBooked"}, env.recorder.outcomes)
}

func TestExecute_CancelFreesSlot(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.uc.Execute(context.Background(), validRequest("11:00 AM"))
	require.NoError(t, err)

	env.store.cancel(first.ID)

	second, err := env.uc.Execute(context.Background(), validRequest("11:00 AM"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestExecute_ConcurrentInsertBecomesSlotAlreadyBooked(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.Execute(context.Background(), validRequest("11:00 AM"))
	require.NoError(t, err)

	env.store.hideBooked = true
	_, err = env.uc.Execute(context.Background(), validRequest("11:00 AM"))

	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	assert.Equal(t, 1, env.store.count())
}

func TestExecute_SerializationFailureOnCommit(t *testing.T) {
	env := newTestEnv(t)
	env.tx.commitErr = fmt.Errorf("%w: could not serialize access", txmanager.ErrSerialization)

	_, err := env.uc.Execute(context.Background(), validRequest("11:00 AM"))
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
}

func TestExecute_SlotLockHeld(t *testing.T) {
	env := newTestEnv(t)
	env.locker.held[lock.SlotKey("doc-1", "2026-10-19", 11*60)] = true

	_, err := env.uc.Execute(context.Background(), validRequest("11:00 AM"))
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	assert.Zero(t, env.store.count())
}

func TestExecute_LockBackendDownStillBooks(t *testing.T) {
	env := newTestEnv(t)
	env.locker.err = errors.New("dial tcp: connection refused")

	_, err := env.uc.Execute(context.Background(), validRequest("11:00 AM"))
	assert.NoError(t, err)
}

func TestExecute_PersistenceFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.readErr = fmt.Errorf("%w: connection reset", appointmentRepo.ErrExecQuery)

	_, err := env.uc.Execute(context.Background(), validRequest("11:00 AM"))
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_UsesDoctorSettings(t *testing.T) {
	env := newTestEnv(t)
	env.settings.settings = &domain.ScheduleSettings{
		DoctorID:               ptr.Ptr("doc-1"),
		SlotGranularityMinutes: 30,
		BreakDurationMinutes:   30,
	}

	_, err := env.uc.Execute(context.Background(), validRequest("10:30 AM"))
	require.NoError(t, err)

	// перерыв 30 минут: 01:30 PM уже приёмное время
	_, err = env.uc.Execute(context.Background(), validRequest("01:30 PM"))
	require.NoError(t, err)

	_, err = env.uc.Execute(context.Background(), validRequest("01:00 PM"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_SettingsFailure(t *testing.T) {
	env := newTestEnv(t)
	env.settings.err = errors.New("settings.repository: failed to execute query")

	_, err := env.uc.Execute(context.Background(), validRequest("10:00 AM"))
	assert.ErrorIs(t, err, ErrInternal)
}

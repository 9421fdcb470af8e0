package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/HMS-AppointmentService/pkg/logger"
	"github.com/m04kA/HMS-AppointmentService/pkg/ptr"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

type memoryRepo struct {
	appointments map[string]*domain.Appointment
	lastFilter   domain.AppointmentsFilter
	listErr      error
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("%w: GetByID - id=%s", appointmentRepo.ErrAppointmentNotFound, id)
	}
	return a, nil
}

func (m *memoryRepo) List(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]*domain.Appointment, 0)
	for _, a := range m.appointments {
		if filter.PatientID != nil && a.PatientID != *filter.PatientID {
			continue
		}
		if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

func (m *memoryRepo) GetBookedSlots(_ context.Context, doctorID string, from, to time.Time, _ *string) (domain.BookedSlots, error) {
	booked := make(domain.BookedSlots)
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.OccupiesSlot() && !a.AppointmentDate.Before(from) && !a.AppointmentDate.After(to) {
			booked.Add(a.AppointmentDate, a.AppointmentTime)
		}
	}
	return booked, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id string, status domain.AppointmentStatus) error {
	a := m.appointments[id]
	if a.Status != domain.StatusPending {
		return fmt.Errorf("%w: UpdateStatus", appointmentRepo.ErrStatusConflict)
	}
	a.Status = status
	return nil
}

func (m *memoryRepo) Cancel(_ context.Context, id string, reason *string) error {
	a := m.appointments[id]
	if a.Status != domain.StatusPending {
		return fmt.Errorf("%w: Cancel", appointmentRepo.ErrStatusConflict)
	}
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	a.Status = domain.StatusCancelled
	a.CancellationReason = reason
	a.CancelledAt = &now
	return nil
}

func seed() *memoryRepo {
	mk := func(id, patient string, day int, tm string, status domain.AppointmentStatus) *domain.Appointment {
		return &domain.Appointment{
			ID:              id,
			DoctorID:        "doc-1",
			PatientID:       patient,
			AppointmentDate: time.Date(2026, 10, day, 0, 0, 0, 0, time.UTC),
			AppointmentTime: types.MustTimeOfDay(tm),
			AppointmentType: domain.AppointmentTypeOnline,
			PatientIssue:    "cough",
			Status:          status,
		}
	}
	return &memoryRepo{appointments: map[string]*domain.Appointment{
		"a1": mk("a1", "pat-1", 19, "11:00 AM", domain.StatusPending),
		"a2": mk("a2", "pat-1", 19, "09:00 AM", domain.StatusCompleted),
		"a3": mk("a3", "pat-2", 19, "10:00 AM", domain.StatusCancelled),
		"a4": mk("a4", "pat-2", 20, "02:00 PM", domain.StatusPending),
	}}
}

func TestGetByID_Access(t *testing.T) {
	svc := NewService(seed(), logger.NewNop())

	resp, err := svc.GetByID(context.Background(), "a1", "pat-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", resp.AppointmentDate)
	assert.Equal(t, "11:00 AM", resp.AppointmentTime)

	_, err = svc.GetByID(context.Background(), "a1", "doc-1")
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), "a1", "pat-2")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(context.Background(), "missing", "pat-1")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestListByPatient_Tabs(t *testing.T) {
	tests := []struct {
		tab      *string
		statuses []domain.AppointmentStatus
	}{
		{tab: nil, statuses: nil},
		{tab: ptr.Ptr("scheduled"), statuses: []domain.AppointmentStatus{domain.StatusPending, domain.StatusCompleted}},
		{tab: ptr.Ptr("pending"), statuses: []domain.AppointmentStatus{domain.StatusPending}},
		{tab: ptr.Ptr("previous"), statuses: []domain.AppointmentStatus{domain.StatusCompleted}},
		{tab: ptr.Ptr("cancelled"), statuses: []domain.AppointmentStatus{domain.StatusCancelled}},
	}

	for _, tt := range tests {
		name := "all"
		if tt.tab != nil {
			name = *tt.tab
		}
		t.Run(name, func(t *testing.T) {
			repo := seed()
			svc := NewService(repo, logger.NewNop())

			resp, err := svc.ListByPatient(context.Background(), &models.ListAppointmentsRequest{
				UserID:  "pat-1",
				OwnerID: "pat-1",
				Tab:     tt.tab,
			})
			require.NoError(t, err)

			assert.Len(t, resp.Appointments, 2)
			assert.Equal(t, tt.statuses, repo.lastFilter.Statuses)
			require.NotNil(t, repo.lastFilter.PatientID)
			assert.Equal(t, "pat-1", *repo.lastFilter.PatientID)
			assert.Nil(t, repo.lastFilter.DoctorID)
		})
	}
}

func TestList_Errors(t *testing.T) {
	svc := NewService(seed(), logger.NewNop())

	_, err := svc.ListByPatient(context.Background(), &models.ListAppointmentsRequest{UserID: "pat-2", OwnerID: "pat-1"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.ListByDoctor(context.Background(), &models.ListAppointmentsRequest{
		UserID: "doc-1", OwnerID: "doc-1", Tab: ptr.Ptr("upcoming"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	from := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	_, err = svc.ListByDoctor(context.Background(), &models.ListAppointmentsRequest{
		UserID: "doc-1", OwnerID: "doc-1", StartDate: &from, EndDate: &to,
	})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	failing := seed()
	failing.listErr = errors.New("connection reset")
	_, err = NewService(failing, logger.NewNop()).ListByDoctor(context.Background(),
		&models.ListAppointmentsRequest{UserID: "doc-1", OwnerID: "doc-1"})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestCancel(t *testing.T) {
	repo := seed()
	svc := NewService(repo, logger.NewNop())

	err := svc.Cancel(context.Background(), "a1", &models.CancelAppointmentRequest{
		UserID:             "pat-1",
		CancellationReason: ptr.Ptr("  feeling better  "),
	})
	require.NoError(t, err)

	cancelled := repo.appointments["a1"]
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "feeling better", *cancelled.CancellationReason)

	// повторная отмена запрещена
	err = svc.Cancel(context.Background(), "a1", &models.CancelAppointmentRequest{UserID: "pat-1"})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancel_Rejections(t *testing.T) {
	svc := NewService(seed(), logger.NewNop())

	err := svc.Cancel(context.Background(), "a2", &models.CancelAppointmentRequest{UserID: "pat-1"})
	assert.ErrorIs(t, err, ErrCannotCancel)

	err = svc.Cancel(context.Background(), "a1", &models.CancelAppointmentRequest{UserID: "pat-2"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	err = svc.Cancel(context.Background(), "a1", &models.CancelAppointmentRequest{
		UserID:             "pat-1",
		CancellationReason: ptr.Ptr(strings.Repeat("x", domain.MaxCancellationReasonLength+1)),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel_FreesSlot(t *testing.T) {
	repo := seed()
	svc := NewService(repo, logger.NewNop())
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	before, err := svc.GetBookedSlots(context.Background(), "doc-1", day, day)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00 AM", "11:00 AM"}, before.Slots["2026-10-19"])

	require.NoError(t, svc.Cancel(context.Background(), "a1", &models.CancelAppointmentRequest{UserID: "doc-1"}))

	after, err := svc.GetBookedSlots(context.Background(), "doc-1", day, day)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00 AM"}, after.Slots["2026-10-19"])
}

func TestComplete(t *testing.T) {
	repo := seed()
	svc := NewService(repo, logger.NewNop())

	assert.ErrorIs(t, svc.Complete(context.Background(), "a1", "pat-1"), ErrAccessDenied)
	require.NoError(t, svc.Complete(context.Background(), "a1", "doc-1"))
	assert.Equal(t, domain.StatusCompleted, repo.appointments["a1"].Status)

	assert.ErrorIs(t, svc.Complete(context.Background(), "a3", "doc-1"), ErrCannotComplete)
}

func TestGetBookedSlots_Range(t *testing.T) {
	svc := NewService(seed(), logger.NewNop())
	from := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	resp, err := svc.GetBookedSlots(context.Background(), "doc-1", from, from.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", resp.From)
	assert.Equal(t, "2026-10-25", resp.To)
	assert.Len(t, resp.Slots, 2)
	assert.Equal(t, []string{"02:00 PM"}, resp.Slots["2026-10-20"])

	_, err = svc.GetBookedSlots(context.Background(), "doc-1", from, from.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = svc.GetBookedSlots(context.Background(), "doc-1", from, from.AddDate(1, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = svc.GetBookedSlots(context.Background(), " ", from, from)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

package appointment

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/HMS-AppointmentService/pkg/ptr"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

func newRepoMock(t *testing.T) (*Repository, *dbmetrics.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := dbmetrics.Wrap(db, nil)
	return NewRepository(wrapped), wrapped, mock
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := types.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestRepositoryCreate(t *testing.T) {
	repo, _, mock := newRepoMock(t)
	now := time.Now()
	date := mustDate(t, "2026-10-19")

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments (id,doctor_id,patient_id,appointment_date,appointment_time,appointment_type,patient_issue,disease_name,doctor_fees,status,specialty,hospital) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12) RETURNING created_at, updated_at")).
		WithArgs(sqlmock.AnyArg(), "doc-1", "pat-1", date, int64(600), "Onsite", "headache", nil, 500.0, "Pending", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	created, err := repo.Create(context.Background(), &domain.Appointment{
		DoctorID:        "doc-1",
		PatientID:       "pat-1",
		AppointmentDate: date,
		AppointmentTime: types.MustTimeOfDay("10:00 AM"),
		AppointmentType: domain.AppointmentTypeOnsite,
		PatientIssue:    "headache",
		DoctorFees:      500,
		Status:          domain.StatusPending,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, now, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_UniqueViolation(t *testing.T) {
	repo, _, mock := newRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "ux_appointments_active_slot"})

	_, err := repo.Create(context.Background(), &domain.Appointment{
		ID:              "a-1",
		DoctorID:        "doc-1",
		PatientID:       "pat-1",
		AppointmentDate: mustDate(t, "2026-10-19"),
		AppointmentTime: types.MustTimeOfDay("10:00 AM"),
		AppointmentType: domain.AppointmentTypeOnline,
		PatientIssue:    "fever",
		Status:          domain.StatusPending,
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_SerializationFailure(t *testing.T) {
	repo, _, mock := newRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnError(&pq.Error{Code: "40001"})

	_, err := repo.Create(context.Background(), &domain.Appointment{ID: "a-1", Status: domain.StatusPending})
	assert.ErrorIs(t, err, ErrSerialization)
}

func appointmentRows() *sqlmock.Rows {
	return sqlmock.NewRows(appointmentColumns)
}

func TestRepositoryGetByID(t *testing.T) {
	repo, _, mock := newRepoMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, doctor_id, patient_id, appointment_date, appointment_time, appointment_type, patient_issue, disease_name, doctor_fees, status, specialty, hospital, cancellation_reason, cancelled_at, created_at, updated_at FROM appointments WHERE id = $1")).
		WithArgs("a-1").
		WillReturnRows(appointmentRows().AddRow(
			"a-1", "doc-1", "pat-1", mustDate(t, "2026-10-19"), int64(780), "Online", "cough", "flu", 300.0,
			"Pending", nil, nil, nil, nil, now, now,
		))

	a, err := repo.GetByID(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, "01:00 PM", a.AppointmentTime.String())
	assert.Equal(t, domain.AppointmentTypeOnline, a.AppointmentType)
	assert.Equal(t, domain.StatusPending, a.Status)
	require.NotNil(t, a.DiseaseName)
	assert.Equal(t, "flu", *a.DiseaseName)
	assert.Nil(t, a.CancelledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	repo, _, mock := newRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(appointmentRows())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestRepositoryList_PatientAndStatuses(t *testing.T) {
	repo, _, mock := newRepoMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE patient_id = $1 AND status IN ($2,$3) ORDER BY appointment_date DESC, appointment_time DESC")).
		WithArgs("pat-1", "Pending", "Completed").
		WillReturnRows(appointmentRows().
			AddRow("a-2", "doc-1", "pat-1", mustDate(t, "2026-10-20"), int64(540), "Onsite", "x", nil, 100.0, "Pending", nil, nil, nil, nil, now, now).
			AddRow("a-1", "doc-2", "pat-1", mustDate(t, "2026-10-19"), int64(600), "Online", "y", nil, 200.0, "Completed", "Cardiology", "City", nil, nil, now, now))

	list, err := repo.List(context.Background(), domain.AppointmentsFilter{
		PatientID: ptr.Ptr("pat-1"),
		Statuses:  domain.ActiveStatuses,
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a-2", list[0].ID)
	require.NotNil(t, list[1].Specialty)
	assert.Equal(t, "Cardiology", *list[1].Specialty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetBookedSlots(t *testing.T) {
	repo, _, mock := newRepoMock(t)
	from := mustDate(t, "2026-10-19")
	to := mustDate(t, "2026-10-25")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT appointment_date, appointment_time FROM appointments WHERE doctor_id = $1 AND appointment_date >= $2 AND appointment_date <= $3 AND status <> $4 ORDER BY appointment_date ASC, appointment_time ASC")).
		WithArgs("doc-1", from, to, "Cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"appointment_date", "appointment_time"}).
			AddRow(from, int64(540)).
			AddRow(from, int64(600)).
			AddRow(mustDate(t, "2026-10-21"), int64(540)))

	booked, err := repo.GetBookedSlots(context.Background(), "doc-1", from, to, nil)
	require.NoError(t, err)

	assert.True(t, booked.Contains(from, types.MustTimeOfDay("09:00 AM")))
	assert.True(t, booked.Contains(from, types.MustTimeOfDay("10:00 AM")))
	assert.False(t, booked.Contains(from, types.MustTimeOfDay("11:00 AM")))
	assert.True(t, booked.Contains(mustDate(t, "2026-10-21"), types.MustTimeOfDay("09:00 AM")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetBookedSlots_InTransactionLocksRows(t *testing.T) {
	repo, wrapped, mock := newRepoMock(t)
	day := mustDate(t, "2026-10-19")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("AND status <> $4 AND id <> $5 ORDER BY appointment_date ASC, appointment_time ASC FOR UPDATE")).
		WithArgs("doc-1", day, day, "Cancelled", "a-1").
		WillReturnRows(sqlmock.NewRows([]string{"appointment_date", "appointment_time"}))
	mock.ExpectRollback()

	tx, err := wrapped.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), tx)

	booked, err := repo.GetBookedSlots(ctx, "doc-1", day, day, ptr.Ptr("a-1"))
	require.NoError(t, err)
	assert.Empty(t, booked)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCancel(t *testing.T) {
	repo, _, mock := newRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = $1, cancellation_reason = $2, cancelled_at = NOW(), updated_at = NOW() WHERE id = $3 AND status = $4")).
		WithArgs("Cancelled", "changed plans", "a-1", "Pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Cancel(context.Background(), "a-1", ptr.Ptr("changed plans")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCancel_NotPending(t *testing.T) {
	repo, _, mock := newRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Cancel(context.Background(), "a-1", nil)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	repo, _, mock := newRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3")).
		WithArgs("Completed", "a-1", "Pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "a-1", domain.StatusCompleted))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryReschedule_SlotTaken(t *testing.T) {
	repo, _, mock := newRepoMock(t)
	day := mustDate(t, "2026-10-20")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET appointment_date = $1, appointment_time = $2, updated_at = NOW() WHERE id = $3 AND status = $4")).
		WithArgs(day, int64(660), "a-1", "Pending").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Reschedule(context.Background(), "a-1", day, types.MustTimeOfDay("11:00 AM"))
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/HMS-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

const (
	tableAppointments = "appointments"

	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
)

var appointmentColumns = []string{
	"id",
	"doctor_id",
	"patient_id",
	"appointment_date",
	"appointment_time",
	"appointment_type",
	"patient_issue",
	"disease_name",
	"doctor_fees",
	"status",
	"specialty",
	"hospital",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий приёмов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория приёмов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет приём. Если ID пустой, генерирует UUID.
// Занятый слот (уникальный индекс по неотменённым приёмам) возвращается как ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert(tableAppointments).
		Columns(
			"id",
			"doctor_id",
			"patient_id",
			"appointment_date",
			"appointment_time",
			"appointment_type",
			"patient_issue",
			"disease_name",
			"doctor_fees",
			"status",
			"specialty",
			"hospital",
		).
		Values(
			a.ID,
			a.DoctorID,
			a.PatientID,
			types.DateOnly(a.AppointmentDate),
			a.AppointmentTime,
			a.AppointmentType,
			a.PatientIssue,
			a.DiseaseName,
			a.DoctorFees,
			a.Status,
			a.Specialty,
			a.Hospital,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, mapWriteError("Create", err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// GetByID получает приём по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From(tableAppointments).
		Where(squirrel.Eq{"id": id})

	// Внутри транзакции блокируем строку, чтобы статус не изменился до обновления
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return a, nil
}

// List возвращает приёмы по фильтру, новые сначала
func (r *Repository) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From(tableAppointments).
		OrderBy("appointment_date DESC", "appointment_time DESC")

	if filter.DoctorID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"doctor_id": *filter.DoctorID})
	}
	if filter.PatientID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"patient_id": *filter.PatientID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_date": types.DateOnly(*filter.StartDate)})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"appointment_date": types.DateOnly(*filter.EndDate)})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statuses})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

// GetBookedSlots возвращает занятые слоты врача за период [from, to].
// Отменённые приёмы слот не занимают. excludeID исключает приём, который переносится.
//
// Внутри транзакции строки блокируются (FOR UPDATE), чтобы проверка и вставка
// видели одно и то же состояние.
func (r *Repository) GetBookedSlots(ctx context.Context, doctorID string, from, to time.Time, excludeID *string) (domain.BookedSlots, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("appointment_date", "appointment_time").
		From(tableAppointments).
		Where(squirrel.Eq{"doctor_id": doctorID}).
		Where(squirrel.GtOrEq{"appointment_date": types.DateOnly(from)}).
		Where(squirrel.LtOrEq{"appointment_date": types.DateOnly(to)}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		OrderBy("appointment_date ASC", "appointment_time ASC")

	if excludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeID})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookedSlots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapWriteError("GetBookedSlots", err)
	}
	defer rows.Close()

	booked := make(domain.BookedSlots)
	for rows.Next() {
		var (
			date time.Time
			tod  types.TimeOfDay
		)
		if err := rows.Scan(&date, &tod); err != nil {
			return nil, fmt.Errorf("%w: GetBookedSlots - scan row: %v", ErrScanRow, err)
		}
		booked.Add(date, tod)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBookedSlots - rows error: %v", ErrScanRow, err)
	}

	return booked, nil
}

// Cancel переводит ожидающий приём в Cancelled и освобождает слот
func (r *Repository) Cancel(ctx context.Context, id string, reason *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableAppointments).
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": string(domain.StatusPending)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execSingle(ctx, executor, "Cancel", query, args)
}

// UpdateStatus меняет статус ожидающего приёма (например, Pending -> Completed)
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableAppointments).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": string(domain.StatusPending)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execSingle(ctx, executor, "UpdateStatus", query, args)
}

// Reschedule переносит ожидающий приём на новые дату и время.
// Если новый слот занят, уникальный индекс отклоняет запись (ErrSlotTaken).
func (r *Repository) Reschedule(ctx context.Context, id string, date time.Time, t types.TimeOfDay) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableAppointments).
		Set("appointment_date", types.DateOnly(date)).
		Set("appointment_time", t).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": string(domain.StatusPending)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	return r.execSingle(ctx, executor, "Reschedule", query, args)
}

// execSingle выполняет UPDATE, который должен затронуть ровно одну строку.
// Ноль строк: приёма нет или он уже не в статусе Pending.
func (r *Repository) execSingle(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s - no pending appointment", ErrStatusConflict, op)
	}

	return nil
}

// mapWriteError переводит коды PostgreSQL в ошибки репозитория
func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s - %s", ErrSlotTaken, op, pqErr.Constraint)
		case pqSerializationFailure:
			return fmt.Errorf("%w: %s - %v", ErrSerialization, op, err)
		}
	}
	return fmt.Errorf("%w: %s - execute: %v", ErrExecQuery, op, err)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.AppointmentDate,
		&a.AppointmentTime,
		&a.AppointmentType,
		&a.PatientIssue,
		&a.DiseaseName,
		&a.DoctorFees,
		&a.Status,
		&a.Specialty,
		&a.Hospital,
		&a.CancellationReason,
		&a.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.AppointmentDate = types.DateOnly(a.AppointmentDate)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

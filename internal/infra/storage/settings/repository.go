package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/HMS-AppointmentService/pkg/psqlbuilder"
)

const tableSettings = "doctor_schedule_settings"

var settingsColumns = []string{
	"id",
	"doctor_id",
	"slot_granularity_minutes",
	"break_duration_minutes",
	"created_at",
	"updated_at",
}

// Repository репозиторий настроек генерации слотов
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает настройки врача (или глобальные, если DoctorID == nil)
func (r *Repository) Create(ctx context.Context, s *domain.ScheduleSettings) (*domain.ScheduleSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableSettings).
		Columns("doctor_id", "slot_granularity_minutes", "break_duration_minutes").
		Values(s.DoctorID, s.SlotGranularityMinutes, s.BreakDurationMinutes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return s, nil
}

// GetByDoctor получает настройки ровно для указанного уровня:
// doctorID != nil - настройки врача, doctorID == nil - глобальные настройки клиники
func (r *Repository) GetByDoctor(ctx context.Context, doctorID *string) (*domain.ScheduleSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(settingsColumns...).From(tableSettings)
	if doctorID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"doctor_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"doctor_id": *doctorID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDoctor - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.ScheduleSettings
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.DoctorID,
		&s.SlotGranularityMinutes,
		&s.BreakDurationMinutes,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDoctor - scan settings: %v", ErrScanRow, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// GetWithHierarchy получает действующие настройки врача.
// Приоритет: настройки врача > глобальные настройки клиники.
// Если нет ни тех ни других, возвращает ErrSettingsNotFound.
func (r *Repository) GetWithHierarchy(ctx context.Context, doctorID string) (*domain.ScheduleSettings, error) {
	s, err := r.GetByDoctor(ctx, &doctorID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrSettingsNotFound) {
		return nil, err
	}

	return r.GetByDoctor(ctx, nil)
}

// Update обновляет значения настроек по ID
func (r *Repository) Update(ctx context.Context, s *domain.ScheduleSettings) (*domain.ScheduleSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableSettings).
		Set("slot_granularity_minutes", s.SlotGranularityMinutes).
		Set("break_duration_minutes", s.BreakDurationMinutes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	s.UpdatedAt = updatedAt.Time

	return s, nil
}

package settings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-FieldService/internal/domain"
	"github.com/m04kA/SMC-FieldService/pkg/dbmetrics"
	"github.com/m04kA/SMC-FieldService/pkg/psqlbuilder"
)

const tableName = "integration_settings"

// Repository репозиторий настроек бронирования и интеграций тенанта
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CalendarConnection данные подключения внешнего календаря
type CalendarConnection struct {
	Tokens     []byte
	Email      string
	CalendarID string
}

// GetIntegrationSettings получает настройки тенанта.
// Если строки нет, возвращает ErrSettingsNotFound
func (r *Repository) GetIntegrationSettings(ctx context.Context, tenantID uuid.UUID) (*domain.IntegrationSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"tenant_id",
		"lead_time_minutes",
		"buffer_minutes",
		"travel_minutes",
		"default_duration_hours",
		"slot_interval_minutes",
		"working_days",
		"working_hours",
		"google_calendar_status",
		"google_calendar_enabled",
		"google_calendar_id",
		"google_calendar_email",
		"updated_at",
	).
		From(tableName).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetIntegrationSettings - build select query: %v", ErrBuildQuery, err)
	}

	var (
		s               domain.IntegrationSettings
		leadTime        sql.NullInt32
		buffer          sql.NullInt32
		travel          sql.NullInt32
		defaultDuration decimal.NullDecimal
		slotInterval    sql.NullInt32
		workingDays     []byte
		workingHours    []byte
		calendarStatus  sql.NullString
		calendarEnabled sql.NullBool
		calendarID      sql.NullString
		calendarEmail   sql.NullString
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.TenantID,
		&leadTime,
		&buffer,
		&travel,
		&defaultDuration,
		&slotInterval,
		&workingDays,
		&workingHours,
		&calendarStatus,
		&calendarEnabled,
		&calendarID,
		&calendarEmail,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetIntegrationSettings - scan settings: %v", ErrScanRow, err)
	}

	s.LeadTimeMinutes = nullInt(leadTime)
	s.BufferMinutes = nullInt(buffer)
	s.TravelMinutes = nullInt(travel)
	s.SlotIntervalMinutes = nullInt(slotInterval)
	if defaultDuration.Valid {
		s.DefaultDurationHours = &defaultDuration.Decimal
	}
	s.WorkingDays = workingDays
	s.WorkingHours = workingHours
	s.CalendarStatus = domain.CalendarStatusNotConnected
	if calendarStatus.Valid && calendarStatus.String != "" {
		s.CalendarStatus = domain.CalendarStatus(calendarStatus.String)
	}
	if calendarEnabled.Valid {
		enabled := calendarEnabled.Bool
		s.CalendarEnabled = &enabled
	}
	s.CalendarID = calendarID.String
	s.CalendarEmail = calendarEmail.String

	return &s, nil
}

// GetCalendarTokens возвращает сохранённые OAuth токены календаря
func (r *Repository) GetCalendarTokens(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("google_calendar_tokens").
		From(tableName).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetCalendarTokens - build select query: %v", ErrBuildQuery, err)
	}

	var tokens []byte
	err = executor.QueryRowContext(ctx, query, args...).Scan(&tokens)
	if err == sql.ErrNoRows {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetCalendarTokens - scan tokens: %v", ErrScanRow, err)
	}
	if len(tokens) == 0 {
		return nil, ErrSettingsNotFound
	}

	return tokens, nil
}

// SaveCalendarConnection сохраняет токены и помечает календарь подключённым (upsert)
func (r *Repository) SaveCalendarConnection(ctx context.Context, tenantID uuid.UUID, conn CalendarConnection) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildSaveCalendarConnectionQuery(tenantID, conn)
	if err != nil {
		return fmt.Errorf("%w: SaveCalendarConnection - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SaveCalendarConnection - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}

func buildSaveCalendarConnectionQuery(tenantID uuid.UUID, conn CalendarConnection) (string, []interface{}, error) {
	calendarID := conn.CalendarID
	if calendarID == "" {
		calendarID = domain.PrimaryCalendarID
	}

	return psqlbuilder.Insert(tableName).
		Columns(
			"tenant_id",
			"google_calendar_status",
			"google_calendar_tokens",
			"google_calendar_email",
			"google_calendar_id",
		).
		Values(
			tenantID,
			string(domain.CalendarStatusConnected),
			conn.Tokens,
			conn.Email,
			calendarID,
		).
		Suffix("ON CONFLICT (tenant_id) DO UPDATE SET " +
			"google_calendar_status = EXCLUDED.google_calendar_status, " +
			"google_calendar_tokens = EXCLUDED.google_calendar_tokens, " +
			"google_calendar_email = EXCLUDED.google_calendar_email, " +
			"google_calendar_id = EXCLUDED.google_calendar_id, " +
			"updated_at = NOW()").
		ToSql()
}

// SetCalendarStatus обновляет статус интеграции календаря (например, error после отказа токена)
func (r *Repository) SetCalendarStatus(ctx context.Context, tenantID uuid.UUID, status domain.CalendarStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("google_calendar_status", string(status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetCalendarStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetCalendarStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetCalendarStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrSettingsNotFound
	}

	return nil
}

func nullInt(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}

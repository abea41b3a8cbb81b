package ticket

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-FieldService/internal/domain"
	"github.com/m04kA/SMC-FieldService/internal/infra/statusmap"
	"github.com/m04kA/SMC-FieldService/pkg/dbmetrics"
	"github.com/m04kA/SMC-FieldService/pkg/psqlbuilder"
)

const tableName = "tickets"

var ticketColumns = []string{
	"id",
	"tenant_id",
	"client_id",
	"service_id",
	"technician_id",
	"status",
	"scheduled_date",
	"duration_hours",
	"buffer_minutes",
	"travel_minutes",
	"started_at",
	"stopped_at",
	"completed_at",
	"cancelled_at",
	"cancellation_reason",
	"ticket_value",
	"distance_total",
	"distance_rate",
	"extra_expenses",
	"expense_details",
	"extra_hours",
	"additional_hour_rate",
	"total_amount",
	"elapsed_seconds",
	"payment_date",
	"due_date",
	"calculations_enabled",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с заявками
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заявок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListBookingsInRange возвращает неотменённые заявки тенанта, начинающиеся в [start, end).
// technicianID сужает выборку до одного техника.
func (r *Repository) ListBookingsInRange(
	ctx context.Context,
	tenantID uuid.UUID,
	start, end time.Time,
	technicianID *uuid.UUID,
) ([]domain.ExistingBooking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildListBookingsQuery(tenantID, start, end, technicianID)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBookingsInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBookingsInRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]domain.ExistingBooking, 0)
	for rows.Next() {
		var (
			t            domain.Ticket
			status       string
			buffer       sql.NullInt32
			travel       sql.NullInt32
			technicianID uuid.NullUUID
		)
		if err := rows.Scan(&t.ID, &t.ScheduledStart, &t.DurationHours, &buffer, &travel, &status, &technicianID); err != nil {
			return nil, fmt.Errorf("%w: ListBookingsInRange - scan booking: %v", ErrScanRow, err)
		}

		t.Status = scanStatus(status)
		t.BufferMinutes = nullIntPtr(buffer)
		t.TravelMinutes = nullIntPtr(travel)
		if technicianID.Valid {
			id := technicianID.UUID
			t.TechnicianID = &id
		}
		bookings = append(bookings, t.AsBooking())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBookingsInRange - iterate rows: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func buildListBookingsQuery(tenantID uuid.UUID, start, end time.Time, technicianID *uuid.UUID) (string, []interface{}, error) {
	builder := psqlbuilder.Select(
		"id",
		"scheduled_date",
		"duration_hours",
		"buffer_minutes",
		"travel_minutes",
		"status",
		"technician_id",
	).
		From(tableName).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.GtOrEq{"scheduled_date": start}).
		Where(squirrel.Lt{"scheduled_date": end}).
		Where("NOT (status = ANY(?))", pq.Array(statusmap.Spellings(domain.TicketStatusCancelled))).
		OrderBy("scheduled_date ASC")

	if technicianID != nil {
		builder = builder.Where(squirrel.Eq{"technician_id": *technicianID})
	}

	return builder.ToSql()
}

// GetByID получает заявку по ID.
// Внутри транзакции строка блокируется (FOR UPDATE) до её завершения.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildGetByIDQuery(id, dbmetrics.IsInTransaction(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	t, err := scanTicket(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan ticket: %v", ErrScanRow, err)
	}

	return t, nil
}

func buildGetByIDQuery(id uuid.UUID, forUpdate bool) (string, []interface{}, error) {
	builder := psqlbuilder.Select(ticketColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	return builder.ToSql()
}

// UpdateLifecycle сохраняет статус, отметки времени и финансовые поля заявки
func (r *Repository) UpdateLifecycle(ctx context.Context, t *domain.Ticket) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildUpdateLifecycleQuery(t)
	if err != nil {
		return fmt.Errorf("%w: UpdateLifecycle - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateLifecycle - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateLifecycle - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTicketNotFound
	}

	return nil
}

func buildUpdateLifecycleQuery(t *domain.Ticket) (string, []interface{}, error) {
	return psqlbuilder.Update(tableName).
		Set("status", statusmap.ToStorage(t.Status)).
		Set("started_at", t.StartedAt).
		Set("stopped_at", t.StoppedAt).
		Set("completed_at", t.CompletedAt).
		Set("cancelled_at", t.CancelledAt).
		Set("cancellation_reason", t.CancellationReason).
		Set("distance_total", t.DistanceTotal).
		Set("distance_rate", t.DistanceRate).
		Set("extra_expenses", t.ExtraExpenses).
		Set("expense_details", t.ExpenseDetails).
		Set("extra_hours", t.ExtraHours).
		Set("additional_hour_rate", t.AdditionalHourRate).
		Set("total_amount", nullDecimal(t.TotalAmount)).
		Set("elapsed_seconds", t.ElapsedSeconds).
		Set("payment_date", t.PaymentDate).
		Set("due_date", t.DueDate).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": t.ID}).
		ToSql()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		t            domain.Ticket
		clientID     uuid.NullUUID
		serviceID    uuid.NullUUID
		technicianID uuid.NullUUID
		status       string
		buffer       sql.NullInt32
		travel       sql.NullInt32
		startedAt    sql.NullTime
		stoppedAt    sql.NullTime
		completedAt  sql.NullTime
		cancelledAt  sql.NullTime
		reason       sql.NullString
		details      sql.NullString
		totalAmount  decimal.NullDecimal
		elapsed      sql.NullInt64
		paymentDate  sql.NullTime
		dueDate      sql.NullTime
	)

	err := row.Scan(
		&t.ID,
		&t.TenantID,
		&clientID,
		&serviceID,
		&technicianID,
		&status,
		&t.ScheduledStart,
		&t.DurationHours,
		&buffer,
		&travel,
		&startedAt,
		&stoppedAt,
		&completedAt,
		&cancelledAt,
		&reason,
		&t.TicketValue,
		&t.DistanceTotal,
		&t.DistanceRate,
		&t.ExtraExpenses,
		&details,
		&t.ExtraHours,
		&t.AdditionalHourRate,
		&totalAmount,
		&elapsed,
		&paymentDate,
		&dueDate,
		&t.CalculationsEnabled,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = scanStatus(status)
	t.ClientID = nullUUIDPtr(clientID)
	t.ServiceID = nullUUIDPtr(serviceID)
	t.TechnicianID = nullUUIDPtr(technicianID)
	t.BufferMinutes = nullIntPtr(buffer)
	t.TravelMinutes = nullIntPtr(travel)
	t.StartedAt = nullTimePtr(startedAt)
	t.StoppedAt = nullTimePtr(stoppedAt)
	t.CompletedAt = nullTimePtr(completedAt)
	t.CancelledAt = nullTimePtr(cancelledAt)
	t.PaymentDate = nullTimePtr(paymentDate)
	t.DueDate = nullTimePtr(dueDate)
	if reason.Valid {
		t.CancellationReason = &reason.String
	}
	if details.Valid {
		t.ExpenseDetails = &details.String
	}
	if totalAmount.Valid {
		t.TotalAmount = &totalAmount.Decimal
	}
	if elapsed.Valid {
		t.ElapsedSeconds = &elapsed.Int64
	}

	return &t, nil
}

// scanStatus неизвестные написания считаем PENDING, чтобы такие заявки продолжали занимать слот
func scanStatus(raw string) domain.TicketStatus {
	if status, ok := statusmap.ToDomain(raw); ok {
		return status
	}
	return domain.TicketStatusPending
}

func nullIntPtr(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}

func nullUUIDPtr(v uuid.NullUUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := v.UUID
	return &id
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

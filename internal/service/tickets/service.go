package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-FieldService/internal/domain"
	ticketRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/ticket"
	"github.com/m04kA/SMC-FieldService/internal/integrations/events"
	"github.com/m04kA/SMC-FieldService/internal/service/finance"
	"github.com/m04kA/SMC-FieldService/internal/service/tickets/models"
	"github.com/m04kA/SMC-FieldService/pkg/txmanager"
)

// Результаты переходов для метрик
const (
	resultOK       = "ok"
	resultNoop     = "noop"
	resultRejected = "rejected"
	resultError    = "error"
)

// Service сервис жизненного цикла заявок
type Service struct {
	ticketRepo   TicketRepository
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      MetricsRecorder
	loc          *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса заявок
func NewService(
	ticketRepo TicketRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics MetricsRecorder,
	loc *time.Location,
	logger Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		ticketRepo:   ticketRepo,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
		loc:          loc,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает заявку тенанта по ID
func (s *Service) GetByID(ctx context.Context, tenantID, ticketID uuid.UUID) (*models.TicketResponse, error) {
	s.logger.Info("GetByID: fetching ticket id=%s for tenant=%s", ticketID, tenantID)

	ticket, err := s.loadTicket(ctx, tenantID, ticketID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainTicket(ticket), nil
}

// Start переводит заявку в IN_EXECUTION.
// Повторный вызов для уже начатой заявки возвращает её без изменений.
func (s *Service) Start(ctx context.Context, tenantID, ticketID uuid.UUID) (*models.TicketResponse, error) {
	s.logger.Info("Start: starting ticket id=%s for tenant=%s", ticketID, tenantID)

	var (
		ticket  *domain.Ticket
		changed bool
	)

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		// 1. Загружаем заявку с блокировкой строки
		var err error
		ticket, err = s.loadTicket(ctx, tenantID, ticketID)
		if err != nil {
			return err
		}

		// 2. Применяем переход
		changed, err = ticket.Start(s.timeProvider.Now())
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		// 3. Сохраняем
		if err := s.ticketRepo.UpdateLifecycle(ctx, ticket); err != nil {
			s.logger.Error("Start: failed to update ticket id=%s: %v", ticketID, err)
			return fmt.Errorf("%w: Start - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		err = wrapTxError(err)
		s.recordFailure(domain.ActionStart, ticketID, err)
		return nil, err
	}

	if !changed {
		s.logger.Info("Start: ticket id=%s already in execution since %s", ticketID, ticket.StartedAt.Format(time.RFC3339))
		s.metrics.IncTicketTransition(string(domain.ActionStart), resultNoop)
		return models.FromDomainTicket(ticket), nil
	}

	s.metrics.IncTicketTransition(string(domain.ActionStart), resultOK)
	s.publish(ctx, events.TypeTicketStarted, ticket)

	s.logger.Info("Start: ticket id=%s started at %s", ticketID, ticket.StartedAt.Format(time.RFC3339))
	return models.FromDomainTicket(ticket), nil
}

// Complete завершает заявку и фиксирует финансовые данные.
// PENDING заявка сначала начинается задним числом (arrivalTime или текущее время).
func (s *Service) Complete(ctx context.Context, tenantID, ticketID uuid.UUID, req *models.CompleteTicketRequest) (*models.TicketResponse, error) {
	s.logger.Info("Complete: completing ticket id=%s for tenant=%s", ticketID, tenantID)

	if req == nil {
		req = &models.CompleteTicketRequest{}
	}

	// 1. Валидация входных данных до транзакции
	paymentDate, dueDate, err := s.parseCompletionDates(req)
	if err != nil {
		s.logger.Warn("Complete: validation failed for ticket id=%s: %v", ticketID, err)
		return nil, err
	}
	if req.ExpenseDetails != nil && len([]rune(*req.ExpenseDetails)) > domain.MaxExpenseDetailsLength {
		s.logger.Warn("Complete: expense details too long for ticket id=%s", ticketID)
		return nil, fmt.Errorf("%w: expenseDetails exceeds %d characters", ErrInvalidInput, domain.MaxExpenseDetailsLength)
	}

	var (
		ticket    *domain.Ticket
		recovered bool
	)

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		// 2. Загружаем заявку с блокировкой строки
		var err error
		ticket, err = s.loadTicket(ctx, tenantID, ticketID)
		if err != nil {
			return err
		}

		if ticket.Status.IsTerminal() {
			return &domain.TransitionError{TicketID: ticket.ID, From: ticket.Status, Action: domain.ActionComplete}
		}

		// 3. Без клиента счёт выставить некому
		if ticket.ClientID == nil {
			s.logger.Warn("Complete: ticket id=%s has no client", ticketID)
			return ErrMissingBillingTarget
		}

		now := s.timeProvider.Now()

		// 4. Восстанавливаем пропущенный старт
		if ticket.Status == domain.TicketStatusPending || ticket.StartedAt == nil {
			startAt := now
			if req.ArrivalTime != nil && !req.ArrivalTime.IsZero() {
				startAt = *req.ArrivalTime
			}
			if startAt.After(now) {
				s.logger.Warn("Complete: arrivalTime=%s for ticket id=%s is in the future, clamped to %s",
					startAt.Format(time.RFC3339), ticketID, now.Format(time.RFC3339))
				startAt = now
			}
			recovered = ticket.Status == domain.TicketStatusPending
			if _, err := ticket.Start(startAt); err != nil {
				return err
			}
			if recovered {
				s.logger.Warn("Complete: ticket id=%s was never started, recovered with start=%s",
					ticketID, ticket.StartedAt.Format(time.RFC3339))
			}
		}

		// 5. Ставки: переданные в запросе, если положительные, иначе сохранённые
		ticket.DistanceRate = finance.ResolveRate(req.DistanceRate.Dec(), ticket.DistanceRate)
		ticket.AdditionalHourRate = finance.ResolveRate(req.AdditionalHourRate.Dec(), ticket.AdditionalHourRate)
		ticket.DistanceTotal = nonNegative(req.DistanceTotal.Decimal)
		ticket.ExtraExpenses = nonNegative(req.ExtraExpenses.Decimal)
		if req.ExpenseDetails != nil {
			details := strings.TrimSpace(*req.ExpenseDetails)
			ticket.ExpenseDetails = &details
		}
		if paymentDate != nil {
			ticket.PaymentDate = paymentDate
		}
		if dueDate != nil {
			ticket.DueDate = dueDate
		}

		// 6. Переход IN_EXECUTION -> COMPLETED
		if err := ticket.MarkCompleted(now); err != nil {
			return err
		}

		// 7. Фактическое время работы
		elapsed := s.resolveElapsed(ticket, req.ElapsedSeconds)
		ticket.ElapsedSeconds = &elapsed

		if req.ExtraHours != nil {
			ticket.ExtraHours = nonNegative(req.ExtraHours.Decimal)
		} else if ticket.DurationHours.IsPositive() {
			ticket.ExtraHours = finance.ExtraHours(elapsed, ticket.DurationHours)
		}

		// 8. Итоговая сумма
		total, err := s.resolveTotal(ticket, req.TotalAmount)
		if err != nil {
			return err
		}
		ticket.TotalAmount = &total

		// 9. Сохраняем
		if err := s.ticketRepo.UpdateLifecycle(ctx, ticket); err != nil {
			s.logger.Error("Complete: failed to update ticket id=%s: %v", ticketID, err)
			return fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		err = wrapTxError(err)
		s.recordFailure(domain.ActionComplete, ticketID, err)
		return nil, err
	}

	if recovered {
		s.metrics.IncTicketRecovered()
	}
	s.metrics.IncTicketTransition(string(domain.ActionComplete), resultOK)
	s.publish(ctx, events.TypeTicketCompleted, ticket)

	s.logger.Info("Complete: ticket id=%s completed, total=%s, elapsed=%ds",
		ticketID, ticket.TotalAmount.StringFixed(2), *ticket.ElapsedSeconds)
	return models.FromDomainTicket(ticket), nil
}

// Cancel отменяет заявку, которая ещё не завершена
func (s *Service) Cancel(ctx context.Context, tenantID, ticketID uuid.UUID, req *models.CancelTicketRequest) (*models.TicketResponse, error) {
	s.logger.Info("Cancel: cancelling ticket id=%s for tenant=%s", ticketID, tenantID)

	// 1. Валидация входных данных
	if req == nil || strings.TrimSpace(req.Reason) == "" {
		s.logger.Warn("Cancel: empty reason for ticket id=%s", ticketID)
		return nil, fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
	}
	source := domain.CancellationSource(strings.ToLower(strings.TrimSpace(req.Source)))
	if !source.Valid() {
		s.logger.Warn("Cancel: invalid source=%q for ticket id=%s", req.Source, ticketID)
		return nil, fmt.Errorf("%w: source must be one of client, technician, company", ErrInvalidInput)
	}

	var ticket *domain.Ticket

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		// 2. Загружаем заявку с блокировкой строки
		var err error
		ticket, err = s.loadTicket(ctx, tenantID, ticketID)
		if err != nil {
			return err
		}

		// 3. Переход в CANCELLED
		if err := ticket.Cancel(domain.FormatCancellationReason(req.Reason, source), s.timeProvider.Now()); err != nil {
			return err
		}

		// 4. Сохраняем
		if err := s.ticketRepo.UpdateLifecycle(ctx, ticket); err != nil {
			s.logger.Error("Cancel: failed to update ticket id=%s: %v", ticketID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		err = wrapTxError(err)
		s.recordFailure(domain.ActionCancel, ticketID, err)
		return nil, err
	}

	s.metrics.IncTicketTransition(string(domain.ActionCancel), resultOK)
	s.publish(ctx, events.TypeTicketCancelled, ticket)

	s.logger.Info("Cancel: ticket id=%s cancelled by %s", ticketID, source)
	return models.FromDomainTicket(ticket), nil
}

// loadTicket получает заявку и проверяет принадлежность тенанту.
// Чужая заявка неотличима от несуществующей.
func (s *Service) loadTicket(ctx context.Context, tenantID, ticketID uuid.UUID) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ticketRepo.ErrTicketNotFound) {
			s.logger.Warn("ticket id=%s not found", ticketID)
			return nil, ErrTicketNotFound
		}
		s.logger.Error("failed to get ticket id=%s: %v", ticketID, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}

	if ticket.TenantID != tenantID {
		s.logger.Warn("ticket id=%s belongs to another tenant, requested by tenant=%s", ticketID, tenantID)
		return nil, ErrTicketNotFound
	}

	return ticket, nil
}

// resolveElapsed берёт время из запроса или считает по сохранённым отметкам
func (s *Service) resolveElapsed(ticket *domain.Ticket, provided *int64) int64 {
	if provided != nil {
		if *provided < 0 {
			s.logger.Warn("Complete: negative elapsedSeconds=%d for ticket id=%s, clamped to 0", *provided, ticket.ID)
			return 0
		}
		return *provided
	}

	elapsed, clamped := domain.Elapsed(*ticket.StartedAt, *ticket.StoppedAt)
	if clamped {
		s.logger.Warn("Complete: ticket id=%s started at %s after stop at %s, elapsed clamped to 0",
			ticket.ID, ticket.StartedAt.Format(time.RFC3339), ticket.StoppedAt.Format(time.RFC3339))
	}
	return elapsed
}

// resolveTotal итог из запроса либо расчёт, если он разрешён для заявки
func (s *Service) resolveTotal(ticket *domain.Ticket, provided *finance.Amount) (decimal.Decimal, error) {
	if provided != nil {
		return nonNegative(provided.Decimal).Round(2), nil
	}

	if !ticket.CalculationsEnabled {
		s.logger.Warn("Complete: ticket id=%s has calculations disabled and no total amount", ticket.ID)
		return decimal.Zero, ErrTotalAmountRequired
	}

	return finance.ComputeTotal(finance.TotalInput{
		TicketValue:        ticket.TicketValue,
		DistanceTotal:      ticket.DistanceTotal,
		DistanceRate:       ticket.DistanceRate,
		ExtraExpenses:      ticket.ExtraExpenses,
		ExtraHours:         ticket.ExtraHours,
		AdditionalHourRate: ticket.AdditionalHourRate,
	}), nil
}

func (s *Service) parseCompletionDates(req *models.CompleteTicketRequest) (*time.Time, *time.Time, error) {
	parse := func(field string, v *string) (*time.Time, error) {
		if v == nil || strings.TrimSpace(*v) == "" {
			return nil, nil
		}
		t, err := models.ParseDate(strings.TrimSpace(*v), s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD or RFC3339", ErrInvalidInput, field)
		}
		return &t, nil
	}

	paymentDate, err := parse("paymentDate", req.PaymentDate)
	if err != nil {
		return nil, nil, err
	}
	dueDate, err := parse("dueDate", req.DueDate)
	if err != nil {
		return nil, nil, err
	}
	return paymentDate, dueDate, nil
}

// publish отправляет событие после коммита; ошибка брокера не откатывает переход
func (s *Service) publish(ctx context.Context, eventType string, ticket *domain.Ticket) {
	event := events.NewTicketEvent(eventType, ticket, s.timeProvider.Now())
	if err := s.publisher.PublishTicketEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish %s for ticket id=%s: %v", eventType, ticket.ID, err)
		s.metrics.IncEventPublished(eventType, resultError)
		return
	}
	s.metrics.IncEventPublished(eventType, resultOK)
}

func (s *Service) recordFailure(action domain.TicketAction, ticketID uuid.UUID, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		s.logger.Warn("%s: rejected for ticket id=%s: %v", action, ticketID, err)
		s.metrics.IncTicketTransition(string(action), resultRejected)
	case errors.Is(err, ErrInternal):
		s.metrics.IncTicketTransition(string(action), resultError)
	default:
		s.metrics.IncTicketTransition(string(action), resultRejected)
	}
}

// wrapTxError ошибки начала и фиксации транзакции считаются внутренними
func wrapTxError(err error) error {
	if errors.Is(err, txmanager.ErrTransaction) {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return err
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

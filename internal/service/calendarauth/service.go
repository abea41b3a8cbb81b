package calendarauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/domain"
	settingsRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-FieldService/internal/integrations/googlecalendar"
	"github.com/m04kA/SMC-FieldService/internal/service/calendarauth/models"
	"github.com/m04kA/SMC-FieldService/pkg/tokenstore"
)

const statePrefix = "gcal-oauth:"

// Service сервис подключения Google Calendar через OAuth
type Service struct {
	states   StateStore
	oauth    OAuthProvider
	connRepo ConnectionRepository
	stateTTL time.Duration
	logger   Logger
}

// NewService создает новый экземпляр сервиса подключения календаря
func NewService(states StateStore, oauth OAuthProvider, connRepo ConnectionRepository, stateTTL time.Duration, logger Logger) *Service {
	return &Service{
		states:   states,
		oauth:    oauth,
		connRepo: connRepo,
		stateTTL: stateTTL,
		logger:   logger,
	}
}

// BeginConnect создает одноразовый state и возвращает ссылку на страницу согласия Google
func (s *Service) BeginConnect(ctx context.Context, tenantID uuid.UUID) (*models.ConnectResponse, error) {
	s.logger.Info("BeginConnect: tenant=%s", tenantID)

	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	state := uuid.NewString()
	if err := s.states.Put(ctx, statePrefix+state, []byte(tenantID.String()), s.stateTTL); err != nil {
		s.logger.Error("BeginConnect: failed to store state for tenant=%s: %v", tenantID, err)
		return nil, fmt.Errorf("%w: failed to store oauth state: %v", ErrInternal, err)
	}

	return &models.ConnectResponse{
		AuthURL: s.oauth.AuthCodeURL(state),
		State:   state,
	}, nil
}

// CompleteConnect проверяет state, обменивает код на токены и сохраняет подключение
func (s *Service) CompleteConnect(ctx context.Context, state, code string) (*models.CallbackResponse, error) {
	state = strings.TrimSpace(state)
	code = strings.TrimSpace(code)
	if state == "" || code == "" {
		return nil, fmt.Errorf("%w: state and code are required", ErrInvalidInput)
	}

	// 1. state одноразовый: Take удаляет его даже при последующей ошибке
	raw, err := s.states.Take(ctx, statePrefix+state)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			s.logger.Warn("CompleteConnect: unknown or expired state")
			return nil, ErrInvalidState
		}
		s.logger.Error("CompleteConnect: failed to read state: %v", err)
		return nil, fmt.Errorf("%w: failed to read oauth state: %v", ErrInternal, err)
	}

	tenantID, err := uuid.Parse(string(raw))
	if err != nil {
		s.logger.Error("CompleteConnect: corrupted state value: %v", err)
		return nil, ErrInvalidState
	}

	// 2. Обмениваем код на токены
	conn, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("CompleteConnect: token exchange failed for tenant=%s: %v", tenantID, err)
		if statusErr := s.connRepo.SetCalendarStatus(ctx, tenantID, domain.CalendarStatusError); statusErr != nil &&
			!errors.Is(statusErr, settingsRepo.ErrSettingsNotFound) {
			s.logger.Error("CompleteConnect: failed to mark calendar status error for tenant=%s: %v", tenantID, statusErr)
		}
		if errors.Is(err, googlecalendar.ErrTokenExchange) {
			return nil, fmt.Errorf("%w: %v", ErrAuthorizationFailed, err)
		}
		return nil, fmt.Errorf("%w: token exchange: %v", ErrInternal, err)
	}

	// 3. Сохраняем подключение
	if err := s.connRepo.SaveCalendarConnection(ctx, tenantID, settingsRepo.CalendarConnection{
		Tokens:     conn.Tokens,
		Email:      conn.Email,
		CalendarID: conn.CalendarID,
	}); err != nil {
		s.logger.Error("CompleteConnect: failed to save connection for tenant=%s: %v", tenantID, err)
		return nil, fmt.Errorf("%w: failed to save calendar connection: %v", ErrInternal, err)
	}

	calendarID := conn.CalendarID
	if calendarID == "" {
		calendarID = domain.PrimaryCalendarID
	}

	s.logger.Info("CompleteConnect: calendar connected for tenant=%s, email=%s", tenantID, conn.Email)
	return &models.CallbackResponse{
		TenantID:   tenantID,
		Status:     string(domain.CalendarStatusConnected),
		CalendarID: calendarID,
		Email:      conn.Email,
	}, nil
}

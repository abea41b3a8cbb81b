package calendarauth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FieldService/internal/domain"
	settingsRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-FieldService/internal/integrations/googlecalendar"
	"github.com/m04kA/SMC-FieldService/pkg/tokenstore"
)

type mockOAuth struct{ mock.Mock }

func (m *mockOAuth) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (m *mockOAuth) Exchange(ctx context.Context, code string) (*googlecalendar.Connection, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*googlecalendar.Connection), args.Error(1)
}

type mockConnRepo struct{ mock.Mock }

func (m *mockConnRepo) SaveCalendarConnection(ctx context.Context, tenantID uuid.UUID, conn settingsRepo.CalendarConnection) error {
	return m.Called(ctx, tenantID, conn).Error(0)
}

func (m *mockConnRepo) SetCalendarStatus(ctx context.Context, tenantID uuid.UUID, status domain.CalendarStatus) error {
	return m.Called(ctx, tenantID, status).Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestService() (*Service, *tokenstore.Memory, *mockOAuth, *mockConnRepo) {
	store := tokenstore.NewMemory()
	oauth := &mockOAuth{}
	repo := &mockConnRepo{}
	return NewService(store, oauth, repo, 10*time.Minute, nopLogger{}), store, oauth, repo
}

func TestConnectFlow(t *testing.T) {
	svc, store, oauth, repo := newTestService()
	tenantID := uuid.New()
	ctx := context.Background()

	begin, err := svc.BeginConnect(ctx, tenantID)
	require.NoError(t, err)
	assert.Contains(t, begin.AuthURL, begin.State)
	assert.Equal(t, 1, store.Len())

	conn := &googlecalendar.Connection{Tokens: []byte(`{"access_token":"a"}`), Email: "owner@example.com", CalendarID: "primary"}
	oauth.On("Exchange", mock.Anything, "code-1").Return(conn, nil)
	repo.On("SaveCalendarConnection", mock.Anything, tenantID, settingsRepo.CalendarConnection{
		Tokens:     conn.Tokens,
		Email:      conn.Email,
		CalendarID: conn.CalendarID,
	}).Return(nil)

	resp, err := svc.CompleteConnect(ctx, begin.State, "code-1")
	require.NoError(t, err)
	assert.Equal(t, tenantID, resp.TenantID)
	assert.Equal(t, "connected", resp.Status)
	assert.Equal(t, "owner@example.com", resp.Email)
	assert.Zero(t, store.Len())

	// state одноразовый
	_, err = svc.CompleteConnect(ctx, begin.State, "code-1")
	assert.ErrorIs(t, err, ErrInvalidState)
	oauth.AssertNumberOfCalls(t, "Exchange", 1)
}

func TestCompleteConnect_UnknownState(t *testing.T) {
	svc, _, oauth, _ := newTestService()

	_, err := svc.CompleteConnect(context.Background(), uuid.NewString(), "code")
	assert.ErrorIs(t, err, ErrInvalidState)
	oauth.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
}

func TestCompleteConnect_ExchangeFailureMarksError(t *testing.T) {
	svc, _, oauth, repo := newTestService()
	tenantID := uuid.New()
	ctx := context.Background()

	begin, err := svc.BeginConnect(ctx, tenantID)
	require.NoError(t, err)

	oauth.On("Exchange", mock.Anything, "bad").
		Return(nil, fmt.Errorf("%w: invalid_grant", googlecalendar.ErrTokenExchange))
	repo.On("SetCalendarStatus", mock.Anything, tenantID, domain.CalendarStatusError).Return(settingsRepo.ErrSettingsNotFound)

	_, err = svc.CompleteConnect(ctx, begin.State, "bad")
	assert.ErrorIs(t, err, ErrAuthorizationFailed)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "SaveCalendarConnection", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteConnect_SaveFailure(t *testing.T) {
	svc, _, oauth, repo := newTestService()
	tenantID := uuid.New()
	ctx := context.Background()

	begin, err := svc.BeginConnect(ctx, tenantID)
	require.NoError(t, err)

	oauth.On("Exchange", mock.Anything, "ok").Return(&googlecalendar.Connection{Tokens: []byte("{}")}, nil)
	repo.On("SaveCalendarConnection", mock.Anything, tenantID, mock.Anything).Return(errors.New("db down"))

	_, err = svc.CompleteConnect(ctx, begin.State, "ok")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestValidation(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.BeginConnect(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CompleteConnect(context.Background(), "", "code")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

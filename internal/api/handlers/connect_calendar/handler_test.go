package connect_calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FieldService/internal/api/middleware"
	"github.com/m04kA/SMC-FieldService/internal/service/calendarauth/models"
	"github.com/m04kA/SMC-FieldService/pkg/logger"
)

type fakeService struct {
	tenantID uuid.UUID
	err      error
}

func (f *fakeService) BeginConnect(_ context.Context, tenantID uuid.UUID) (*models.ConnectResponse, error) {
	f.tenantID = tenantID
	if f.err != nil {
		return nil, f.err
	}
	return &models.ConnectResponse{AuthURL: "https://accounts.google.com/o/oauth2/auth?state=s1", State: "s1"}, nil
}

func TestHandle(t *testing.T) {
	tenantID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := &fakeService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/integrations/google-calendar/connect", nil)
		req = req.WithContext(middleware.WithTenantID(req.Context(), tenantID))
		rec := httptest.NewRecorder()

		NewHandler(svc, logger.NewNop()).Handle(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tenantID, svc.tenantID)

		var body models.ConnectResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "s1", body.State)
		assert.Contains(t, body.AuthURL, "state=s1")
	})

	t.Run("missing tenant", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHandler(&fakeService{}, logger.NewNop()).Handle(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(middleware.WithTenantID(req.Context(), tenantID))
		rec := httptest.NewRecorder()

		NewHandler(&fakeService{err: errors.New("redis down")}, logger.NewNop()).Handle(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

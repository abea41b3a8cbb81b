package settings

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/domain"
)

// SettingsRepository интерфейс репозитория настроек тенанта
type SettingsRepository interface {
	GetIntegrationSettings(ctx context.Context, tenantID uuid.UUID) (*domain.IntegrationSettings, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

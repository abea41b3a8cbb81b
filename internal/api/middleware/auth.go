package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldService/internal/api/handlers"
)

const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderUserID   = "X-User-ID"

	msgMissingTenantID = "отсутствует или некорректен заголовок X-Tenant-ID"
	msgInvalidUserID   = "некорректный заголовок X-User-ID"
)

type contextKey string

const (
	tenantIDKey contextKey = "tenant_id"
	userIDKey   contextKey = "user_id"
)

// Auth кладёт в контекст тенанта и пользователя из заголовков.
// Тенант обязателен, пользователь опционален
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := uuid.Parse(r.Header.Get(HeaderTenantID))
		if err != nil {
			handlers.RespondUnauthorized(w, msgMissingTenantID)
			return
		}

		ctx := WithTenantID(r.Context(), tenantID)

		if raw := r.Header.Get(HeaderUserID); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				handlers.RespondUnauthorized(w, msgInvalidUserID)
				return
			}
			ctx = WithUserID(ctx, userID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetTenantID достаёт ID тенанта, положенный Auth
func GetTenantID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(tenantIDKey).(uuid.UUID)
	return id, ok
}

// GetUserID достаёт ID пользователя, положенный Auth
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
)

// HeaderUserID заголовок с ID пользователя, который проставляет API gateway
const HeaderUserID = "X-User-ID"

const msgMissingUserID = "отсутствует заголовок X-User-ID"

type userIDKey struct{}

// Auth требует заголовок X-User-ID и кладёт его значение в контекст запроса
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает ID пользователя, сохранённый Auth
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// WithUserID кладёт ID пользователя в контекст (для тестов обработчиков)
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// auth.go — middleware аутентификации eventdesk.
// Извлекает Bearer token, проверяет его через token.Codec и помещает
// резолвленную identity в контекст запроса. Авторизация (таблица
// доступа) выполняется дальше, в сервисном слое.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/avkuznetsov/eventdesk/internal/api/errors"
	"github.com/avkuznetsov/eventdesk/internal/token"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyIdentity — резолвленная identity в контексте запроса.
const ContextKeyIdentity contextKey = "identity"

// Auth — middleware проверки сессионных токенов.
type Auth struct {
	codec  *token.Codec
	logger *slog.Logger
}

// NewAuth создаёт middleware аутентификации.
func NewAuth(codec *token.Codec, logger *slog.Logger) *Auth {
	return &Auth{
		codec:  codec,
		logger: logger.With(slog.String("component", "auth_middleware")),
	}
}

// Middleware возвращает HTTP middleware аутентификации.
// Просроченный токен отличается в сообщении от невалидного:
// клиенту нужен повторный логин, а не исправление запроса.
func (a *Auth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierrors.Unauthorized(w, "Отсутствует заголовок Authorization")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				apierrors.Unauthorized(w, "Неверный формат Authorization: ожидается Bearer <token>")
				return
			}
			if parts[1] == "" {
				apierrors.Unauthorized(w, "Пустой Bearer token")
				return
			}

			identity, err := a.codec.Validate(parts[1])
			if err != nil {
				a.logger.Debug("Токен не прошёл проверку",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				if errors.Is(err, token.ErrExpired) {
					apierrors.Unauthorized(w, "Срок действия токена истёк")
					return
				}
				apierrors.Unauthorized(w, "Невалидный токен")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext извлекает identity из контекста запроса.
// Возвращает nil, если аутентификация не выполнялась.
func IdentityFromContext(ctx context.Context) *token.Identity {
	identity, _ := ctx.Value(ContextKeyIdentity).(*token.Identity)
	return identity
}

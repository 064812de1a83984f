// Пакет token — кодек сессионных токенов eventdesk.
// Подписывает и проверяет HS256 JWT с identity и ролью субъекта.
// Токен непрозрачен для остальных слоёв: реестры получают только
// резолвленную пару {userID, role}, никогда — сырые учётные данные.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Ошибки валидации токена. Различаются, чтобы вызывающая сторона могла
// отличить «нужен повторный логин» (Expired) от прямого отказа.
var (
	// ErrExpired — срок действия токена истёк.
	ErrExpired = errors.New("срок действия токена истёк")
	// ErrInvalidSignature — подпись токена не прошла проверку.
	ErrInvalidSignature = errors.New("невалидная подпись токена")
	// ErrMalformed — токен повреждён или имеет неверный формат.
	ErrMalformed = errors.New("повреждённый токен")
)

const issuer = "eventdesk"

// Claims — подписываемый набор утверждений токена.
type Claims struct {
	jwt.RegisteredClaims
	// UserID — идентификатор пользователя.
	UserID string `json:"user_id"`
	// Role — роль на момент выдачи токена.
	Role string `json:"role"`
}

// Identity — резолвленная пара, которую видят реестры.
type Identity struct {
	// UserID — идентификатор пользователя.
	UserID string
	// Role — роль пользователя.
	Role string
}

// Codec подписывает и проверяет токены фиксированным секретом.
type Codec struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
}

// NewCodec создаёт кодек токенов.
// secret — ключ HMAC-SHA256, ttl — срок действия выдаваемых токенов.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// NewCodecWithLeeway создаёт кодек с допустимым отклонением часов.
// Используется в тестах для проверки граничных случаев истечения.
func NewCodecWithLeeway(secret string, ttl, leeway time.Duration) *Codec {
	c := NewCodec(secret, ttl)
	c.leeway = leeway
	return c
}

// Issue выдаёт подписанный токен с identity и ролью.
func (c *Codec) Issue(userID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID: userID,
		Role:   role,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}
	return signed, nil
}

// Validate проверяет токен и возвращает identity.
// Ошибки: ErrExpired, ErrInvalidSignature, ErrMalformed.
func (c *Codec) Validate(tokenString string) (*Identity, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
		jwt.WithLeeway(c.leeway),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}
	if !t.Valid || claims.UserID == "" || claims.Role == "" {
		return nil, ErrMalformed
	}

	return &Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

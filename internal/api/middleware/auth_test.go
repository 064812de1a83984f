package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/avkuznetsov/eventdesk/internal/token"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const testSecret = "middleware-test-secret-0123"

// newProtectedHandler оборачивает echo-handler в middleware аутентификации.
// Handler пишет identity из контекста, чтобы тест мог её проверить.
func newProtectedHandler(codec *token.Codec) http.Handler {
	auth := NewAuth(codec, testLogger())
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == nil {
			http.Error(w, "identity отсутствует", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(identity)
	})
	return auth.Middleware()(echo)
}

func TestAuthMiddleware(t *testing.T) {
	codec := token.NewCodec(testSecret, time.Hour)
	handler := newProtectedHandler(codec)

	validToken, err := codec.Issue("user-1", "Admin")
	if err != nil {
		t.Fatalf("Issue() ошибка: %v", err)
	}

	expiredCodec := token.NewCodec(testSecret, -time.Hour)
	expiredToken, err := expiredCodec.Issue("user-1", "Admin")
	if err != nil {
		t.Fatalf("Issue() просроченного: %v", err)
	}

	foreignCodec := token.NewCodec("another-secret-0123456789", time.Hour)
	foreignToken, err := foreignCodec.Issue("user-1", "Admin")
	if err != nil {
		t.Fatalf("Issue() чужим секретом: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"валидный токен", "Bearer " + validToken, http.StatusOK},
		{"без заголовка", "", http.StatusUnauthorized},
		{"не Bearer", "Basic abc123", http.StatusUnauthorized},
		{"пустой токен", "Bearer ", http.StatusUnauthorized},
		{"мусор вместо токена", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"просроченный токен", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"чужая подпись", "Bearer " + foreignToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, хотели %d; тело: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareIdentityInContext(t *testing.T) {
	codec := token.NewCodec(testSecret, time.Hour)
	handler := newProtectedHandler(codec)

	tok, err := codec.Issue("user-42", "Supervisor")
	if err != nil {
		t.Fatalf("Issue() ошибка: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, тело: %s", rec.Code, rec.Body.String())
	}

	var identity token.Identity
	if err := json.Unmarshal(rec.Body.Bytes(), &identity); err != nil {
		t.Fatalf("Разбор ответа: %v", err)
	}
	if identity.UserID != "user-42" || identity.Role != "Supervisor" {
		t.Errorf("Identity = {%q, %q}, хотели {user-42, Supervisor}", identity.UserID, identity.Role)
	}
}

func TestExpiredTokenMessage(t *testing.T) {
	codec := token.NewCodec(testSecret, time.Hour)
	handler := newProtectedHandler(codec)

	expiredCodec := token.NewCodec(testSecret, -time.Hour)
	tok, _ := expiredCodec.Issue("user-1", "Admin")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var body struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Разбор ответа: %v", err)
	}
	if body.Success {
		t.Error("success = true для просроченного токена")
	}
	if body.Code != "UNAUTHORIZED" {
		t.Errorf("code = %q, хотели UNAUTHORIZED", body.Code)
	}
	// Сообщение различает истечение и невалидность: клиенту нужен re-login
	if body.Message != "Срок действия токена истёк" {
		t.Errorf("message = %q", body.Message)
	}
}

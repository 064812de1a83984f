// handler.go — основной обработчик API eventdesk.
// Объединяет доменные обработчики, делегирует запросы в сервисный слой
// и транслирует его ошибки в JSON-ответы единого формата.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apierrors "github.com/avkuznetsov/eventdesk/internal/api/errors"
	"github.com/avkuznetsov/eventdesk/internal/api/middleware"
	"github.com/avkuznetsov/eventdesk/internal/service"
)

// APIHandler — основной обработчик API eventdesk.
type APIHandler struct {
	health *HealthHandler
	auth   *service.AuthService
	events *service.EventService
	tasks  *service.TaskService
	logger *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	auth *service.AuthService,
	events *service.EventService,
	tasks *service.TaskService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health: health,
		auth:   auth,
		events: events,
		tasks:  tasks,
		logger: logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// actorFromRequest извлекает identity из контекста запроса.
// false означает, что запрос прошёл мимо middleware аутентификации.
func actorFromRequest(r *http.Request) (service.Actor, bool) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		return service.Actor{}, false
	}
	return service.Actor{UserID: identity.UserID, Role: identity.Role}, true
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError транслирует ошибку сервисного слоя в HTTP-ответ.
// Неопознанная ошибка логируется и скрывается за 500: детали внутренних
// сбоев не утекают наружу.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error, notFoundMsg string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		apierrors.ValidationError(w, "Ошибка валидации", verr.Problems...)
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrForbidden):
		apierrors.Forbidden(w, "Недостаточно прав для выполнения операции")
	case errors.Is(err, service.ErrInvalidCredentials):
		apierrors.Unauthorized(w, "Неверные учётные данные")
	case errors.Is(err, service.ErrEventNotFound):
		apierrors.EventNotFound(w, "Событие не найдено")
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, notFoundMsg)
	case errors.Is(err, service.ErrPartialFailure):
		apierrors.PartialFailure(w, "Задача создана, но событие не обновлено")
	default:
		h.logger.Error("Внутренняя ошибка при обработке запроса",
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}

// decodeBody разбирает JSON-тело запроса в dst.
// Неизвестные поля отвергаются: опечатка в имени поля — ошибка клиента.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return false
	}
	return true
}

// paginationFromQuery извлекает limit и offset из query-параметров.
// Возвращает нормализованные значения: limit 1..1000 (по умолчанию 100),
// offset ≥ 0.
func paginationFromQuery(r *http.Request) (int, int) {
	l := 100
	o := 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			l = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			o = v
		}
	}

	if l < 1 {
		l = 1
	}
	if l > 1000 {
		l = 1000
	}
	if o < 0 {
		o = 0
	}
	return l, o
}

// optionalQuery возвращает указатель на значение query-параметра
// или nil, если параметр не задан.
func optionalQuery(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}

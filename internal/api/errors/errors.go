// Пакет errors — конструкторы стандартных ошибок в формате eventdesk.
// Единый формат: {"success": false, "code": "...", "message": "...", "errors": [...]}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"
)

// Машиночитаемые коды ошибок API.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeEventNotFound   = "EVENT_NOT_FOUND"
	CodePartialFailure  = "PARTIAL_FAILURE"
	CodeInternalError   = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Success bool     `json:"success"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// WriteError записывает ответ ошибки в стандартном формате eventdesk.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание,
// details — опциональный перечень конкретных проблем (валидация).
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Success: false,
		Code:    code,
		Message: message,
		Errors:  details,
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string, details ...string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message, details...)
}

// NotFound — 404 ресурс не найден или скрыт правилами видимости.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden — 403 недостаточно прав.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// EventNotFound — 404 родительское событие отсутствует или удалено.
func EventNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeEventNotFound, message)
}

// PartialFailure — 500 задача создана без обратной ссылки в событии.
// Код отличен от INTERNAL_ERROR: состояние рассогласовано и требует сверки.
func PartialFailure(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodePartialFailure, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}

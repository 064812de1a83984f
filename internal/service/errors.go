// errors.go — ошибки бизнес-логики сервисного слоя.
// Валидация и авторизация разрешаются здесь и не доходят до хранилища;
// ошибки хранилища поднимаются наверх как есть и транслируются в 500.
package service

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound — ресурс не найден либо скрыт правилами видимости.
	// Для вызывающего эти случаи намеренно неразличимы.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrForbidden — роль не допущена к действию таблицей доступа.
	ErrForbidden = errors.New("недостаточно прав")
	// ErrInvalidCredentials — пароль не прошёл проверку.
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrEventNotFound — операция над задачей ссылается на отсутствующее
	// или удалённое событие.
	ErrEventNotFound = errors.New("событие не найдено")
	// ErrPartialFailure — задача создана, но пополнение task_ids события
	// не прошло. Состояние рассогласовано и требует сверки.
	ErrPartialFailure = errors.New("частичный сбой — задача создана без обратной ссылки")
)

// ValidationError — ошибка валидации с перечнем конкретных проблем.
// errors.Is(err, ErrValidation) возвращает true через Unwrap.
type ValidationError struct {
	// Problems — человекочитаемые описания, по одному на поле.
	Problems []string
}

// NewValidationError создаёт ошибку валидации из перечня проблем.
func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return "ошибка валидации: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

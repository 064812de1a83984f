package model

import "time"

// Стадии выполнения события и статусы задач.
const (
	ProgressNotStarted = "NotStarted"
	ProgressInProgress = "InProgress"
	ProgressCompleted  = "Completed"
)

// Event — событие с назначенными ролями и обратными ссылками на задачи.
// Хранится в таблице events. Удаление — мягкое (флаг deleted),
// запись остаётся адресуемой для аудиторских ролей.
type Event struct {
	// ID — UUID записи
	ID string
	// Name — название события
	Name string
	// Description — описание события
	Description string
	// SupervisorID — назначенный Supervisor (ссылка на users)
	SupervisorID string
	// EventManagerID — назначенный EventManager (ссылка на users)
	EventManagerID string
	// ClientID — клиент события (ссылка на users)
	ClientID string
	// TaskIDs — упорядоченный список ID задач события.
	// Авторитетный обратный список: пополняется атомарно при создании задачи,
	// при мягком удалении задачи НЕ сокращается (история членства).
	TaskIDs []string
	// Progress — стадия выполнения (NotStarted, InProgress, Completed)
	Progress string
	// Deleted — флаг мягкого удаления
	Deleted bool
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// IsValidProgress проверяет допустимость стадии выполнения.
func IsValidProgress(p string) bool {
	switch p {
	case ProgressNotStarted, ProgressInProgress, ProgressCompleted:
		return true
	}
	return false
}

package model

import "time"

// Приоритеты задач.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Task — задача, привязанная к событию.
// Хранится в таблице tasks. EventID неизменяем после создания —
// прямая ссылка на родителя является источником истины о членстве.
type Task struct {
	// ID — UUID записи
	ID string
	// Name — название задачи
	Name string
	// Description — описание задачи
	Description string
	// Status — статус (NotStarted, InProgress, Completed)
	Status string
	// DueDate — срок выполнения
	DueDate time.Time
	// AssignedTo — исполнитель (ссылка на users)
	AssignedTo string
	// EventID — родительское событие (ссылка на events, неизменяемое)
	EventID string
	// Priority — приоритет (Low, Medium, High)
	Priority string
	// Deleted — флаг мягкого удаления
	Deleted bool
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// IsValidPriority проверяет допустимость приоритета.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

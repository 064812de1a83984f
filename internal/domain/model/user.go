// Пакет model — доменные модели eventdesk.
package model

import "time"

// Роли пользователей системы.
const (
	// RoleAdmin — полный доступ ко всем операциям, включая создание пользователей.
	RoleAdmin = "Admin"
	// RoleSupervisor — создание/изменение/удаление событий и задач, аудит удалённых.
	RoleSupervisor = "Supervisor"
	// RoleEventManager — изменение событий, полный цикл задач.
	RoleEventManager = "EventManager"
	// RoleClient — чтение собственных событий и их задач.
	RoleClient = "Client"
)

// User — учётная запись пользователя.
// Хранится в таблице users. Пользователи не удаляются.
type User struct {
	// ID — UUID записи
	ID string
	// Username — уникальное имя пользователя (точное совпадение при логине)
	Username string
	// PasswordHash — bcrypt-хэш пароля, наружу не отдаётся
	PasswordHash string
	// Role — роль (Admin, Supervisor, EventManager, Client)
	Role string
	// CreatedBy — ID пользователя, создавшего запись (nil для bootstrap-админа)
	CreatedBy *string
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

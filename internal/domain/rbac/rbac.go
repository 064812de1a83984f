// Пакет rbac — статическая таблица доступа eventdesk.
// Чистая функция (роль, действие, ресурс) → allow/deny без побочных эффектов.
// Неизвестная роль или незаполненная ячейка таблицы всегда означает deny.
// Проверка вызывается ДО любого обращения к хранилищу.
package rbac

import "github.com/avkuznetsov/eventdesk/internal/domain/model"

// Action — действие над ресурсом.
type Action string

// Действия, фигурирующие в таблице доступа.
const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource — тип ресурса.
type Resource string

// Типы ресурсов.
const (
	ResourceUser  Resource = "user"
	ResourceEvent Resource = "event"
	ResourceTask  Resource = "task"
)

// policyKey — ключ таблицы доступа.
type policyKey struct {
	action   Action
	resource Resource
}

// policy — таблица (действие, ресурс) → множество допущенных ролей.
// Login намеренно отсутствует: он выполняется до аутентификации
// и не проходит через Authorize.
var policy = map[policyKey]map[string]bool{
	{ActionCreate, ResourceUser}: roleSet(model.RoleAdmin),

	{ActionCreate, ResourceEvent}: roleSet(model.RoleAdmin, model.RoleSupervisor),
	{ActionRead, ResourceEvent}:   roleSet(model.RoleAdmin, model.RoleSupervisor, model.RoleEventManager, model.RoleClient),
	{ActionUpdate, ResourceEvent}: roleSet(model.RoleAdmin, model.RoleSupervisor, model.RoleEventManager),
	{ActionDelete, ResourceEvent}: roleSet(model.RoleAdmin, model.RoleSupervisor),

	{ActionCreate, ResourceTask}: roleSet(model.RoleAdmin, model.RoleSupervisor, model.RoleEventManager),
	{ActionRead, ResourceTask}:   roleSet(model.RoleAdmin, model.RoleSupervisor, model.RoleEventManager, model.RoleClient),
	{ActionUpdate, ResourceTask}: roleSet(model.RoleAdmin, model.RoleSupervisor, model.RoleEventManager),
	{ActionDelete, ResourceTask}: roleSet(model.RoleAdmin, model.RoleSupervisor, model.RoleEventManager),
}

// Authorize возвращает true, если роли разрешено действие над ресурсом.
// Тотальна: любая комбинация вне таблицы — deny.
func Authorize(role string, action Action, resource Resource) bool {
	allowed, ok := policy[policyKey{action, resource}]
	if !ok {
		return false
	}
	return allowed[role]
}

// CanAudit возвращает true для ролей с аудиторским доступом:
// они видят мягко удалённые записи при прямом обращении по ID.
func CanAudit(role string) bool {
	return role == model.RoleAdmin || role == model.RoleSupervisor
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	switch role {
	case model.RoleAdmin, model.RoleSupervisor, model.RoleEventManager, model.RoleClient:
		return true
	}
	return false
}

// roleSet конвертирует перечисление ролей в map для быстрого поиска.
func roleSet(roles ...string) map[string]bool {
	s := make(map[string]bool, len(roles))
	for _, r := range roles {
		s[r] = true
	}
	return s
}

package rbac

import (
	"testing"

	"github.com/avkuznetsov/eventdesk/internal/domain/model"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		action   Action
		resource Resource
		want     bool
	}{
		// Пользователи
		{"Admin создаёт пользователя", model.RoleAdmin, ActionCreate, ResourceUser, true},
		{"Supervisor не создаёт пользователя", model.RoleSupervisor, ActionCreate, ResourceUser, false},
		{"EventManager не создаёт пользователя", model.RoleEventManager, ActionCreate, ResourceUser, false},
		{"Client не создаёт пользователя", model.RoleClient, ActionCreate, ResourceUser, false},

		// События
		{"Admin создаёт событие", model.RoleAdmin, ActionCreate, ResourceEvent, true},
		{"Supervisor создаёт событие", model.RoleSupervisor, ActionCreate, ResourceEvent, true},
		{"EventManager не создаёт событие", model.RoleEventManager, ActionCreate, ResourceEvent, false},
		{"Client не создаёт событие", model.RoleClient, ActionCreate, ResourceEvent, false},
		{"Client читает события", model.RoleClient, ActionRead, ResourceEvent, true},
		{"EventManager обновляет событие", model.RoleEventManager, ActionUpdate, ResourceEvent, true},
		{"Client не обновляет событие", model.RoleClient, ActionUpdate, ResourceEvent, false},
		{"Supervisor удаляет событие", model.RoleSupervisor, ActionDelete, ResourceEvent, true},
		{"EventManager не удаляет событие", model.RoleEventManager, ActionDelete, ResourceEvent, false},

		// Задачи
		{"EventManager создаёт задачу", model.RoleEventManager, ActionCreate, ResourceTask, true},
		{"Client не создаёт задачу", model.RoleClient, ActionCreate, ResourceTask, false},
		{"Client читает задачи", model.RoleClient, ActionRead, ResourceTask, true},
		{"EventManager удаляет задачу", model.RoleEventManager, ActionDelete, ResourceTask, true},
		{"Client не удаляет задачу", model.RoleClient, ActionDelete, ResourceTask, false},

		// Тотальность: всё вне таблицы — deny
		{"неизвестная роль — deny", "Superuser", ActionRead, ResourceEvent, false},
		{"пустая роль — deny", "", ActionRead, ResourceEvent, false},
		{"неизвестное действие — deny", model.RoleAdmin, Action("export"), ResourceEvent, false},
		{"неизвестный ресурс — deny", model.RoleAdmin, ActionRead, Resource("report"), false},
		{"удаление пользователя — deny для всех", model.RoleAdmin, ActionDelete, ResourceUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.role, tt.action, tt.resource)
			if got != tt.want {
				t.Errorf("Authorize(%q, %q, %q) = %v, хотели %v",
					tt.role, tt.action, tt.resource, got, tt.want)
			}
		})
	}
}

func TestCanAudit(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{model.RoleAdmin, true},
		{model.RoleSupervisor, true},
		{model.RoleEventManager, false},
		{model.RoleClient, false},
		{"", false},
		{"admin", false}, // роли чувствительны к регистру
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := CanAudit(tt.role); got != tt.want {
				t.Errorf("CanAudit(%q) = %v, хотели %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{model.RoleAdmin, true},
		{model.RoleSupervisor, true},
		{model.RoleEventManager, true},
		{model.RoleClient, true},
		{"Event Manager", false},
		{"client", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := IsValidRole(tt.role); got != tt.want {
				t.Errorf("IsValidRole(%q) = %v, хотели %v", tt.role, got, tt.want)
			}
		})
	}
}

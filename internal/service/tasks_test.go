package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avkuznetsov/eventdesk/internal/domain/model"
	"github.com/avkuznetsov/eventdesk/internal/repository"
)

// taskFixture — общая обвязка тестов реестра задач.
type taskFixture struct {
	*eventFixture
	svc   *TaskService
	tasks *fakeTaskRepo
	event *model.Event
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	ef := newEventFixture(t)
	tasks := newFakeTaskRepo()
	f := &taskFixture{
		eventFixture: ef,
		svc:          NewTaskService(tasks, ef.events, ef.users, testLogger()),
		tasks:        tasks,
		event:        ef.createEvent(t),
	}
	return f
}

func (f *taskFixture) validCreate() TaskCreate {
	return TaskCreate{
		Name:       "подготовить площадку",
		DueDate:    time.Now().Add(72 * time.Hour),
		AssignedTo: f.mgr.ID,
		EventID:    f.event.ID,
		Priority:   model.PriorityMedium,
	}
}

func TestTaskCreate(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	task, err := f.svc.Create(ctx, f.admin, f.validCreate())
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if task.Status != model.ProgressNotStarted {
		t.Errorf("Status по умолчанию = %q, хотели NotStarted", task.Status)
	}

	// Обратная ссылка появилась в событии
	e, _ := f.events.GetByID(ctx, f.event.ID)
	if len(e.TaskIDs) != 1 || e.TaskIDs[0] != task.ID {
		t.Errorf("TaskIDs события = %v, хотели [%q]", e.TaskIDs, task.ID)
	}

	// Client не допущен к созданию задач
	cliActor := Actor{UserID: f.cli.ID, Role: model.RoleClient}
	before := len(f.tasks.tasks)
	if _, err := f.svc.Create(ctx, cliActor, f.validCreate()); !errors.Is(err, ErrForbidden) {
		t.Errorf("Create(Client) = %v, хотели ErrForbidden", err)
	}
	if len(f.tasks.tasks) != before {
		t.Error("Create(Client) изменил хранилище при отказе")
	}
}

func TestTaskCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	tests := []struct {
		name   string
		mutate func(*TaskCreate)
	}{
		{"пустое name", func(in *TaskCreate) { in.Name = "" }},
		{"нулевой due_date", func(in *TaskCreate) { in.DueDate = time.Time{} }},
		{"due_date в прошлом", func(in *TaskCreate) { in.DueDate = time.Now().Add(-time.Hour) }},
		{"пустой assigned_to", func(in *TaskCreate) { in.AssignedTo = "" }},
		{"пустой event_id", func(in *TaskCreate) { in.EventID = "" }},
		{"недопустимый status", func(in *TaskCreate) { in.Status = "Done" }},
		{"недопустимый priority", func(in *TaskCreate) { in.Priority = "Urgent" }},
		{"неизвестный исполнитель", func(in *TaskCreate) { in.AssignedTo = uuid.New().String() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.validCreate()
			tt.mutate(&in)
			if _, err := f.svc.Create(ctx, f.admin, in); !errors.Is(err, ErrValidation) {
				t.Errorf("Create() = %v, хотели ErrValidation", err)
			}
		})
	}
	if len(f.tasks.tasks) != 0 {
		t.Error("Задачи сохранены при ошибках валидации")
	}
}

func TestTaskCreateEventNotFound(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	// Несуществующее событие: задача не сохраняется
	in := f.validCreate()
	in.EventID = uuid.New().String()
	if _, err := f.svc.Create(ctx, f.admin, in); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Create(несуществующее событие) = %v, хотели ErrEventNotFound", err)
	}
	if len(f.tasks.tasks) != 0 {
		t.Error("Задача сохранена при отсутствующем событии")
	}

	// Удалённое событие эквивалентно отсутствующему
	if _, err := f.eventFixture.svc.Delete(ctx, f.admin, f.event.ID); err != nil {
		t.Fatalf("Delete() события: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.admin, f.validCreate()); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Create(удалённое событие) = %v, хотели ErrEventNotFound", err)
	}
	if len(f.tasks.tasks) != 0 {
		t.Error("Задача сохранена при удалённом событии")
	}
}

func TestTaskCreatePartialFailure(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	// Пополнение task_ids срывается после вставки задачи
	f.events.appendErr = repository.ErrNotFound
	_, err := f.svc.Create(ctx, f.admin, f.validCreate())
	if !errors.Is(err, ErrPartialFailure) {
		t.Fatalf("Create() = %v, хотели ErrPartialFailure", err)
	}

	// Задача осталась в хранилище: рассогласование фиксируется, не маскируется
	if len(f.tasks.tasks) != 1 {
		t.Errorf("len(tasks) = %d, хотели 1 (запись для сверки)", len(f.tasks.tasks))
	}
}

func TestTaskGetVisibility(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	task, err := f.svc.Create(ctx, f.admin, f.validCreate())
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	// До удаления задачу видят все читающие роли
	cliActor := Actor{UserID: f.cli.ID, Role: model.RoleClient}
	if _, err := f.svc.Get(ctx, cliActor, task.ID); err != nil {
		t.Errorf("Get(Client) ошибка: %v", err)
	}

	if _, err := f.svc.Delete(ctx, f.admin, task.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}

	// После удаления — только аудиторские роли
	tests := []struct {
		role    string
		userID  string
		visible bool
	}{
		{model.RoleAdmin, f.admin.UserID, true},
		{model.RoleSupervisor, f.sup.ID, true},
		{model.RoleEventManager, f.mgr.ID, false},
		{model.RoleClient, f.cli.ID, false},
	}
	for _, tt := range tests {
		_, err := f.svc.Get(ctx, Actor{UserID: tt.userID, Role: tt.role}, task.ID)
		if tt.visible && err != nil {
			t.Errorf("Get(%s) удалённой = %v, хотели запись", tt.role, err)
		}
		if !tt.visible && !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%s) удалённой = %v, хотели ErrNotFound", tt.role, err)
		}
	}
}

func TestTaskListByEvent(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	first, err := f.svc.Create(ctx, f.admin, f.validCreate())
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	in := f.validCreate()
	in.Name = "согласовать смету"
	second, err := f.svc.Create(ctx, f.admin, in)
	if err != nil {
		t.Fatalf("Create() второй задачи: %v", err)
	}

	// Порядок создания сохраняется
	list, err := f.svc.ListByEvent(ctx, f.admin, f.event.ID)
	if err != nil {
		t.Fatalf("ListByEvent() ошибка: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("ListByEvent() = %v, хотели [%q, %q]", list, first.ID, second.ID)
	}

	// Удалённые задачи видит в списке только Admin
	if _, err := f.svc.Delete(ctx, f.admin, first.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	list, _ = f.svc.ListByEvent(ctx, f.admin, f.event.ID)
	if len(list) != 2 {
		t.Errorf("ListByEvent(Admin) после удаления = %d записей, хотели 2", len(list))
	}
	supActor := Actor{UserID: f.sup.ID, Role: model.RoleSupervisor}
	list, _ = f.svc.ListByEvent(ctx, supActor, f.event.ID)
	if len(list) != 1 {
		t.Errorf("ListByEvent(Supervisor) после удаления = %d записей, хотели 1", len(list))
	}

	// Пустой и несуществующий event_id
	if _, err := f.svc.ListByEvent(ctx, f.admin, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("ListByEvent(пустой event_id) = %v, хотели ErrValidation", err)
	}
	if _, err := f.svc.ListByEvent(ctx, f.admin, uuid.New().String()); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("ListByEvent(несуществующий) = %v, хотели ErrEventNotFound", err)
	}
}

func TestTaskMalformedID(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	// Не-UUID идентификатор неотличим от отсутствующей задачи
	if _, err := f.svc.Get(ctx, f.admin, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(не-UUID) = %v, хотели ErrNotFound", err)
	}
	if _, err := f.svc.Delete(ctx, f.admin, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(не-UUID) = %v, хотели ErrNotFound", err)
	}

	// Не-UUID event_id в списке — события с таким ID не существует
	if _, err := f.svc.ListByEvent(ctx, f.admin, "not-a-uuid"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("ListByEvent(не-UUID) = %v, хотели ErrEventNotFound", err)
	}

	// Не-UUID ссылки при создании отвергаются до обращения к хранилищу
	in := f.validCreate()
	in.EventID = "not-a-uuid"
	if _, err := f.svc.Create(ctx, f.admin, in); !errors.Is(err, ErrValidation) {
		t.Errorf("Create(не-UUID event_id) = %v, хотели ErrValidation", err)
	}
	if len(f.tasks.tasks) != 0 {
		t.Error("Задача сохранена при некорректном event_id")
	}

	task, err := f.svc.Create(ctx, f.admin, f.validCreate())
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	bad := "not-a-uuid"
	if _, err := f.svc.Update(ctx, f.admin, task.ID, TaskPatch{AssignedTo: &bad}); !errors.Is(err, ErrValidation) {
		t.Errorf("Update(не-UUID assigned_to) = %v, хотели ErrValidation", err)
	}
}

func TestTaskUpdate(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	task, err := f.svc.Create(ctx, f.admin, f.validCreate())
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	status := model.ProgressCompleted
	priority := model.PriorityHigh
	got, err := f.svc.Update(ctx, f.admin, task.ID, TaskPatch{Status: &status, Priority: &priority})
	if err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	if got.Status != model.ProgressCompleted || got.Priority != model.PriorityHigh {
		t.Errorf("После Update: {%q, %q}", got.Status, got.Priority)
	}

	// Смена event_id отвергается до обращения к хранилищу
	otherEvent := uuid.New().String()
	_, err = f.svc.Update(ctx, f.admin, task.ID, TaskPatch{EventID: &otherEvent})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Update(event_id) = %v, хотели ErrValidation", err)
	}
	stored, _ := f.tasks.GetByID(ctx, task.ID)
	if stored.EventID != f.event.ID {
		t.Errorf("EventID изменился: %q", stored.EventID)
	}

	// Неизвестный исполнитель
	ghost := uuid.New().String()
	if _, err := f.svc.Update(ctx, f.admin, task.ID, TaskPatch{AssignedTo: &ghost}); !errors.Is(err, ErrValidation) {
		t.Errorf("Update(неизвестный исполнитель) = %v, хотели ErrValidation", err)
	}

	// Client не допущен к update задач
	cliActor := Actor{UserID: f.cli.ID, Role: model.RoleClient}
	if _, err := f.svc.Update(ctx, cliActor, task.ID, TaskPatch{Status: &status}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Update(Client) = %v, хотели ErrForbidden", err)
	}
}

func TestTaskDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	task, err := f.svc.Create(ctx, f.admin, f.validCreate())
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	del1, err := f.svc.Delete(ctx, f.admin, task.ID)
	if err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	del2, err := f.svc.Delete(ctx, f.admin, task.ID)
	if err != nil {
		t.Fatalf("Повторный Delete() ошибка: %v", err)
	}
	if !del2.UpdatedAt.Equal(del1.UpdatedAt) {
		t.Errorf("Повторный Delete сдвинул UpdatedAt: %v -> %v", del1.UpdatedAt, del2.UpdatedAt)
	}

	// ID удалённой задачи остаётся в task_ids события
	e, _ := f.events.GetByID(ctx, f.event.ID)
	if len(e.TaskIDs) != 1 || e.TaskIDs[0] != task.ID {
		t.Errorf("TaskIDs после удаления задачи = %v, хотели [%q]", e.TaskIDs, task.ID)
	}

	if _, err := f.svc.Delete(ctx, f.admin, uuid.New().String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(несуществующая) = %v, хотели ErrNotFound", err)
	}
}

// tasks.go — реестр задач.
// Создание задачи — двухшаговая операция: вставка записи, затем
// атомарное пополнение task_ids родительского события. Сбой второго
// шага фиксируется как ErrPartialFailure и не маскируется под успех.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avkuznetsov/eventdesk/internal/domain/model"
	"github.com/avkuznetsov/eventdesk/internal/domain/rbac"
	"github.com/avkuznetsov/eventdesk/internal/repository"
)

// TaskService — реестр задач.
type TaskService struct {
	tasks  repository.TaskRepository
	events repository.EventRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// NewTaskService создаёт реестр задач.
func NewTaskService(
	tasks repository.TaskRepository,
	events repository.EventRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		tasks:  tasks,
		events: events,
		users:  users,
		logger: logger.With(slog.String("component", "task_service")),
	}
}

// TaskCreate — данные новой задачи.
type TaskCreate struct {
	Name        string
	Description string
	Status      string
	DueDate     time.Time
	AssignedTo  string
	EventID     string
	Priority    string
}

// TaskPatch — частичное обновление задачи.
// EventID присутствует только чтобы отвергнуть попытку его смены:
// привязка к событию неизменяема после создания.
type TaskPatch struct {
	Name        *string
	Description *string
	Status      *string
	DueDate     *time.Time
	AssignedTo  *string
	EventID     *string
	Priority    *string
}

// Create создаёт задачу и пополняет task_ids родительского события.
// Отсутствующее или удалённое событие → ErrEventNotFound, задача при
// этом не сохраняется. Сбой пополнения после вставки → ErrPartialFailure.
func (s *TaskService) Create(ctx context.Context, actor Actor, in TaskCreate) (*model.Task, error) {
	if !rbac.Authorize(actor.Role, rbac.ActionCreate, rbac.ResourceTask) {
		return nil, ErrForbidden
	}

	var problems []string
	if in.Name == "" {
		problems = append(problems, "name обязательно")
	}
	if in.DueDate.IsZero() {
		problems = append(problems, "due_date обязателен")
	} else if !in.DueDate.After(time.Now()) {
		problems = append(problems, "due_date должен быть в будущем")
	}
	if in.AssignedTo == "" {
		problems = append(problems, "assigned_to обязателен")
	} else if !isUUID(in.AssignedTo) {
		problems = append(problems, fmt.Sprintf("assigned_to: некорректный UUID %q", in.AssignedTo))
	}
	if in.EventID == "" {
		problems = append(problems, "event_id обязателен")
	} else if !isUUID(in.EventID) {
		problems = append(problems, fmt.Sprintf("event_id: некорректный UUID %q", in.EventID))
	}
	if in.Status == "" {
		in.Status = model.ProgressNotStarted
	} else if !model.IsValidProgress(in.Status) {
		problems = append(problems, fmt.Sprintf("недопустимый status %q", in.Status))
	}
	if in.Priority == "" {
		in.Priority = model.PriorityLow
	} else if !model.IsValidPriority(in.Priority) {
		problems = append(problems, fmt.Sprintf("недопустимый priority %q", in.Priority))
	}
	if len(problems) > 0 {
		return nil, NewValidationError(problems...)
	}

	// Родительское событие проверяется до вставки: задачу нельзя
	// привязать к отсутствующему или удалённому событию.
	event, err := s.events.GetByID(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("проверка события: %w", err)
	}
	if event.Deleted {
		return nil, ErrEventNotFound
	}

	exists, err := s.users.ExistsByID(ctx, in.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("проверка исполнителя: %w", err)
	}
	if !exists {
		return nil, NewValidationError(fmt.Sprintf("assigned_to: пользователь %q не найден", in.AssignedTo))
	}

	t := &model.Task{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.DueDate,
		AssignedTo:  in.AssignedTo,
		EventID:     in.EventID,
		Priority:    in.Priority,
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("сохранение задачи: %w", err)
	}

	// Второй шаг: обратная ссылка в событии. Сбой здесь оставляет
	// задачу без обратной ссылки, поэтому оба ID попадают в лог
	// для последующей сверки.
	if err := s.events.AppendTaskID(ctx, in.EventID, t.ID); err != nil {
		s.logger.Error("Задача создана без обратной ссылки в событии",
			slog.String("task_id", t.ID),
			slog.String("event_id", in.EventID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: task_id=%s event_id=%s", ErrPartialFailure, t.ID, in.EventID)
	}

	s.logger.Info("Задача создана",
		slog.String("task_id", t.ID),
		slog.String("event_id", in.EventID),
		slog.String("created_by", actor.UserID),
	)

	return t, nil
}

// Get возвращает задачу с учётом правил видимости.
func (s *TaskService) Get(ctx context.Context, actor Actor, id string) (*model.Task, error) {
	if !rbac.Authorize(actor.Role, rbac.ActionRead, rbac.ResourceTask) {
		return nil, ErrForbidden
	}
	return s.visibleTask(ctx, actor, id)
}

// ListByEvent возвращает задачи события в порядке создания.
// Отсутствующее событие → ErrEventNotFound. Удалённые задачи
// включаются только для Admin.
func (s *TaskService) ListByEvent(ctx context.Context, actor Actor, eventID string) ([]*model.Task, error) {
	if !rbac.Authorize(actor.Role, rbac.ActionRead, rbac.ResourceTask) {
		return nil, ErrForbidden
	}
	if eventID == "" {
		return nil, NewValidationError("event_id обязателен")
	}
	if !isUUID(eventID) {
		return nil, ErrEventNotFound
	}

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("проверка события: %w", err)
	}

	tasks, err := s.tasks.ListByEvent(ctx, eventID, actor.Role == model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("получение списка задач: %w", err)
	}
	return tasks, nil
}

// Update применяет частичное обновление. Попытка сменить event_id
// отвергается до обращения к хранилищу.
func (s *TaskService) Update(ctx context.Context, actor Actor, id string, patch TaskPatch) (*model.Task, error) {
	if !rbac.Authorize(actor.Role, rbac.ActionUpdate, rbac.ResourceTask) {
		return nil, ErrForbidden
	}
	if patch.EventID != nil {
		return nil, NewValidationError("event_id неизменяем после создания")
	}

	t, err := s.visibleTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var problems []string
	if patch.Name != nil {
		if *patch.Name == "" {
			problems = append(problems, "name не может быть пустым")
		} else {
			t.Name = *patch.Name
		}
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		if !model.IsValidProgress(*patch.Status) {
			problems = append(problems, fmt.Sprintf("недопустимый status %q", *patch.Status))
		} else {
			t.Status = *patch.Status
		}
	}
	if patch.Priority != nil {
		if !model.IsValidPriority(*patch.Priority) {
			problems = append(problems, fmt.Sprintf("недопустимый priority %q", *patch.Priority))
		} else {
			t.Priority = *patch.Priority
		}
	}
	if patch.DueDate != nil {
		if patch.DueDate.IsZero() {
			problems = append(problems, "due_date не может быть пустым")
		} else {
			t.DueDate = *patch.DueDate
		}
	}
	if patch.AssignedTo != nil {
		if !isUUID(*patch.AssignedTo) {
			problems = append(problems, fmt.Sprintf("assigned_to: некорректный UUID %q", *patch.AssignedTo))
		} else if exists, err := s.users.ExistsByID(ctx, *patch.AssignedTo); err != nil {
			return nil, fmt.Errorf("проверка исполнителя: %w", err)
		} else if !exists {
			problems = append(problems, fmt.Sprintf("assigned_to: пользователь %q не найден", *patch.AssignedTo))
		} else {
			t.AssignedTo = *patch.AssignedTo
		}
	}
	if len(problems) > 0 {
		return nil, NewValidationError(problems...)
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	s.logger.Info("Задача обновлена",
		slog.String("task_id", t.ID),
		slog.String("updated_by", actor.UserID),
	)

	return t, nil
}

// Delete мягко удаляет задачу. Идемпотентна. ID задачи остаётся
// в task_ids события: список отражает все когда-либо созданные задачи.
func (s *TaskService) Delete(ctx context.Context, actor Actor, id string) (*model.Task, error) {
	if !rbac.Authorize(actor.Role, rbac.ActionDelete, rbac.ResourceTask) {
		return nil, ErrForbidden
	}
	if !isUUID(id) {
		return nil, ErrNotFound
	}

	t, err := s.tasks.SoftDelete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("удаление задачи: %w", err)
	}

	s.logger.Info("Задача удалена",
		slog.String("task_id", id),
		slog.String("deleted_by", actor.UserID),
	)

	return t, nil
}

// visibleTask возвращает задачу, если она видима для actor:
// удалённые записи видят только аудиторские роли.
func (s *TaskService) visibleTask(ctx context.Context, actor Actor, id string) (*model.Task, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	if t.Deleted && !rbac.CanAudit(actor.Role) {
		return nil, ErrNotFound
	}
	return t, nil
}

// events.go — реестр событий.
// Каждая операция сначала проходит таблицу доступа, затем правила
// видимости и только потом обращается к хранилищу.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avkuznetsov/eventdesk/internal/domain/model"
	"github.com/avkuznetsov/eventdesk/internal/domain/rbac"
	"github.com/avkuznetsov/eventdesk/internal/repository"
)

// EventService — реестр событий.
type EventService struct {
	events repository.EventRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// NewEventService создаёт реестр событий.
func NewEventService(events repository.EventRepository, users repository.UserRepository, logger *slog.Logger) *EventService {
	return &EventService{
		events: events,
		users:  users,
		logger: logger.With(slog.String("component", "event_service")),
	}
}

// EventCreate — данные нового события.
type EventCreate struct {
	Name           string
	Description    string
	SupervisorID   string
	EventManagerID string
	ClientID       string
}

// EventPatch — частичное обновление события.
// Nil-поля не меняются. Флага deleted здесь нет: удаление — отдельная
// операция, обойти её через update невозможно по построению.
type EventPatch struct {
	Name           *string
	Description    *string
	SupervisorID   *string
	EventManagerID *string
	ClientID       *string
	Progress       *string
}

// EventListInput — параметры списка событий.
type EventListInput struct {
	SupervisorID   *string
	EventManagerID *string
	ClientID       *string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// Create создаёт событие с пустым списком задач и прогрессом NotStarted.
func (s *EventService) Create(ctx context.Context, actor Actor, in EventCreate) (*model.Event, error) {
	if !rbac.Authorize(actor.Role, rbac.ActionCreate, rbac.ResourceEvent) {
		return nil, ErrForbidden
	}

	var problems []string
	if in.Name == "" {
		problems = append(problems, "name обязательно")
	}
	if in.Description == "" {
		problems = append(problems, "description обязательно")
	}
	if in.SupervisorID == "" {
		problems = append(problems, "supervisor_id обязателен")
	}
	if in.EventManagerID == "" {
		problems = append(problems, "event_manager_id обязателен")
	}
	if in.ClientID == "" {
		problems = append(problems, "client_id обязателен")
	}
	if len(problems) > 0 {
		return nil, NewValidationError(problems...)
	}

	// Участники должны существовать
	refs := []struct{ field, id string }{
		{"supervisor_id", in.SupervisorID},
		{"event_manager_id", in.EventManagerID},
		{"client_id", in.ClientID},
	}
	for _, ref := range refs {
		if !isUUID(ref.id) {
			problems = append(problems, fmt.Sprintf("%s: некорректный UUID %q", ref.field, ref.id))
			continue
		}
		exists, err := s.users.ExistsByID(ctx, ref.id)
		if err != nil {
			return nil, fmt.Errorf("проверка пользователя %s: %w", ref.field, err)
		}
		if !exists {
			problems = append(problems, fmt.Sprintf("%s: пользователь %q не найден", ref.field, ref.id))
		}
	}
	if len(problems) > 0 {
		return nil, NewValidationError(problems...)
	}

	e := &model.Event{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Description:    in.Description,
		SupervisorID:   in.SupervisorID,
		EventManagerID: in.EventManagerID,
		ClientID:       in.ClientID,
		TaskIDs:        []string{},
		Progress:       model.ProgressNotStarted,
	}

	if err := s.events.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("сохранение события: %w", err)
	}

	s.logger.Info("Событие создано",
		slog.String("event_id", e.ID),
		slog.String("name", e.Name),
		slog.String("created_by", actor.UserID),
	)

	return e, nil
}

// Get возвращает событие с учётом правил видимости.
// Скрытое и отсутствующее событие для вызывающего неразличимы.
func (s *EventService) Get(ctx context.Context, actor Actor, id string) (*model.Event, error) {
	if !rbac.Authorize(actor.Role, rbac.ActionRead, rbac.ResourceEvent) {
		return nil, ErrForbidden
	}
	return s.visibleEvent(ctx, actor, id)
}

// List возвращает страницу событий и общее количество.
// Client всегда ограничен собственными событиями, include_deleted
// действует только для Admin.
func (s *EventService) List(ctx context.Context, actor Actor, in EventListInput) ([]*model.Event, int, error) {
	if !rbac.Authorize(actor.Role, rbac.ActionRead, rbac.ResourceEvent) {
		return nil, 0, ErrForbidden
	}

	filters := []struct {
		name  string
		value *string
	}{
		{"supervisor_id", in.SupervisorID},
		{"event_manager_id", in.EventManagerID},
		{"client_id", in.ClientID},
	}
	for _, p := range filters {
		if p.value != nil && !isUUID(*p.value) {
			return nil, 0, NewValidationError(fmt.Sprintf("%s: некорректный UUID %q", p.name, *p.value))
		}
	}

	f := repository.EventFilter{
		SupervisorID:   in.SupervisorID,
		EventManagerID: in.EventManagerID,
		ClientID:       in.ClientID,
		IncludeDeleted: in.IncludeDeleted && actor.Role == model.RoleAdmin,
	}
	if actor.Role == model.RoleClient {
		f.ClientID = &actor.UserID
	}

	events, err := s.events.List(ctx, f, in.Limit, in.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("получение списка событий: %w", err)
	}
	total, err := s.events.Count(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("подсчёт событий: %w", err)
	}
	return events, total, nil
}

// Update применяет частичное обновление. Видимость как у Get:
// недоступное для чтения событие недоступно и для записи.
func (s *EventService) Update(ctx context.Context, actor Actor, id string, patch EventPatch) (*model.Event, error) {
	if !rbac.Authorize(actor.Role, rbac.ActionUpdate, rbac.ResourceEvent) {
		return nil, ErrForbidden
	}

	e, err := s.visibleEvent(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var problems []string
	if patch.Name != nil {
		if *patch.Name == "" {
			problems = append(problems, "name не может быть пустым")
		} else {
			e.Name = *patch.Name
		}
	}
	if patch.Description != nil {
		if *patch.Description == "" {
			problems = append(problems, "description не может быть пустым")
		} else {
			e.Description = *patch.Description
		}
	}
	if patch.Progress != nil {
		if !model.IsValidProgress(*patch.Progress) {
			problems = append(problems, fmt.Sprintf("недопустимый progress %q", *patch.Progress))
		} else {
			e.Progress = *patch.Progress
		}
	}
	refs := []struct {
		field string
		value *string
		dst   *string
	}{
		{"supervisor_id", patch.SupervisorID, &e.SupervisorID},
		{"event_manager_id", patch.EventManagerID, &e.EventManagerID},
		{"client_id", patch.ClientID, &e.ClientID},
	}
	for _, ref := range refs {
		if ref.value == nil {
			continue
		}
		if !isUUID(*ref.value) {
			problems = append(problems, fmt.Sprintf("%s: некорректный UUID %q", ref.field, *ref.value))
			continue
		}
		exists, err := s.users.ExistsByID(ctx, *ref.value)
		if err != nil {
			return nil, fmt.Errorf("проверка пользователя %s: %w", ref.field, err)
		}
		if !exists {
			problems = append(problems, fmt.Sprintf("%s: пользователь %q не найден", ref.field, *ref.value))
			continue
		}
		*ref.dst = *ref.value
	}
	if len(problems) > 0 {
		return nil, NewValidationError(problems...)
	}

	if err := s.events.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление события: %w", err)
	}

	s.logger.Info("Событие обновлено",
		slog.String("event_id", e.ID),
		slog.String("updated_by", actor.UserID),
	)

	return e, nil
}

// Delete мягко удаляет событие. Идемпотентна: повторное удаление
// возвращает запись без изменений. Задачи события не затрагиваются.
func (s *EventService) Delete(ctx context.Context, actor Actor, id string) (*model.Event, error) {
	if !rbac.Authorize(actor.Role, rbac.ActionDelete, rbac.ResourceEvent) {
		return nil, ErrForbidden
	}
	if !isUUID(id) {
		return nil, ErrNotFound
	}

	e, err := s.events.SoftDelete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("удаление события: %w", err)
	}

	s.logger.Info("Событие удалено",
		slog.String("event_id", id),
		slog.String("deleted_by", actor.UserID),
	)

	return e, nil
}

// visibleEvent возвращает событие, если оно видимо для actor:
// удалённые записи видят только аудиторские роли, Client видит
// только собственные события.
func (s *EventService) visibleEvent(ctx context.Context, actor Actor, id string) (*model.Event, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение события: %w", err)
	}
	if e.Deleted && !rbac.CanAudit(actor.Role) {
		return nil, ErrNotFound
	}
	if actor.Role == model.RoleClient && e.ClientID != actor.UserID {
		return nil, ErrNotFound
	}
	return e, nil
}

// isUUID проверяет, что строка — корректный UUID. Идентификаторы из
// пути и фильтров не доходят до SQL-запросов в произвольном виде:
// для uuid-колонок это ошибка типа, а не "запись не найдена".
func isUUID(s string) bool {
	return uuid.Validate(s) == nil
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/avkuznetsov/eventdesk/internal/domain/model"
)

// EventFilter — фильтрация списка событий.
// Nil-поля не участвуют в фильтре. Мягко удалённые записи исключаются,
// если не взведён IncludeDeleted.
type EventFilter struct {
	SupervisorID   *string
	EventManagerID *string
	ClientID       *string
	IncludeDeleted bool
}

// EventRepository — доступ к таблице events.
type EventRepository interface {
	// Create создаёт новое событие.
	Create(ctx context.Context, e *model.Event) error
	// GetByID возвращает событие по UUID независимо от флага deleted —
	// видимость решает вызывающий слой.
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// List возвращает события по фильтру.
	List(ctx context.Context, f EventFilter, limit, offset int) ([]*model.Event, error)
	// Count возвращает количество событий по фильтру.
	Count(ctx context.Context, f EventFilter) (int, error)
	// Update обновляет изменяемые поля события.
	Update(ctx context.Context, e *model.Event) error
	// SoftDelete взводит флаг deleted и возвращает запись.
	// Идемпотентна: повторный вызов возвращает запись без изменений.
	SoftDelete(ctx context.Context, id string) (*model.Event, error)
	// AppendTaskID атомарно добавляет ID задачи в task_ids (add-to-set).
	// Повторное добавление того же ID — no-op. ErrNotFound, если события нет.
	AppendTaskID(ctx context.Context, eventID, taskID string) error
}

// eventRepo — реализация EventRepository.
type eventRepo struct {
	db DBTX
}

// NewEventRepository создаёт репозиторий событий.
func NewEventRepository(db DBTX) EventRepository {
	return &eventRepo{db: db}
}

const eventColumns = `id, name, description, supervisor_id, event_manager_id, client_id,
	task_ids, progress, deleted, created_at, updated_at`

func (r *eventRepo) Create(ctx context.Context, e *model.Event) error {
	query := `
		INSERT INTO events (id, name, description, supervisor_id, event_manager_id, client_id, progress)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		e.ID, e.Name, e.Description, e.SupervisorID, e.EventManagerID, e.ClientID, e.Progress,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания события: %w", err)
	}
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.db.QueryRow(ctx, query, id))
}

func (r *eventRepo) List(ctx context.Context, f EventFilter, limit, offset int) ([]*model.Event, error) {
	where, args := buildEventWhere(f)
	query := fmt.Sprintf(`
		SELECT `+eventColumns+`
		FROM events
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка событий: %w", err)
	}
	defer rows.Close()

	var result []*model.Event
	for rows.Next() {
		e, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *eventRepo) Count(ctx context.Context, f EventFilter) (int, error) {
	where, args := buildEventWhere(f)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM events %s`, where)

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта событий: %w", err)
	}
	return count, nil
}

func (r *eventRepo) Update(ctx context.Context, e *model.Event) error {
	// Флаг deleted и task_ids через этот путь не меняются:
	// удаление — отдельная операция, task_ids пополняется только AppendTaskID.
	query := `
		UPDATE events
		SET name = $2, description = $3, supervisor_id = $4, event_manager_id = $5,
			client_id = $6, progress = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		e.ID, e.Name, e.Description, e.SupervisorID, e.EventManagerID, e.ClientID, e.Progress,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления события: %w", err)
	}
	return nil
}

func (r *eventRepo) SoftDelete(ctx context.Context, id string) (*model.Event, error) {
	// Идемпотентность: повторное удаление не трогает updated_at.
	query := `
		UPDATE events
		SET deleted = TRUE,
			updated_at = CASE WHEN deleted THEN updated_at ELSE now() END
		WHERE id = $1
		RETURNING ` + eventColumns

	e, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepo) AppendTaskID(ctx context.Context, eventID, taskID string) error {
	// Атомарный add-to-set: один UPDATE, никакого read-modify-write,
	// конкурентные создания задач не теряют записей, повтор — no-op.
	query := `
		UPDATE events
		SET task_ids = CASE WHEN $2::uuid = ANY(task_ids)
				THEN task_ids
				ELSE array_append(task_ids, $2::uuid) END,
			updated_at = CASE WHEN $2::uuid = ANY(task_ids)
				THEN updated_at
				ELSE now() END
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, eventID, taskID)
	if err != nil {
		return fmt.Errorf("ошибка пополнения task_ids: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildEventWhere собирает WHERE-часть запроса по фильтру.
func buildEventWhere(f EventFilter) (string, []any) {
	var conditions []string
	var args []any

	if !f.IncludeDeleted {
		conditions = append(conditions, "deleted = FALSE")
	}
	if f.SupervisorID != nil {
		args = append(args, *f.SupervisorID)
		conditions = append(conditions, fmt.Sprintf("supervisor_id = $%d", len(args)))
	}
	if f.EventManagerID != nil {
		args = append(args, *f.EventManagerID)
		conditions = append(conditions, fmt.Sprintf("event_manager_id = $%d", len(args)))
	}
	if f.ClientID != nil {
		args = append(args, *f.ClientID)
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// scanEvent сканирует одну запись события.
func scanEvent(row pgx.Row) (*model.Event, error) {
	e := &model.Event{}
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.SupervisorID, &e.EventManagerID, &e.ClientID,
		&e.TaskIDs, &e.Progress, &e.Deleted, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования события: %w", err)
	}
	return e, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/avkuznetsov/eventdesk/internal/domain/model"
)

// TaskRepository — доступ к таблице tasks.
type TaskRepository interface {
	// Create создаёт новую задачу.
	Create(ctx context.Context, t *model.Task) error
	// GetByID возвращает задачу по UUID независимо от флага deleted.
	GetByID(ctx context.Context, id string) (*model.Task, error)
	// ListByEvent возвращает задачи события.
	ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]*model.Task, error)
	// Update обновляет изменяемые поля задачи. event_id не обновляется.
	Update(ctx context.Context, t *model.Task) error
	// SoftDelete взводит флаг deleted и возвращает запись. Идемпотентна.
	SoftDelete(ctx context.Context, id string) (*model.Task, error)
}

// taskRepo — реализация TaskRepository.
type taskRepo struct {
	db DBTX
}

// NewTaskRepository создаёт репозиторий задач.
func NewTaskRepository(db DBTX) TaskRepository {
	return &taskRepo{db: db}
}

const taskColumns = `id, name, description, status, due_date, assigned_to, event_id,
	priority, deleted, created_at, updated_at`

func (r *taskRepo) Create(ctx context.Context, t *model.Task) error {
	query := `
		INSERT INTO tasks (id, name, description, status, due_date, assigned_to, event_id, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		t.ID, t.Name, t.Description, t.Status, t.DueDate, t.AssignedTo, t.EventID, t.Priority,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания задачи: %w", err)
	}
	return nil
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.QueryRow(ctx, query, id))
}

func (r *taskRepo) ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE event_id = $1`
	if !includeDeleted {
		query += ` AND deleted = FALSE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка задач: %w", err)
	}
	defer rows.Close()

	var result []*model.Task
	for rows.Next() {
		t, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *taskRepo) Update(ctx context.Context, t *model.Task) error {
	// event_id намеренно отсутствует в SET: прямая ссылка на родителя неизменяема.
	query := `
		UPDATE tasks
		SET name = $2, description = $3, status = $4, due_date = $5,
			assigned_to = $6, priority = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		t.ID, t.Name, t.Description, t.Status, t.DueDate, t.AssignedTo, t.Priority,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления задачи: %w", err)
	}
	return nil
}

func (r *taskRepo) SoftDelete(ctx context.Context, id string) (*model.Task, error) {
	query := `
		UPDATE tasks
		SET deleted = TRUE,
			updated_at = CASE WHEN deleted THEN updated_at ELSE now() END
		WHERE id = $1
		RETURNING ` + taskColumns

	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return t, nil
}

// scanTask сканирует одну запись задачи.
func scanTask(row pgx.Row) (*model.Task, error) {
	t := &model.Task{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Status, &t.DueDate, &t.AssignedTo, &t.EventID,
		&t.Priority, &t.Deleted, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования задачи: %w", err)
	}
	return t, nil
}

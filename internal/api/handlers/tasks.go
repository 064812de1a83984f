// tasks.go — обработчики реестра задач.
// POST   /api/v1/tasks           — создание (двухшаговая операция)
// GET    /api/v1/tasks?event_id= — задачи события
// GET    /api/v1/tasks/{id}      — получение
// PUT    /api/v1/tasks/{id}      — частичное обновление
// DELETE /api/v1/tasks/{id}      — мягкое удаление
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/avkuznetsov/eventdesk/internal/api/errors"
	"github.com/avkuznetsov/eventdesk/internal/domain/model"
	"github.com/avkuznetsov/eventdesk/internal/service"
)

// taskPayload — задача в ответах API.
type taskPayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"due_date"`
	AssignedTo  string    `json:"assigned_to"`
	EventID     string    `json:"event_id"`
	Priority    string    `json:"priority"`
	Deleted     bool      `json:"deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTaskPayload(t *model.Task) taskPayload {
	return taskPayload{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		AssignedTo:  t.AssignedTo,
		EventID:     t.EventID,
		Priority:    t.Priority,
		Deleted:     t.Deleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// taskResponse — ответ с одной задачей.
type taskResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Task    taskPayload `json:"task"`
}

// taskListResponse — ответ со списком задач.
type taskListResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Tasks   []taskPayload `json:"tasks"`
}

// createTaskRequest — тело запроса создания задачи.
type createTaskRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"due_date"`
	AssignedTo  string    `json:"assigned_to"`
	EventID     string    `json:"event_id"`
	Priority    string    `json:"priority"`
}

// updateTaskRequest — тело запроса обновления задачи.
// event_id принимается только для того, чтобы отклонить попытку
// его смены осмысленной ошибкой валидации.
type updateTaskRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	AssignedTo  *string    `json:"assigned_to"`
	EventID     *string    `json:"event_id"`
	Priority    *string    `json:"priority"`
}

// CreateTask — POST /api/v1/tasks.
func (h *APIHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	var req createTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := h.tasks.Create(r.Context(), actor, service.TaskCreate{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		EventID:     req.EventID,
		Priority:    req.Priority,
	})
	if err != nil {
		h.writeServiceError(w, err, "Задача не найдена")
		return
	}

	writeJSON(w, http.StatusCreated, taskResponse{
		Success: true,
		Message: "Задача создана",
		Task:    toTaskPayload(t),
	})
}

// ListTasks — GET /api/v1/tasks?event_id=.
func (h *APIHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	tasks, err := h.tasks.ListByEvent(r.Context(), actor, r.URL.Query().Get("event_id"))
	if err != nil {
		h.writeServiceError(w, err, "Задача не найдена")
		return
	}

	payload := make([]taskPayload, 0, len(tasks))
	for _, t := range tasks {
		payload = append(payload, toTaskPayload(t))
	}

	writeJSON(w, http.StatusOK, taskListResponse{
		Success: true,
		Message: "Список задач",
		Tasks:   payload,
	})
}

// GetTask — GET /api/v1/tasks/{id}.
func (h *APIHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	t, err := h.tasks.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "Задача не найдена")
		return
	}

	writeJSON(w, http.StatusOK, taskResponse{
		Success: true,
		Message: "Задача",
		Task:    toTaskPayload(t),
	})
}

// UpdateTask — PUT /api/v1/tasks/{id}.
func (h *APIHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	var req updateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := h.tasks.Update(r.Context(), actor, chi.URLParam(r, "id"), service.TaskPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		EventID:     req.EventID,
		Priority:    req.Priority,
	})
	if err != nil {
		h.writeServiceError(w, err, "Задача не найдена")
		return
	}

	writeJSON(w, http.StatusOK, taskResponse{
		Success: true,
		Message: "Задача обновлена",
		Task:    toTaskPayload(t),
	})
}

// DeleteTask — DELETE /api/v1/tasks/{id}.
func (h *APIHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	t, err := h.tasks.Delete(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "Задача не найдена")
		return
	}

	writeJSON(w, http.StatusOK, taskResponse{
		Success: true,
		Message: "Задача удалена",
		Task:    toTaskPayload(t),
	})
}

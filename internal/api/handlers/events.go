// events.go — обработчики реестра событий.
// POST   /api/v1/events      — создание
// GET    /api/v1/events      — список с фильтрами и пагинацией
// GET    /api/v1/events/{id} — получение
// PUT    /api/v1/events/{id} — частичное обновление
// DELETE /api/v1/events/{id} — мягкое удаление
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/avkuznetsov/eventdesk/internal/api/errors"
	"github.com/avkuznetsov/eventdesk/internal/domain/model"
	"github.com/avkuznetsov/eventdesk/internal/service"
)

// eventPayload — событие в ответах API.
type eventPayload struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	SupervisorID   string    `json:"supervisor_id"`
	EventManagerID string    `json:"event_manager_id"`
	ClientID       string    `json:"client_id"`
	TaskIDs        []string  `json:"task_ids"`
	Progress       string    `json:"progress"`
	Deleted        bool      `json:"deleted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toEventPayload(e *model.Event) eventPayload {
	taskIDs := e.TaskIDs
	if taskIDs == nil {
		taskIDs = []string{}
	}
	return eventPayload{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		SupervisorID:   e.SupervisorID,
		EventManagerID: e.EventManagerID,
		ClientID:       e.ClientID,
		TaskIDs:        taskIDs,
		Progress:       e.Progress,
		Deleted:        e.Deleted,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// eventResponse — ответ с одним событием.
type eventResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Event   eventPayload `json:"event"`
}

// eventListResponse — ответ со списком событий.
type eventListResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Events  []eventPayload `json:"events"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// createEventRequest — тело запроса создания события.
type createEventRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	SupervisorID   string `json:"supervisor_id"`
	EventManagerID string `json:"event_manager_id"`
	ClientID       string `json:"client_id"`
}

// updateEventRequest — тело запроса обновления события.
// Nil-поля не меняются.
type updateEventRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	SupervisorID   *string `json:"supervisor_id"`
	EventManagerID *string `json:"event_manager_id"`
	ClientID       *string `json:"client_id"`
	Progress       *string `json:"progress"`
}

// CreateEvent — POST /api/v1/events.
func (h *APIHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	var req createEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	e, err := h.events.Create(r.Context(), actor, service.EventCreate{
		Name:           req.Name,
		Description:    req.Description,
		SupervisorID:   req.SupervisorID,
		EventManagerID: req.EventManagerID,
		ClientID:       req.ClientID,
	})
	if err != nil {
		h.writeServiceError(w, err, "Событие не найдено")
		return
	}

	writeJSON(w, http.StatusCreated, eventResponse{
		Success: true,
		Message: "Событие создано",
		Event:   toEventPayload(e),
	})
}

// ListEvents — GET /api/v1/events.
func (h *APIHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	limit, offset := paginationFromQuery(r)
	in := service.EventListInput{
		SupervisorID:   optionalQuery(r, "supervisor_id"),
		EventManagerID: optionalQuery(r, "event_manager_id"),
		ClientID:       optionalQuery(r, "client_id"),
		IncludeDeleted: r.URL.Query().Get("include_deleted") == "true",
		Limit:          limit,
		Offset:         offset,
	}

	events, total, err := h.events.List(r.Context(), actor, in)
	if err != nil {
		h.writeServiceError(w, err, "Событие не найдено")
		return
	}

	payload := make([]eventPayload, 0, len(events))
	for _, e := range events {
		payload = append(payload, toEventPayload(e))
	}

	writeJSON(w, http.StatusOK, eventListResponse{
		Success: true,
		Message: "Список событий",
		Events:  payload,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

// GetEvent — GET /api/v1/events/{id}.
func (h *APIHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	e, err := h.events.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "Событие не найдено")
		return
	}

	writeJSON(w, http.StatusOK, eventResponse{
		Success: true,
		Message: "Событие",
		Event:   toEventPayload(e),
	})
}

// UpdateEvent — PUT /api/v1/events/{id}.
func (h *APIHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	var req updateEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	e, err := h.events.Update(r.Context(), actor, chi.URLParam(r, "id"), service.EventPatch{
		Name:           req.Name,
		Description:    req.Description,
		SupervisorID:   req.SupervisorID,
		EventManagerID: req.EventManagerID,
		ClientID:       req.ClientID,
		Progress:       req.Progress,
	})
	if err != nil {
		h.writeServiceError(w, err, "Событие не найдено")
		return
	}

	writeJSON(w, http.StatusOK, eventResponse{
		Success: true,
		Message: "Событие обновлено",
		Event:   toEventPayload(e),
	})
}

// DeleteEvent — DELETE /api/v1/events/{id}.
func (h *APIHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	e, err := h.events.Delete(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "Событие не найдено")
		return
	}

	writeJSON(w, http.StatusOK, eventResponse{
		Success: true,
		Message: "Событие удалено",
		Event:   toEventPayload(e),
	})
}

// auth.go — обработчики аутентификации и управления пользователями.
// POST /api/v1/auth/login — вход (публичный)
// GET  /api/v1/auth/me    — текущая identity
// POST /api/v1/auth/users — создание пользователя (только Admin)
package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/avkuznetsov/eventdesk/internal/api/errors"
	"github.com/avkuznetsov/eventdesk/internal/domain/model"
)

// userPayload — пользователь в ответах API. Хеш пароля не сериализуется.
type userPayload struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserPayload(u *model.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedBy: u.CreatedBy,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// loginRequest — тело запроса входа.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse — ответ успешного входа.
type loginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	Role    string      `json:"role"`
	User    userPayload `json:"user"`
}

// Login — POST /api/v1/auth/login.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, tok, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, err, "Пользователь не найден")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Вход выполнен",
		Token:   tok,
		Role:    u.Role,
		User:    toUserPayload(u),
	})
}

// userResponse — ответ с одним пользователем.
type userResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    userPayload `json:"user"`
}

// Me — GET /api/v1/auth/me.
func (h *APIHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	u, err := h.auth.Me(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, err, "Пользователь не найден")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Success: true,
		Message: "Текущий пользователь",
		User:    toUserPayload(u),
	})
}

// createUserRequest — тело запроса создания пользователя.
type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser — POST /api/v1/auth/users.
func (h *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.auth.CreateUser(r.Context(), actor, req.Username, req.Password, req.Role)
	if err != nil {
		h.writeServiceError(w, err, "Пользователь не найден")
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		Success: true,
		Message: "Пользователь создан",
		User:    toUserPayload(u),
	})
}

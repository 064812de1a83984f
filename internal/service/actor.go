package service

// Actor — резолвленная identity вызывающего: пара {userID, role} из токена.
// Реестры никогда не видят сырые учётные данные или сам токен.
type Actor struct {
	// UserID — идентификатор пользователя.
	UserID string
	// Role — роль пользователя.
	Role string
}

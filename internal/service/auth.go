// auth.go — аутентификация и управление пользователями.
// Login выдаёт HS256-токен, CreateUser доступен только Admin.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avkuznetsov/eventdesk/internal/domain/model"
	"github.com/avkuznetsov/eventdesk/internal/domain/rbac"
	"github.com/avkuznetsov/eventdesk/internal/repository"
	"github.com/avkuznetsov/eventdesk/internal/token"
)

// bcryptCost — стоимость хеширования паролей.
const bcryptCost = 10

// minPasswordLength — минимальная длина пароля.
const minPasswordLength = 6

// AuthService — аутентификация и создание пользователей.
type AuthService struct {
	users  repository.UserRepository
	codec  *token.Codec
	logger *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users repository.UserRepository, codec *token.Codec, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		codec:  codec,
		logger: logger.With(slog.String("component", "auth_service")),
	}
}

// Login проверяет учётные данные и выдаёт токен сессии.
// Неизвестный username → ErrNotFound, неверный пароль → ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	var problems []string
	if username == "" {
		problems = append(problems, "username обязателен")
	}
	if password == "" {
		problems = append(problems, "password обязателен")
	}
	if len(problems) > 0 {
		return nil, "", NewValidationError(problems...)
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("поиск пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Неудачная попытка входа",
			slog.String("username", username),
		)
		return nil, "", ErrInvalidCredentials
	}

	tok, err := s.codec.Issue(u.ID, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("выдача токена: %w", err)
	}

	s.logger.Info("Пользователь вошёл в систему",
		slog.String("user_id", u.ID),
		slog.String("role", u.Role),
	)

	return u, tok, nil
}

// Me возвращает профиль пользователя по его ID из токена.
func (s *AuthService) Me(ctx context.Context, actor Actor) (*model.User, error) {
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение профиля: %w", err)
	}
	return u, nil
}

// CreateUser создаёт нового пользователя. Разрешено только Admin.
// Занятый username считается ошибкой валидации, а не конфликтом:
// вызывающий исправляет запрос, состояние сервера не виновато.
func (s *AuthService) CreateUser(ctx context.Context, actor Actor, username, password, role string) (*model.User, error) {
	if !rbac.Authorize(actor.Role, rbac.ActionCreate, rbac.ResourceUser) {
		return nil, ErrForbidden
	}

	var problems []string
	if username == "" {
		problems = append(problems, "username обязателен")
	}
	if password == "" {
		problems = append(problems, "password обязателен")
	} else if len(password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("password короче %d символов", minPasswordLength))
	}
	if role == "" {
		problems = append(problems, "role обязательна")
	} else if !rbac.IsValidRole(role) {
		problems = append(problems, fmt.Sprintf("недопустимая роль %q", role))
	}
	if len(problems) > 0 {
		return nil, NewValidationError(problems...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedBy:    &actor.UserID,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, NewValidationError(fmt.Sprintf("username %q уже занят", username))
		}
		return nil, fmt.Errorf("сохранение пользователя: %w", err)
	}

	s.logger.Info("Пользователь создан",
		slog.String("user_id", u.ID),
		slog.String("username", username),
		slog.String("role", role),
		slog.String("created_by", actor.UserID),
	)

	return u, nil
}

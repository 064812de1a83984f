// provision.go — идемпотентный bootstrap администратора.
// На пустой базе создаётся первый Admin из конфигурации, иначе
// операции над пользователями были бы недостижимы: CreateUser
// доступен только Admin.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avkuznetsov/eventdesk/internal/domain/model"
	"github.com/avkuznetsov/eventdesk/internal/repository"
)

// ProvisionAdmin создаёт bootstrap-администратора, если в базе нет
// ни одного пользователя с ролью Admin. Повторные запуски — no-op.
func ProvisionAdmin(ctx context.Context, users repository.UserRepository, username, password string, logger *slog.Logger) error {
	log := logger.With(slog.String("component", "provision"))

	exists, err := users.ExistsByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("проверка наличия администратора: %w", err)
	}
	if exists {
		log.Debug("Администратор уже существует, провижининг пропущен")
		return nil
	}

	if password == "" {
		return fmt.Errorf("в базе нет ни одного Admin: задайте ED_ADMIN_PASSWORD для первого запуска")
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("пароль администратора короче %d символов", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("хеширование пароля администратора: %w", err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}

	if err := users.Create(ctx, u); err != nil {
		// Гонка двух параллельных запусков: username уже занят,
		// администратор создан другим экземпляром.
		if errors.Is(err, repository.ErrConflict) {
			log.Info("Администратор создан параллельным экземпляром")
			return nil
		}
		return fmt.Errorf("создание администратора: %w", err)
	}

	log.Info("Bootstrap-администратор создан",
		slog.String("user_id", u.ID),
		slog.String("username", username),
	)
	return nil
}

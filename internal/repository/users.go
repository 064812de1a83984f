package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/avkuznetsov/eventdesk/internal/domain/model"
)

// UserRepository — доступ к таблице users.
// Пользователи создаются и читаются, но никогда не удаляются.
type UserRepository interface {
	// Create создаёт нового пользователя.
	Create(ctx context.Context, u *model.User) error
	// GetByID возвращает пользователя по UUID.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByUsername возвращает пользователя по точному имени (case-sensitive).
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// ExistsByID проверяет существование пользователя.
	ExistsByID(ctx context.Context, id string) (bool, error)
	// ExistsByRole проверяет, есть ли хотя бы один пользователь с ролью.
	ExistsByRole(ctx context.Context, role string) (bool, error)
}

// userRepo — реализация UserRepository.
type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, username, password_hash, role, created_by, created_at, updated_at`

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, role, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedBy,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username уже занят", ErrConflict)
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, username))
}

func (r *userRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки пользователя: %w", err)
	}
	return exists, nil
}

func (r *userRepo) ExistsByRole(ctx context.Context, role string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`, role).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки роли: %w", err)
	}
	return exists, nil
}

// scanOne сканирует одну запись пользователя.
func (r *userRepo) scanOne(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedBy, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

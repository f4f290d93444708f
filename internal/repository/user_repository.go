package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cookie-auth-server/config"
	"cookie-auth-server/internal/model"
	"cookie-auth-server/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя
// Уникальность email обеспечивает ограничение БД, нарушение возвращается как model.ErrDuplicateEmail
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, email, password_hash, is_active)
	VALUES ($1, $2, $3, $4)
	RETURNING uuid, email, password_hash, is_active, created_at
	`

	createdUser := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query, user.UUID, user.Email, user.PasswordHash, user.IsActive).StructScan(createdUser)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrDuplicateEmail
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, is_active, created_at FROM users WHERE uuid = $1`
	return r.findOne(ctx, query, uuid)
}

// FindByEmail : ищет пользователя по email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, is_active, created_at FROM users WHERE email = $1`
	return r.findOne(ctx, query, email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (*model.User, error) {
	var user model.User
	err := sqlx.GetContext(ctx, r.DB, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("[UserRepo] пользователь %s: %w", arg, model.ErrNotFound)
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// EmailExists : проверяет, занят ли email
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	err := sqlx.GetContext(ctx, r.DB, &exists, query, email)
	if err != nil {
		return false, util.LogError("[UserRepo] ошибка проверки существования email", err)
	}
	return exists, nil
}

// UpdateEmail : изменяет email, единственное поле профиля, доступное для изменения
func (r *UserRepository) UpdateEmail(ctx context.Context, uuid, email string) error {
	query := `UPDATE users SET email = $2 WHERE uuid = $1`
	result, err := r.DB.ExecContext(ctx, query, uuid, email)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateEmail
		}
		return util.LogError("[UserRepo] не удалось обновить пользователя", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[UserRepo] не удалось проверить обновление пользователя", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("[UserRepo] пользователь %s: %w", uuid, model.ErrNotFound)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

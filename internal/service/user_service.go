package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cookie-auth-server/internal/model"
	"cookie-auth-server/internal/model/requestresponse"
	"cookie-auth-server/internal/ports"
	"cookie-auth-server/internal/security"
	"cookie-auth-server/internal/util"

	"github.com/google/uuid"
)

type UserService struct {
	userRepository ports.UserRepository
}

func NewUserService(userRepository ports.UserRepository) *UserService {
	return &UserService{userRepository: userRepository}
}

// Register создает пользователя. Вход после регистрации не выполняется
func (s *UserService) Register(ctx context.Context, email string, password string) (*model.User, error) {
	email = normalizeEmail(email)

	// bcrypt учитывает только первые 72 байта, отсюда maxbytes в тегах
	if fields := util.ValidateStruct(requestresponse.RegisterRequest{Email: email, Password: password}); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	exists, err := s.userRepository.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("[UserService] %w: %w", ErrPersistence, err)
	}
	if exists {
		return nil, newValidationError("email", model.ErrDuplicateEmail.Error())
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}

	created, err := s.userRepository.CreateUser(ctx, &model.User{
		UUID:         uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		// гонка двух регистраций: проверку выше прошли обе, уникальный индекс пропустил одну
		if errors.Is(err, model.ErrDuplicateEmail) {
			return nil, newValidationError("email", model.ErrDuplicateEmail.Error())
		}
		return nil, fmt.Errorf("[UserService] %w: %w", ErrPersistence, err)
	}

	return created, nil
}

// Authenticate проверяет email и пароль
// Для неизвестного email тоже выполняется сравнение bcrypt, чтобы ответ не выдавал существование пользователя
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepository.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			security.BurnPasswordCheck(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("[UserService] %w: %w", ErrPersistence, err)
	}

	if !security.CheckPassword(password, user.PasswordHash) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, uuid string) (*model.User, error) {
	user, err := s.userRepository.FindByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("[UserService] %w: %w", ErrPersistence, err)
	}
	return user, nil
}

// UpdateProfile меняет только разрешенные поля. Сейчас это email
func (s *UserService) UpdateProfile(ctx context.Context, uuid string, email *string) (*model.User, error) {
	user, err := s.GetProfile(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if email == nil {
		return user, nil
	}

	newEmail := normalizeEmail(*email)
	if fields := util.ValidateStruct(requestresponse.UpdateProfileRequest{Email: &newEmail}); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	if newEmail == user.Email {
		return user, nil
	}

	exists, err := s.userRepository.EmailExists(ctx, newEmail)
	if err != nil {
		return nil, fmt.Errorf("[UserService] %w: %w", ErrPersistence, err)
	}
	if exists {
		return nil, newValidationError("email", model.ErrDuplicateEmail.Error())
	}

	if err := s.userRepository.UpdateEmail(ctx, uuid, newEmail); err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			return nil, newValidationError("email", model.ErrDuplicateEmail.Error())
		}
		return nil, fmt.Errorf("[UserService] %w: %w", ErrPersistence, err)
	}

	user.Email = newEmail
	return user, nil
}

// normalizeEmail приводит домен к нижнему регистру, локальная часть сохраняется как есть
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/campus-lostfound/internal/logger"
	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
	"github.com/ignatzorin/campus-lostfound/internal/validation"
)

// UserRepository описывает зависимости сервисов от таблицы пользователей.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindOrCreate(ctx context.Context, email, name, role string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) (*models.User, error)
}

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	repo         UserRepository
	tokenManager *TokenManager
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	CampusID *string
}

// LoginInput содержит данные для входа. Пароль необязателен, пока он не задан у пользователя.
type LoginInput struct {
	Email    string
	Name     string
	Password string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *models.User `json:"user"`
	TokenPair *TokenPair   `json:"tokens"`
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo UserRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
	}
}

// Register создаёт нового студента.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = nameFromEmail(email)
	}
	if err := validation.ValidatePersonName(name); err != nil {
		return nil, err
	}

	user := &models.User{
		CampusID: in.CampusID,
		Email:    email,
		Name:     name,
		Role:     models.RoleStudent,
	}

	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Login находит или создаёт пользователя по email и выдаёт токены.
// Если у пользователя есть пароль, он обязателен. Если пароля нет, переданный пароль сохраняется.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = nameFromEmail(email)
	}

	user, err := s.repo.FindOrCreate(ctx, email, name, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	switch {
	case user.PasswordHash != nil:
		if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(in.Password)); err != nil {
			return nil, apperror.ErrInvalidCredentials
		}
	case in.Password != "":
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SetPasswordHash(ctx, user.ID, hash); err != nil {
			// вход не прерываем, пароль можно задать при следующем входе
			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"user_id": user.ID,
					"error":   err.Error(),
				}).Warn("auth service: не удалось сохранить пароль")
			}
		} else {
			user.PasswordHash = &hash
		}
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Refresh выпускает новую пару токенов.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.tokenManager.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	return s.tokenManager.GeneratePair(user)
}

// Me возвращает текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateRole меняет роль пользователя. Доступно только администратору.
func (s *AuthService) UpdateRole(ctx context.Context, userID uuid.UUID, role string) (*models.User, error) {
	if err := validation.ValidateRole(role); err != nil {
		return nil, err
	}
	return s.repo.UpdateRole(ctx, userID, role)
}

func hashPassword(password string) (string, error) {
	if err := validation.ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}
	return string(hash), nil
}

// nameFromEmail формирует имя из локальной части email.
func nameFromEmail(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	for i, p := range parts {
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	name := strings.Join(parts, " ")
	if len([]rune(name)) < validation.MinNameLength {
		return "Campus User"
	}
	return name
}

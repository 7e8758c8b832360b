package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/apperrors"
	"project-management-api/internal/auth"
	"project-management-api/internal/models"
)

var loginPattern = regexp.MustCompile(`^[a-zA-Z0-9_]{5,50}$`)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Login    string
	Name     string
	Password string
}

// UserService manages accounts and issues tokens.
type UserService interface {
	// Register creates an account. Conflict on field "login" if taken.
	Register(ctx context.Context, in RegisterInput) (*models.User, error)

	// Authenticate checks credentials and returns a signed token.
	Authenticate(ctx context.Context, login, password string) (string, *models.User, error)

	Get(ctx context.Context, id int) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)

	// Exists backs token audience validation.
	Exists(ctx context.Context, id int) (bool, error)
}

type userService struct {
	db         *gorm.DB
	tokens     *auth.TokenIssuer
	bcryptCost int
	logger     *zap.Logger
}

func NewUserService(db *gorm.DB, tokens *auth.TokenIssuer, bcryptCost int, logger *zap.Logger) UserService {
	return &userService{
		db:         db,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger.Named("user-service"),
	}
}

var _ UserService = (*userService)(nil)

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !loginPattern.MatchString(in.Login) {
		return nil, apperrors.BadRequest("login must be 5 to 50 letters, digits or underscores")
	}
	if err := validateName("name", in.Name); err != nil {
		return nil, err
	}
	if n := len(in.Password); n < 8 || n > 50 {
		return nil, apperrors.BadRequest("password must be 8 to 50 characters")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("login = ?", in.Login).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check login: %w", err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("login", "login %q is already taken", in.Login)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := models.User{Name: in.Name, Login: in.Login, Password: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("login", "login %q is already taken", in.Login)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.Int("user_id", user.ID), zap.String("login", user.Login))
	return &user, nil
}

func (s *userService) Authenticate(ctx context.Context, login, password string) (string, *models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("login = ?", login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := auth.CheckPassword(user.Password, password)
	if err != nil {
		s.logger.Error("Stored password hash is unreadable", zap.Int("user_id", user.ID), zap.Error(err))
		return "", nil, fmt.Errorf("failed to check password: %w", err)
	}
	if !ok {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Name)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, &user, nil
}

func (s *userService) Get(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return &user, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) Exists(ctx context.Context, id int) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", id, err)
	}
	return count > 0, nil
}

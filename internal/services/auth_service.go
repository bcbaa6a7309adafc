// internal/services/auth_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kisanexport/storefront/internal/config"
	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/utils"
)

type AuthService struct {
	users               repository.UserRepository
	cfg                 *config.Config
	notificationService *NotificationService
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // in seconds
}

func NewAuthService(users repository.UserRepository, cfg *config.Config, notificationService *NotificationService) *AuthService {
	return &AuthService{
		users:               users,
		cfg:                 cfg,
		notificationService: notificationService,
	}
}

// Register creates a customer account. The role is always User.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	handle, err := utils.GenerateUserHandle()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate user handle")
	}

	user := &models.User{
		UserID: handle,
		Name:   req.Name,
		Email:  req.Email,
		Role:   models.UserRoleUser,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if s.notificationService != nil {
		go s.sendWelcomeEmail(user)
	}

	return s.issue(user, s.accessTTL())
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issue(user, s.accessTTL())
}

// AdminLogin authenticates a back-office session. Non-admin accounts get the
// same error as a wrong password.
func (s *AuthService) AdminLogin(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user, s.AdminSessionTTL())
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) AdminSessionTTL() time.Duration {
	return time.Duration(s.cfg.Session.AdminTTL) * time.Hour
}

func (s *AuthService) accessTTL() time.Duration {
	return time.Duration(s.cfg.JWT.AccessTokenTTL) * time.Hour
}

func (s *AuthService) authenticate(ctx context.Context, req *LoginRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	} else {
		user.LastLoginAt = &now
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User, ttl time.Duration) (*AuthResponse, error) {
	token, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), ttl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	return &AuthResponse{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

func (s *AuthService) sendWelcomeEmail(user *models.User) {
	if err := s.notificationService.SendWelcomeEmail(user); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to send welcome email")
	}
}

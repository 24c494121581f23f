package service

import (
	"errors"
	"fmt"

	"github.com/coderr-app/coderr-backend/config"
	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/internal/app/repository"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"github.com/coderr-app/coderr-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("a user with that username already exists")
	ErrEmailTaken         = errors.New("a user with that email already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrInvalidProfileType = errors.New("profile_type must be 'business' or 'customer'")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const minPasswordLength = 8

type RegisterInput struct {
	Username         string `json:"username" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required"`
	RepeatedPassword string `json:"repeated_password" binding:"required"`
	ProfileType      string `json:"profile_type" binding:"required"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
}

// AuthResult is what both registration and login hand back to the client.
// ProfileType is only populated by login.
type AuthResult struct {
	Token       string
	User        *model.User
	ProfileType model.UserType
}

type AuthService interface {
	Register(input RegisterInput) (*AuthResult, error)
	Login(username, password string) (*AuthResult, error)
}

type authService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	jwtConfig   config.JWTConfig
	db          *gorm.DB
}

func NewAuthService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	jwtConfig config.JWTConfig,
	db *gorm.DB,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		jwtConfig:   jwtConfig,
		db:          db,
	}
}

// Register creates the user together with its typed profile. Both rows are
// written in one transaction so a half-registered account cannot exist.
func (s *authService) Register(input RegisterInput) (*AuthResult, error) {
	logger.Info("Registering new user", map[string]interface{}{
		"username":     input.Username,
		"email":        input.Email,
		"profile_type": input.ProfileType,
	})

	if input.Password != input.RepeatedPassword {
		return nil, ErrPasswordMismatch
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	profileType := model.UserType(input.ProfileType)
	if profileType != model.TypeBusiness && profileType != model.TypeCustomer {
		return nil, ErrInvalidProfileType
	}

	if _, err := s.userRepo.FindByUsername(input.Username); err == nil {
		logger.Warn("Registration rejected: username taken", map[string]interface{}{
			"username": input.Username,
		})
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		logger.Warn("Registration rejected: email taken", map[string]interface{}{
			"email": input.Email,
		})
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, nil)
		return nil, err
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: passwordHash,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during registration, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"username": input.Username,
			})
		}
	}()

	if err := tx.Create(user).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create user", err, map[string]interface{}{
			"username": input.Username,
		})
		return nil, err
	}

	switch profileType {
	case model.TypeBusiness:
		profile := &model.BusinessProfile{
			UserID:      user.ID,
			CompanyName: input.Username,
		}
		if err := tx.Create(profile).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to create business profile", err, map[string]interface{}{
				"user_id": user.ID,
			})
			return nil, err
		}
	case model.TypeCustomer:
		profile := &model.CustomerProfile{
			UserID:    user.ID,
			FirstName: input.FirstName,
			LastName:  input.LastName,
		}
		if err := tx.Create(profile).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to create customer profile", err, map[string]interface{}{
				"user_id": user.ID,
			})
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit registration", err, map[string]interface{}{
			"username": input.Username,
		})
		return nil, err
	}

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Username, user.Email,
		s.jwtConfig.Secret, s.jwtConfig.AccessTokenExpiry, s.jwtConfig.RefreshTokenExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate token for new user", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id":      user.ID,
		"username":     user.Username,
		"profile_type": profileType,
	})

	return &AuthResult{
		Token:       tokens.AccessToken,
		User:        user,
		ProfileType: profileType,
	}, nil
}

func (s *authService) Login(username, password string) (*AuthResult, error) {
	logger.Info("User login attempt", map[string]interface{}{
		"username": username,
	})

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"username": username,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := util.VerifyPassword(user.PasswordHash, password); err != nil {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"username": username,
		})
		return nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Username, user.Email,
		s.jwtConfig.Secret, s.jwtConfig.AccessTokenExpiry, s.jwtConfig.RefreshTokenExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	profileType := model.TypeCustomer
	if _, err := s.profileRepo.FindBusinessByUserID(user.ID); err == nil {
		profileType = model.TypeBusiness
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id":      user.ID,
		"username":     user.Username,
		"profile_type": profileType,
	})

	return &AuthResult{
		Token:       tokens.AccessToken,
		User:        user,
		ProfileType: profileType,
	}, nil
}

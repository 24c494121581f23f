package service

import (
	"testing"
	"time"

	"github.com/coderr-app/coderr-backend/config"
	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/internal/app/repository"
	"github.com/coderr-app/coderr-backend/internal/db"
	"github.com/coderr-app/coderr-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	}
}

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	profileRepo := repository.NewProfileRepository(testDB)
	authService := NewAuthService(userRepo, profileRepo, testJWTConfig(), testDB)

	return authService, testDB
}

func registerInput(profileType string) RegisterInput {
	return RegisterInput{
		Username:         "newuser",
		Email:            "new@example.com",
		Password:         "password123",
		RepeatedPassword: "password123",
		ProfileType:      profileType,
	}
}

func TestAuthService_Register_Customer(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	result, err := authService.Register(registerInput("customer"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, model.TypeCustomer, result.ProfileType)
	assert.NotZero(t, result.User.ID)

	// The typed profile must exist alongside the user.
	var profile model.CustomerProfile
	err = testDB.Where("user_id = ?", result.User.ID).First(&profile).Error
	require.NoError(t, err)

	claims, err := util.ValidateToken(result.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
}

func TestAuthService_Register_Business(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	result, err := authService.Register(registerInput("business"))
	require.NoError(t, err)
	assert.Equal(t, model.TypeBusiness, result.ProfileType)

	var profile model.BusinessProfile
	err = testDB.Where("user_id = ?", result.User.ID).First(&profile).Error
	require.NoError(t, err)
	assert.Equal(t, "newuser", profile.CompanyName)
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	input := registerInput("customer")
	input.RepeatedPassword = "different"
	_, err := authService.Register(input)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestAuthService_Register_PasswordTooShort(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	input := registerInput("customer")
	input.Password = "short"
	input.RepeatedPassword = "short"
	_, err := authService.Register(input)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthService_Register_InvalidProfileType(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.Register(registerInput("admin"))
	assert.ErrorIs(t, err, ErrInvalidProfileType)
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.Register(registerInput("customer"))
	require.NoError(t, err)

	input := registerInput("customer")
	input.Email = "other@example.com"
	_, err = authService.Register(input)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.Register(registerInput("customer"))
	require.NoError(t, err)

	input := registerInput("customer")
	input.Username = "otheruser"
	_, err = authService.Register(input)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login_Success(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.Register(registerInput("business"))
	require.NoError(t, err)

	result, err := authService.Login("newuser", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, model.TypeBusiness, result.ProfileType)
	assert.Equal(t, "newuser", result.User.Username)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.Register(registerInput("customer"))
	require.NoError(t, err)

	_, err = authService.Login("newuser", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.Login("nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

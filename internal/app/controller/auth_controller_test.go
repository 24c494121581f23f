package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coderr-app/coderr-backend/config"
	"github.com/coderr-app/coderr-backend/internal/app/repository"
	"github.com/coderr-app/coderr-backend/internal/app/service"
	"github.com/coderr-app/coderr-backend/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Helper function to set user ID in context
func setUserIDInContext(c *gin.Context, userID uint) {
	c.Set("user_id", userID)
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func setupAuthControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	profileRepo := repository.NewProfileRepository(testDB)
	authService := service.NewAuthService(userRepo, profileRepo, config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	}, testDB)
	ctrl := NewAuthController(authService)

	router := gin.New()
	router.POST("/registration/", ctrl.Register)
	router.POST("/login/", ctrl.Login)

	return router, testDB
}

func registrationBody(profileType string) map[string]interface{} {
	return map[string]interface{}{
		"username":          "newuser",
		"email":             "new@example.com",
		"password":          "password123",
		"repeated_password": "password123",
		"profile_type":      profileType,
	}
}

func TestAuthController_Register_Success(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	w := postJSON(t, router, "/registration/", registrationBody("customer"))
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response["token"])
	assert.Equal(t, "newuser", response["username"])
	assert.NotZero(t, response["user_id"])
}

func TestAuthController_Register_PasswordMismatch(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	body := registrationBody("customer")
	body["repeated_password"] = "different"
	w := postJSON(t, router, "/registration/", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Passwords do not match.", response["error"])
}

func TestAuthController_Register_ShortPasswordFieldError(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	body := registrationBody("customer")
	body["password"] = "short"
	body["repeated_password"] = "short"
	w := postJSON(t, router, "/registration/", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t,
		"This password is too short. It must contain at least 8 characters.",
		response["error"]["password"])
}

func TestAuthController_Register_DuplicateUsername(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	w := postJSON(t, router, "/registration/", registrationBody("customer"))
	require.Equal(t, http.StatusCreated, w.Code)

	body := registrationBody("customer")
	body["email"] = "other@example.com"
	w = postJSON(t, router, "/registration/", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "A user with that username already exists.", response["error"]["username"])
}

func TestAuthController_Register_InvalidProfileType(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	w := postJSON(t, router, "/registration/", registrationBody("admin"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Not a valid choice.", response["error"]["profile_type"])
}

func TestAuthController_Register_MissingFields(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	w := postJSON(t, router, "/registration/", map[string]interface{}{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController_Login_Success(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	w := postJSON(t, router, "/registration/", registrationBody("business"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/login/", map[string]interface{}{
		"username": "newuser",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response["token"])
	assert.Equal(t, "business", response["profile_type"])
}

func TestAuthController_Login_WrongPassword(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	w := postJSON(t, router, "/registration/", registrationBody("customer"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/login/", map[string]interface{}{
		"username": "newuser",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Invalid username or password.", response["error"])
}

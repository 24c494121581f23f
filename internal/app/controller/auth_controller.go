package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/coderr-app/coderr-backend/internal/errors"
	"github.com/coderr-app/coderr-backend/internal/app/service"
	"github.com/coderr-app/coderr-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a user with its typed profile
// POST /registration/
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data")
		return
	}

	result, err := ctrl.authService.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			apperrors.BadRequest(c, "Passwords do not match.")
		case errors.Is(err, service.ErrPasswordTooShort):
			apperrors.RespondWithValidationError(c, map[string]string{
				"password": "This password is too short. It must contain at least 8 characters.",
			})
		case errors.Is(err, service.ErrUsernameTaken):
			apperrors.RespondWithValidationError(c, map[string]string{
				"username": "A user with that username already exists.",
			})
		case errors.Is(err, service.ErrEmailTaken):
			apperrors.RespondWithValidationError(c, map[string]string{
				"email": "A user with that email already exists.",
			})
		case errors.Is(err, service.ErrInvalidProfileType):
			apperrors.RespondWithValidationError(c, map[string]string{
				"profile_type": "Not a valid choice.",
			})
		default:
			log.Error("Registration failed", err, map[string]interface{}{
				"username": req.Username,
			})
			apperrors.HandleError(c, err, "user")
		}
		return
	}

	log.Info("User registered", map[string]interface{}{
		"user_id":  result.User.ID,
		"username": result.User.Username,
	})

	c.JSON(http.StatusCreated, gin.H{
		"token":    result.Token,
		"user_id":  result.User.ID,
		"username": result.User.Username,
	})
}

// Login authenticates a user and returns a token plus the profile type
// POST /login/
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data")
		return
	}

	result, err := ctrl.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.BadRequest(c, "Invalid username or password.")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"username": req.Username,
		})
		apperrors.HandleError(c, err, "user")
		return
	}

	log.Info("User logged in", map[string]interface{}{
		"user_id": result.User.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"token":        result.Token,
		"user_id":      result.User.ID,
		"username":     result.User.Username,
		"profile_type": result.ProfileType,
	})
}

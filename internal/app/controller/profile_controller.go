package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/coderr-app/coderr-backend/internal/app/service"
	apperrors "github.com/coderr-app/coderr-backend/internal/errors"
	"github.com/coderr-app/coderr-backend/internal/middleware"
	"github.com/coderr-app/coderr-backend/internal/storage"
)

const maxProfileImageSize = 10 << 20 // 10 MB

var allowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

type ProfileController struct {
	profileService service.ProfileService
	storage        storage.ImageStorage
}

func NewProfileController(profileService service.ProfileService, imageStorage storage.ImageStorage) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		storage:        imageStorage,
	}
}

// GetProfile returns the unified profile envelope for any user
// GET /profile/:user_id/
func (ctrl *ProfileController) GetProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := parseUintParam(c, "user_id")
	if !ok {
		apperrors.BadRequest(c, "Invalid user ID")
		return
	}

	profile, err := ctrl.profileService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.BadRequest(c, "User not found.")
			return
		}
		log.Error("Failed to fetch profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.HandleError(c, err, "profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies the user half and the type-specific half of the
// payload in one transaction
// PATCH /profile/:user_id/
func (ctrl *ProfileController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := parseUintParam(c, "user_id")
	if !ok {
		apperrors.BadRequest(c, "Invalid user ID")
		return
	}

	var req service.ProfileUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid profile payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data")
		return
	}

	profile, err := ctrl.profileService.UpdateProfile(userID, req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.BadRequest(c, "User not found.")
			return
		}
		log.Error("Failed to update profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.HandleError(c, err, "profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetBusinessProfile returns a provider's profile with its derived fields
// GET /profiles/business/:user_id/
func (ctrl *ProfileController) GetBusinessProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := parseUintParam(c, "user_id")
	if !ok {
		apperrors.BadRequest(c, "Invalid user ID")
		return
	}

	profile, err := ctrl.profileService.GetBusinessProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessProfileNotFound) {
			apperrors.NotFound(c, "Business profile not found.")
			return
		}
		log.Error("Failed to fetch business profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.HandleError(c, err, "profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateBusinessProfile accepts JSON or multipart form data; a
// profile_image file part is uploaded to object storage first
// PATCH /profiles/business/:user_id/
func (ctrl *ProfileController) UpdateBusinessProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := parseUintParam(c, "user_id")
	if !ok {
		apperrors.BadRequest(c, "Invalid user ID")
		return
	}

	var req service.BusinessProfileUpdateInput
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if !ctrl.bindBusinessMultipart(c, &req) {
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid business profile payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data")
		return
	}

	profile, err := ctrl.profileService.UpdateBusinessProfile(userID, req)
	if err != nil {
		if errors.Is(err, service.ErrBusinessProfileNotFound) {
			apperrors.NotFound(c, "Business profile not found.")
			return
		}
		log.Error("Failed to update business profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.HandleError(c, err, "profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetCustomerProfile returns a customer's profile
// GET /profiles/customer/:user_id/
func (ctrl *ProfileController) GetCustomerProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := parseUintParam(c, "user_id")
	if !ok {
		apperrors.BadRequest(c, "Invalid user ID")
		return
	}

	profile, err := ctrl.profileService.GetCustomerProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrCustomerProfileNotFound) {
			apperrors.NotFound(c, "Customer profile not found.")
			return
		}
		log.Error("Failed to fetch customer profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.HandleError(c, err, "profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateCustomerProfile partially updates a customer's profile
// PATCH /profiles/customer/:user_id/
func (ctrl *ProfileController) UpdateCustomerProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := parseUintParam(c, "user_id")
	if !ok {
		apperrors.BadRequest(c, "Invalid user ID")
		return
	}

	var req service.CustomerProfileUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid customer profile payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data")
		return
	}

	profile, err := ctrl.profileService.UpdateCustomerProfile(userID, req)
	if err != nil {
		if errors.Is(err, service.ErrCustomerProfileNotFound) {
			apperrors.NotFound(c, "Customer profile not found.")
			return
		}
		log.Error("Failed to update customer profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.HandleError(c, err, "profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ListBusinessProfiles returns all provider profiles
// GET /profiles/business/
func (ctrl *ProfileController) ListBusinessProfiles(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	profiles, err := ctrl.profileService.ListBusinessProfiles()
	if err != nil {
		log.Error("Failed to list business profiles", err, nil)
		apperrors.HandleError(c, err, "profile")
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// ListCustomerProfiles returns all customer profiles
// GET /profiles/customer/
func (ctrl *ProfileController) ListCustomerProfiles(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	profiles, err := ctrl.profileService.ListCustomerProfiles()
	if err != nil {
		log.Error("Failed to list customer profiles", err, nil)
		apperrors.HandleError(c, err, "profile")
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// bindBusinessMultipart reads form fields and uploads the optional
// profile_image part. Reports success; writes the error response itself.
func (ctrl *ProfileController) bindBusinessMultipart(c *gin.Context, req *service.BusinessProfileUpdateInput) bool {
	log := middleware.GetLoggerFromContext(c)

	req.CompanyName = formString(c, "company_name")
	req.CompanyAddress = formString(c, "company_address")
	req.CompanyWebsite = formString(c, "company_website")
	req.Description = formString(c, "description")
	req.Tel = formString(c, "tel")
	req.Location = formString(c, "location")
	req.WorkingHours = formString(c, "working_hours")
	req.Email = formString(c, "email")

	file, header, err := c.Request.FormFile("profile_image")
	if err != nil {
		// no file part is fine for a partial update
		return true
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := ctrl.storage.ValidateContentType(contentType, allowedImageTypes); err != nil {
		apperrors.BadRequest(c, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
		return false
	}
	if err := ctrl.storage.ValidateFileSize(header.Size, maxProfileImageSize); err != nil {
		apperrors.BadRequest(c, "Image exceeds the maximum allowed size of 10 MB")
		return false
	}

	url, err := ctrl.storage.Upload(c.Request.Context(), file, header.Filename, contentType, "profile_images")
	if err != nil {
		log.Error("Failed to upload profile image", err, map[string]interface{}{
			"filename": header.Filename,
		})
		apperrors.InternalError(c, "Failed to upload profile image")
		return false
	}

	req.ProfileImage = &url
	return true
}

func formString(c *gin.Context, name string) *string {
	if value, ok := c.GetPostForm(name); ok {
		return &value
	}
	return nil
}

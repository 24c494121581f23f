package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/coderr-app/coderr-backend/internal/errors"
	"github.com/coderr-app/coderr-backend/internal/middleware"
	"github.com/coderr-app/coderr-backend/internal/storage"
)

type UploadController struct {
	storage storage.ImageStorage
}

func NewUploadController(imageStorage storage.ImageStorage) *UploadController {
	return &UploadController{
		storage: imageStorage,
	}
}

// UploadImage stores a multipart image and returns its public URL, for use
// in offer and profile image fields
// POST /upload/image/
func (ctrl *UploadController) UploadImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if _, exists := middleware.GetUserID(c); !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		apperrors.BadRequest(c, "The field 'image' is required.")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := ctrl.storage.ValidateContentType(contentType, allowedImageTypes); err != nil {
		log.Warn("Rejected upload with invalid content type", map[string]interface{}{
			"content_type": contentType,
		})
		apperrors.BadRequest(c, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
		return
	}
	if err := ctrl.storage.ValidateFileSize(header.Size, maxProfileImageSize); err != nil {
		apperrors.BadRequest(c, "Image exceeds the maximum allowed size of 10 MB")
		return
	}

	url, err := ctrl.storage.Upload(c.Request.Context(), file, header.Filename, contentType, "uploads")
	if err != nil {
		log.Error("Failed to upload image", err, map[string]interface{}{
			"filename": header.Filename,
		})
		apperrors.InternalError(c, "Failed to upload image")
		return
	}

	log.Info("Image uploaded", map[string]interface{}{
		"filename": header.Filename,
	})

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

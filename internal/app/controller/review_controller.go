package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/coderr-app/coderr-backend/internal/app/service"
	apperrors "github.com/coderr-app/coderr-backend/internal/errors"
	"github.com/coderr-app/coderr-backend/internal/middleware"
)

const (
	reviewPageSize    = 10
	reviewMaxPageSize = 50
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

// ListReviews returns the filtered, ordered, paginated review list
// GET /reviews/
func (ctrl *ReviewController) ListReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if _, exists := middleware.GetUserID(c); !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	page, pageSize := paginationParams(c, reviewPageSize, reviewMaxPageSize)

	query := service.ReviewQuery{
		BusinessUserID: queryUint(c, "business_user_id"),
		ReviewerID:     queryUint(c, "reviewer_id"),
		OfferID:        queryUint(c, "offer_id"),
		Ordering:       c.Query("ordering"),
		Limit:          pageSize,
		Offset:         (page - 1) * pageSize,
	}

	reviews, total, err := ctrl.reviewService.ListReviews(query)
	if err != nil {
		log.Error("Failed to list reviews", err, nil)
		apperrors.HandleError(c, err, "review")
		return
	}

	respondPaginated(c, total, page, pageSize, reviews)
}

// CreateReview lets a customer rate a provider once
// POST /reviews/
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req service.ReviewCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid review payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data")
		return
	}

	review, err := ctrl.reviewService.CreateReview(userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotCustomer):
			apperrors.Forbidden(c, "Only customers can write reviews.")
		case errors.Is(err, service.ErrAlreadyReviewed):
			apperrors.BadRequest(c, "You have already reviewed this provider.")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.BadRequest(c, "User not found.")
		case errors.Is(err, service.ErrOfferNotFound):
			apperrors.BadRequest(c, "Offer not found")
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"reviewer_id": userID,
			})
			apperrors.HandleError(c, err, "review")
		}
		return
	}

	log.Info("Review created", map[string]interface{}{
		"review_id":   review.ID,
		"reviewer_id": userID,
	})

	c.JSON(http.StatusCreated, review)
}

// UpdateReview lets a reviewer edit their own review
// PATCH /reviews/:pk/
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, ok := parseUintParam(c, "pk")
	if !ok {
		apperrors.BadRequest(c, "Invalid review ID")
		return
	}

	var req service.ReviewUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid review payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data")
		return
	}

	review, err := ctrl.reviewService.UpdateReview(userID, reviewID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, "Review not found")
		case errors.Is(err, service.ErrNotReviewOwner):
			apperrors.Forbidden(c, "You can only edit your own reviews.")
		default:
			log.Error("Failed to update review", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.HandleError(c, err, "review")
		}
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview lets a reviewer remove their own review
// DELETE /reviews/:pk/
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, ok := parseUintParam(c, "pk")
	if !ok {
		apperrors.BadRequest(c, "Invalid review ID")
		return
	}

	if err := ctrl.reviewService.DeleteReview(userID, reviewID); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, "Review not found")
		case errors.Is(err, service.ErrNotReviewOwner):
			apperrors.Forbidden(c, "You can only delete your own reviews.")
		default:
			log.Error("Failed to delete review", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.HandleError(c, err, "review")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

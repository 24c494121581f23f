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
	offerPageSize    = 6
	offerMaxPageSize = 100
)

type OfferController struct {
	offerService service.OfferService
}

func NewOfferController(offerService service.OfferService) *OfferController {
	return &OfferController{
		offerService: offerService,
	}
}

// ListOffers returns the filtered, ordered, paginated offer list
// GET /offers/
func (ctrl *OfferController) ListOffers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, pageSize := paginationParams(c, offerPageSize, offerMaxPageSize)

	query := service.OfferQuery{
		CreatorID:       queryUint(c, "creator_id"),
		MinPrice:        queryFloat(c, "min_price"),
		MaxPrice:        queryFloat(c, "max_price"),
		MaxDeliveryTime: queryInt(c, "max_delivery_time"),
		Search:          c.Query("search"),
		Ordering:        c.Query("ordering"),
		Limit:           pageSize,
		Offset:          (page - 1) * pageSize,
	}

	var requesterID *uint
	if userID, ok := middleware.GetUserID(c); ok {
		requesterID = &userID
	}

	offers, total, err := ctrl.offerService.ListOffers(requesterID, query)
	if err != nil {
		log.Error("Failed to list offers", err, nil)
		apperrors.HandleError(c, err, "offer")
		return
	}

	respondPaginated(c, total, page, pageSize, offers)
}

// GetOffer returns a single offer with its details
// GET /offers/:id/
func (ctrl *OfferController) GetOffer(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseUintParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, "Invalid offer ID")
		return
	}

	offer, err := ctrl.offerService.GetOffer(id)
	if err != nil {
		if errors.Is(err, service.ErrOfferNotFound) {
			apperrors.NotFound(c, "Offer not found")
			return
		}
		log.Error("Failed to fetch offer", err, map[string]interface{}{
			"offer_id": id,
		})
		apperrors.HandleError(c, err, "offer")
		return
	}

	c.JSON(http.StatusOK, offer)
}

// CreateOffer creates an offer with nested detail variants
// POST /offers/
func (ctrl *OfferController) CreateOffer(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req service.OfferCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid offer payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data")
		return
	}

	offer, err := ctrl.offerService.CreateOffer(userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotProvider):
			apperrors.Forbidden(c, "Only providers can create offers.")
		case errors.Is(err, service.ErrInvalidOfferType):
			apperrors.BadRequest(c, "offer_type must be 'basic', 'standard' or 'premium'.")
		case errors.Is(err, service.ErrDuplicateTier):
			apperrors.BadRequest(c, "An offer can only have one detail per offer_type.")
		default:
			log.Error("Failed to create offer", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.HandleError(c, err, "offer")
		}
		return
	}

	log.Info("Offer created", map[string]interface{}{
		"offer_id": offer.ID,
		"user_id":  userID,
	})

	c.JSON(http.StatusCreated, offer)
}

// UpdateOffer partially updates an offer and merges nested details by tier
// PATCH /offers/:id/
func (ctrl *OfferController) UpdateOffer(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseUintParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, "Invalid offer ID")
		return
	}

	var req service.OfferUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid offer payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data")
		return
	}

	offer, err := ctrl.offerService.UpdateOffer(userID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOfferNotOwned):
			apperrors.NotFound(c, "Offer not found or you are not authorized")
		case errors.Is(err, service.ErrInvalidOfferType):
			apperrors.BadRequest(c, "offer_type must be 'basic', 'standard' or 'premium'.")
		case errors.Is(err, service.ErrDuplicateTier):
			apperrors.BadRequest(c, "An offer can only have one detail per offer_type.")
		default:
			log.Error("Failed to update offer", err, map[string]interface{}{
				"offer_id": id,
			})
			apperrors.HandleError(c, err, "offer")
		}
		return
	}

	c.JSON(http.StatusOK, offer)
}

// DeleteOffer removes an offer and everything referencing it
// DELETE /offers/:id/
func (ctrl *OfferController) DeleteOffer(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseUintParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, "Invalid offer ID")
		return
	}

	if err := ctrl.offerService.DeleteOffer(userID, id); err != nil {
		if errors.Is(err, service.ErrOfferNotOwned) {
			apperrors.NotFound(c, "Offer not found or you are not authorized")
			return
		}
		log.Error("Failed to delete offer", err, map[string]interface{}{
			"offer_id": id,
		})
		apperrors.HandleError(c, err, "offer")
		return
	}

	c.Status(http.StatusNoContent)
}

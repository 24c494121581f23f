package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/coderr-app/coderr-backend/internal/app/service"
	apperrors "github.com/coderr-app/coderr-backend/internal/errors"
	"github.com/coderr-app/coderr-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CreateOrderRequest struct {
	OfferDetailID *uint `json:"offer_detail_id"`
}

// ListOrders returns orders scoped by role: providers see orders against
// their offers, customers see their own
// GET /orders/
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.ListOrders(userID)
	if err != nil {
		log.Error("Failed to list orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.HandleError(c, err, "order")
		return
	}

	c.JSON(http.StatusOK, orders)
}

// CreateOrder places an order against an offer variant
// POST /orders/
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data")
		return
	}

	order, err := ctrl.orderService.CreateOrder(userID, req.OfferDetailID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessCannotOrder):
			apperrors.Forbidden(c, "Business profile owners cannot create orders.")
		case errors.Is(err, service.ErrSuperuserCannotOrder):
			apperrors.Forbidden(c, "Superusers cannot create orders.")
		case errors.Is(err, service.ErrOfferDetailRequired):
			apperrors.BadRequest(c, "The field 'offer_detail_id' is required.")
		case errors.Is(err, service.ErrOfferDetailNotFound):
			apperrors.BadRequest(c, "The specified offer detail does not exist.")
		default:
			log.Error("Failed to create order", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.HandleError(c, err, "order")
		}
		return
	}

	log.Info("Order created", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
	})

	c.JSON(http.StatusCreated, order)
}

// UpdateOrder lets the offer's owner change status or reassign the variant
// PATCH /orders/:order_id/
func (ctrl *OrderController) UpdateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orderID, ok := parseUintParam(c, "order_id")
	if !ok {
		apperrors.BadRequest(c, "Invalid order ID")
		return
	}

	var req service.OrderUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data")
		return
	}

	order, err := ctrl.orderService.UpdateOrder(userID, orderID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, "Order not found")
		case errors.Is(err, service.ErrNotOrderOwner):
			apperrors.Forbidden(c, "You are not authorized to edit this order.")
		case errors.Is(err, service.ErrInvalidOrderStatus):
			apperrors.BadRequest(c, "Invalid order status.")
		case errors.Is(err, service.ErrOfferDetailNotFound):
			apperrors.BadRequest(c, "The specified offer detail does not exist.")
		default:
			log.Error("Failed to update order", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.HandleError(c, err, "order")
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListUserOrders returns only the orders the requester placed
// GET /user/orders/
func (ctrl *OrderController) ListUserOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.ListUserOrders(userID)
	if err != nil {
		log.Error("Failed to list user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.HandleError(c, err, "order")
		return
	}

	c.JSON(http.StatusOK, orders)
}

// InProgressCount returns the role-scoped in-progress order count for an offer
// GET /order-count/:offer_id/
func (ctrl *OrderController) InProgressCount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	offerID, ok := parseUintParam(c, "offer_id")
	if !ok {
		apperrors.BadRequest(c, "Invalid offer ID")
		return
	}

	count, err := ctrl.orderService.InProgressCount(userID, offerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOfferNotFound):
			apperrors.NotFound(c, "Offer not found.")
		case errors.Is(err, service.ErrNotOfferOwner):
			apperrors.Forbidden(c, "You are not authorized to view data for this offer.")
		case errors.Is(err, service.ErrRoleUnknown):
			apperrors.Forbidden(c, "User is neither a provider nor a customer.")
		default:
			log.Error("Failed to count in-progress orders", err, map[string]interface{}{
				"offer_id": offerID,
			})
			apperrors.HandleError(c, err, "order")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"in_progress_count": count})
}

// CompletedCount returns the completed order count for a user, counted by
// business_user for providers and by placing user for customers
// GET /completed-order-count/:user_id/
func (ctrl *OrderController) CompletedCount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if _, exists := middleware.GetUserID(c); !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	targetID, ok := parseUintParam(c, "user_id")
	if !ok {
		apperrors.BadRequest(c, "Invalid user ID")
		return
	}

	count, err := ctrl.orderService.CompletedCount(targetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.BadRequest(c, "User not found.")
		case errors.Is(err, service.ErrRoleUnknown):
			apperrors.BadRequest(c, "User is neither a provider nor a customer.")
		default:
			log.Error("Failed to count completed orders", err, map[string]interface{}{
				"user_id": targetID,
			})
			apperrors.HandleError(c, err, "order")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"completed_order_count": count})
}

// ExportOrders streams the provider's incoming orders as an xlsx workbook
// GET /orders/export/
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	file, err := ctrl.orderService.ExportOrders(userID)
	if err != nil {
		if errors.Is(err, service.ErrNotBusinessUser) {
			apperrors.Forbidden(c, "Only providers can export orders.")
			return
		}
		log.Error("Failed to export orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.HandleError(c, err, "order")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		log.Error("Failed to write workbook to response", err, map[string]interface{}{
			"user_id": userID,
		})
	}
}

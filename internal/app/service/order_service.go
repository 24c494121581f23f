package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/internal/app/repository"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrNotOrderOwner        = errors.New("not authorized to edit this order")
	ErrBusinessCannotOrder  = errors.New("business profile owners cannot create orders")
	ErrSuperuserCannotOrder = errors.New("superusers cannot create orders")
	ErrOfferDetailRequired  = errors.New("offer_detail_id is required")
	ErrOfferDetailNotFound  = errors.New("the specified offer detail does not exist")
	ErrNotOfferOwner        = errors.New("not authorized to view data for this offer")
	ErrRoleUnknown          = errors.New("user is neither a provider nor a customer")
	ErrInvalidOrderStatus   = errors.New("invalid order status")
	ErrNotBusinessUser      = errors.New("only providers can export orders")
)

type OrderData struct {
	ID                 uint              `json:"id"`
	UserDetails        UserSummary       `json:"user_details"`
	Offer              uint              `json:"offer"`
	OfferDetailID      uint              `json:"offer_detail_id"`
	Status             model.OrderStatus `json:"status"`
	StatusDisplay      string            `json:"status_display"`
	Option             model.OfferType   `json:"option"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	OfferTitle         string            `json:"offer_title"`
	OfferProvider      string            `json:"offer_provider"`
	OfferPrice         *float64          `json:"offer_price"`
	OfferDeliveryTime  *int              `json:"offer_delivery_time"`
	OfferRevisionLimit *int              `json:"offer_revision_limit"`
	OfferDescription   string            `json:"offer_description"`
	Features           []string          `json:"features"`
	BusinessUser       UserSummary       `json:"business_user"`
}

type OrderUpdateInput struct {
	Status        *string `json:"status"`
	OfferDetailID *uint   `json:"offer_detail_id"`
}

type OrderService interface {
	CreateOrder(userID uint, offerDetailID *uint) (*OrderData, error)
	ListOrders(userID uint) ([]OrderData, error)
	ListUserOrders(userID uint) ([]OrderData, error)
	UpdateOrder(userID, orderID uint, input OrderUpdateInput) (*OrderData, error)
	InProgressCount(requesterID, offerID uint) (int64, error)
	CompletedCount(targetUserID uint) (int64, error)
	ExportOrders(userID uint) (*excelize.File, error)
}

type orderService struct {
	orderRepo      repository.OrderRepository
	offerRepo      repository.OfferRepository
	userRepo       repository.UserRepository
	profileService ProfileService
	db             *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	offerRepo repository.OfferRepository,
	userRepo repository.UserRepository,
	profileService ProfileService,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		offerRepo:      offerRepo,
		userRepo:       userRepo,
		profileService: profileService,
		db:             db,
	}
}

// CreateOrder is the single entry point for placing an order. Business
// users and superusers are both rejected here; the order snapshots the
// variant's features and tier so later edits to the detail never change it.
func (s *orderService) CreateOrder(userID uint, offerDetailID *uint) (*OrderData, error) {
	logger.Info("Creating order", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsSuperuser {
		logger.Warn("Order creation rejected: superuser", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrSuperuserCannotOrder
	}

	userType, err := s.profileService.Classify(userID)
	if err != nil {
		return nil, err
	}
	if userType == model.TypeBusiness {
		logger.Warn("Order creation rejected: business profile owner", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrBusinessCannotOrder
	}

	if offerDetailID == nil {
		return nil, ErrOfferDetailRequired
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var detail model.OfferDetail
	if err := tx.First(&detail, *offerDetailID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order creation rejected: unknown offer detail", map[string]interface{}{
				"user_id":         userID,
				"offer_detail_id": *offerDetailID,
			})
			return nil, ErrOfferDetailNotFound
		}
		return nil, err
	}

	var offer model.Offer
	if err := tx.First(&offer, detail.OfferID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	order := &model.Order{
		UserID:         userID,
		BusinessUserID: offer.UserID,
		OfferID:        offer.ID,
		OfferDetailID:  detail.ID,
		Status:         model.OrderStatusPending,
		Option:         detail.OfferType,
		Features:       detail.Features,
	}
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order creation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id":         order.ID,
		"user_id":          userID,
		"business_user_id": order.BusinessUserID,
	})

	return s.buildOrderData(order)
}

// ListOrders is role-scoped: providers see the orders placed against their
// offers, customers see the orders they placed.
func (s *orderService) ListOrders(userID uint) ([]OrderData, error) {
	userType, err := s.profileService.Classify(userID)
	if err != nil {
		return nil, err
	}

	var orders []model.Order
	if userType == model.TypeBusiness {
		orders, err = s.orderRepo.FindByBusinessUser(userID)
	} else {
		orders, err = s.orderRepo.FindByCustomer(userID)
	}
	if err != nil {
		return nil, err
	}

	return s.buildOrderList(orders)
}

func (s *orderService) ListUserOrders(userID uint) ([]OrderData, error) {
	orders, err := s.orderRepo.FindByCustomer(userID)
	if err != nil {
		return nil, err
	}
	return s.buildOrderList(orders)
}

// UpdateOrder lets the offer's owner change the status or reassign the
// order to another variant. The features snapshot is not rewritten.
func (s *orderService) UpdateOrder(userID, orderID uint, input OrderUpdateInput) (*OrderData, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	var offer model.Offer
	if err := s.db.First(&offer, order.OfferID).Error; err != nil {
		return nil, err
	}
	if offer.UserID != userID {
		logger.Warn("Order update rejected: requester does not own the offer", map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, ErrNotOrderOwner
	}

	if input.Status != nil {
		status := model.OrderStatus(*input.Status)
		if !model.ValidOrderStatus(status) {
			return nil, ErrInvalidOrderStatus
		}
		order.Status = status
	}
	if input.OfferDetailID != nil {
		detail, err := s.offerRepo.FindDetailByID(*input.OfferDetailID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOfferDetailNotFound
			}
			return nil, err
		}
		order.OfferDetailID = detail.ID
	}

	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	logger.Info("Order updated", map[string]interface{}{
		"order_id": orderID,
		"status":   order.Status,
	})

	return s.buildOrderData(order)
}

// InProgressCount is role-scoped: a customer only sees their own count for
// the offer, a provider sees the total but only for an offer they own.
func (s *orderService) InProgressCount(requesterID, offerID uint) (int64, error) {
	offer, err := s.offerRepo.FindByID(offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrOfferNotFound
		}
		return 0, err
	}

	userType, err := s.profileService.Classify(requesterID)
	if err != nil {
		return 0, err
	}

	switch userType {
	case model.TypeCustomer:
		return s.orderRepo.CountInProgressForOfferAndCustomer(offerID, requesterID)
	case model.TypeBusiness:
		if offer.UserID != requesterID {
			logger.Warn("In-progress count rejected: requester does not own the offer", map[string]interface{}{
				"offer_id": offerID,
				"user_id":  requesterID,
			})
			return 0, ErrNotOfferOwner
		}
		return s.orderRepo.CountInProgressForOffer(offerID)
	default:
		return 0, ErrRoleUnknown
	}
}

// CompletedCount counts by business_user for providers and by placing user
// for customers.
func (s *orderService) CompletedCount(targetUserID uint) (int64, error) {
	if _, err := s.userRepo.FindByID(targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	userType, err := s.profileService.Classify(targetUserID)
	if err != nil {
		return 0, err
	}

	switch userType {
	case model.TypeBusiness:
		return s.orderRepo.CountCompletedForBusinessUser(targetUserID)
	case model.TypeCustomer:
		return s.orderRepo.CountCompletedForCustomer(targetUserID)
	default:
		return 0, ErrRoleUnknown
	}
}

// ExportOrders renders the provider's incoming orders as an xlsx workbook.
func (s *orderService) ExportOrders(userID uint) (*excelize.File, error) {
	userType, err := s.profileService.Classify(userID)
	if err != nil {
		return nil, err
	}
	if userType != model.TypeBusiness {
		return nil, ErrNotBusinessUser
	}

	orders, err := s.orderRepo.FindByBusinessUser(userID)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	sheet := "Orders"
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Order ID", "Customer", "Offer", "Tier", "Status", "Price", "Created At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for row, order := range orders {
		data, err := s.buildOrderData(&order)
		if err != nil {
			return nil, err
		}

		values := []interface{}{
			data.ID,
			data.UserDetails.Username,
			data.OfferTitle,
			string(data.Option),
			string(data.Status),
			nil,
			data.CreatedAt.Format(time.RFC3339),
		}
		if data.OfferPrice != nil {
			values[5] = *data.OfferPrice
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("Exported orders to workbook", map[string]interface{}{
		"user_id":     userID,
		"order_count": len(orders),
	})

	return file, nil
}

func (s *orderService) buildOrderList(orders []model.Order) ([]OrderData, error) {
	result := make([]OrderData, 0, len(orders))
	for i := range orders {
		data, err := s.buildOrderData(&orders[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *data)
	}
	return result, nil
}

func (s *orderService) buildOrderData(order *model.Order) (*OrderData, error) {
	var offer model.Offer
	if err := s.db.Preload("User").First(&offer, order.OfferID).Error; err != nil {
		return nil, err
	}

	var detail model.OfferDetail
	if err := s.db.First(&detail, order.OfferDetailID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer, err := s.userRepo.FindByID(order.UserID)
	if err != nil {
		return nil, err
	}
	customerSummary, err := s.profileService.Summarize(customer)
	if err != nil {
		return nil, err
	}
	providerSummary, err := s.profileService.Summarize(&offer.User)
	if err != nil {
		return nil, err
	}

	features := []string(order.Features)
	if features == nil {
		features = []string{}
	}

	return &OrderData{
		ID:                 order.ID,
		UserDetails:        *customerSummary,
		Offer:              order.OfferID,
		OfferDetailID:      order.OfferDetailID,
		Status:             order.Status,
		StatusDisplay:      model.StatusDisplay(order.Status),
		Option:             order.Option,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		OfferTitle:         offer.Title,
		OfferProvider:      offer.User.Username,
		OfferPrice:         detail.VariantPrice,
		OfferDeliveryTime:  detail.DeliveryTimeInDays,
		OfferRevisionLimit: detail.RevisionLimit,
		OfferDescription:   offer.Description,
		Features:           features,
		BusinessUser:       *providerSummary,
	}, nil
}

package repository

import (
	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByCustomer(userID uint) ([]model.Order, error)
	FindByBusinessUser(userID uint) ([]model.Order, error)
	Update(order *model.Order) error
	CountInProgressForOffer(offerID uint) (int64, error)
	CountInProgressForOfferAndCustomer(offerID, userID uint) (int64, error)
	CountCompletedForBusinessUser(userID uint) (int64, error)
	CountCompletedForCustomer(userID uint) (int64, error)
	CountInProgressForBusinessUser(userID uint) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":         order.UserID,
		"offer_detail_id": order.OfferDetailID,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.First(&order, id).Error
	if err != nil {
		logger.Debug("Failed to find order by ID in database", map[string]interface{}{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByCustomer(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		logger.Error("Failed to list customer orders from database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

// FindByBusinessUser resolves ownership through the offer rather than the
// denormalized business_user_id, so a reassigned offer moves its orders.
func (r *orderRepository) FindByBusinessUser(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.
		Joins("JOIN offers ON offers.id = orders.offer_id").
		Where("offers.user_id = ?", userID).
		Order("orders.created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to list business orders from database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) CountInProgressForOffer(offerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("offer_id = ? AND status = ?", offerID, model.OrderStatusInProgress).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count in-progress orders in database", err, map[string]interface{}{
			"offer_id": offerID,
		})
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) CountInProgressForOfferAndCustomer(offerID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("offer_id = ? AND user_id = ? AND status = ?", offerID, userID, model.OrderStatusInProgress).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count in-progress orders in database", err, map[string]interface{}{
			"offer_id": offerID,
			"user_id":  userID,
		})
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) CountCompletedForCustomer(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("user_id = ? AND status = ?", userID, model.OrderStatusCompleted).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count completed orders in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) CountCompletedForBusinessUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("business_user_id = ? AND status = ?", userID, model.OrderStatusCompleted).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count completed orders in database", err, map[string]interface{}{
			"business_user_id": userID,
		})
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) CountInProgressForBusinessUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("business_user_id = ? AND status = ?", userID, model.OrderStatusInProgress).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count pending orders in database", err, map[string]interface{}{
			"business_user_id": userID,
		})
		return 0, err
	}
	return count, nil
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// StatusDisplay maps a status code to its user-facing label
func StatusDisplay(s OrderStatus) string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusInProgress:
		return "In Progress"
	case OrderStatusCompleted:
		return "Completed"
	case OrderStatusCancelled:
		return "Cancelled"
	}
	return "Unknown Status"
}

// Order is placed by a customer against one offer variant. BusinessUserID and
// Features are denormalized at creation time: reassigning the offer or editing
// the detail later never rewrites an existing order.
type Order struct {
	ID             uint                        `gorm:"primarykey" json:"id"`
	UserID         uint                        `gorm:"index;not null" json:"user_id"`
	BusinessUserID uint                        `gorm:"index;not null" json:"business_user_id"`
	OfferID        uint                        `gorm:"index;not null" json:"offer_id"`
	OfferDetailID  uint                        `gorm:"index;not null" json:"offer_detail_id"`
	Status         OrderStatus                 `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Option         OfferType                   `gorm:"type:varchar(20);default:'basic'" json:"option"`
	Features       datatypes.JSONSlice[string] `json:"features"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`

	User         User        `gorm:"foreignKey:UserID" json:"-"`
	BusinessUser User        `gorm:"foreignKey:BusinessUserID" json:"-"`
	Offer        Offer       `gorm:"foreignKey:OfferID" json:"-"`
	OfferDetail  OfferDetail `gorm:"foreignKey:OfferDetailID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

type OfferType string

const (
	OfferTypeBasic    OfferType = "basic"
	OfferTypeStandard OfferType = "standard"
	OfferTypePremium  OfferType = "premium"
)

// ValidOfferType reports whether t is one of the known variant tiers
func ValidOfferType(t OfferType) bool {
	switch t {
	case OfferTypeBasic, OfferTypeStandard, OfferTypePremium:
		return true
	}
	return false
}

type Offer struct {
	ID                 uint      `gorm:"primarykey" json:"id"`
	Title              string    `gorm:"not null" json:"title"`
	Description        string    `gorm:"type:text" json:"description"`
	Price              *float64  `json:"price"`
	DeliveryTimeInDays *int      `json:"delivery_time_in_days"`
	Image              string    `json:"image"`
	UserID             uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	User    User          `gorm:"foreignKey:UserID" json:"-"`
	Details []OfferDetail `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

func (Offer) TableName() string {
	return "offers"
}

// OfferDetail is one variant tier of an offer. At most one detail exists per
// (offer, offer_type); enforced by the update-time merge in the offer service.
type OfferDetail struct {
	ID                 uint                        `gorm:"primarykey" json:"id"`
	OfferID            uint                        `gorm:"index;not null" json:"offer_id"`
	VariantTitle       string                      `json:"title"`
	VariantPrice       *float64                    `json:"price"`
	DeliveryTimeInDays *int                        `json:"delivery_time_in_days"`
	RevisionLimit      *int                        `json:"revisions"`
	AdditionalDetails  string                      `gorm:"type:text" json:"additional_details"`
	OfferType          OfferType                   `gorm:"type:varchar(50);index" json:"offer_type"`
	Features           datatypes.JSONSlice[string] `json:"features"`

	Offer Offer `gorm:"foreignKey:OfferID" json:"-"`
}

func (OfferDetail) TableName() string {
	return "offer_details"
}

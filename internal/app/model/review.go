package model

import (
	"time"
)

// Review rates a provider. The composite unique index backs the
// application-level "one review per (reviewer, provider)" check so that two
// concurrent creations cannot both slip past it.
type Review struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Rating         int       `gorm:"not null" json:"rating"`
	Description    string    `gorm:"type:text" json:"description"`
	BusinessUserID uint      `gorm:"not null;index:idx_reviews_business_reviewer,unique" json:"business_user_id"`
	ReviewerID     uint      `gorm:"not null;index:idx_reviews_business_reviewer,unique" json:"reviewer_id"`
	OfferID        uint      `gorm:"index;not null" json:"offer_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	BusinessUser User  `gorm:"foreignKey:BusinessUserID" json:"-"`
	Reviewer     User  `gorm:"foreignKey:ReviewerID" json:"-"`
	Offer        Offer `gorm:"foreignKey:OfferID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}

package model

import (
	"time"
)

// BusinessProfile marks a user as a provider. A user carries at most one of
// BusinessProfile or CustomerProfile; having both is an error state that the
// classifier surfaces instead of silently preferring one.
type BusinessProfile struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CompanyName    string    `gorm:"not null" json:"company_name"`
	CompanyAddress string    `gorm:"type:text" json:"company_address"`
	CompanyWebsite string    `json:"company_website"`
	Description    string    `gorm:"type:text" json:"description"`
	Tel            string    `json:"tel"`
	Location       string    `json:"location"`
	WorkingHours   string    `json:"working_hours"`
	Email          string    `json:"email"`
	ProfileImage   string    `json:"profile_image"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (BusinessProfile) TableName() string {
	return "business_profiles"
}

type CustomerProfile struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	File        string     `json:"file"` // profile image URL
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CustomerProfile) TableName() string {
	return "customer_profiles"
}

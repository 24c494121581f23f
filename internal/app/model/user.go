package model

import (
	"time"
)

// UserType classifies an account by the profile record attached to it.
// No role flag is stored on the user row; the type is derived from the
// presence of a BusinessProfile or CustomerProfile on every request.
type UserType string

const (
	TypeBusiness UserType = "business"
	TypeCustomer UserType = "customer"
	TypeUnknown  UserType = "unknown"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsSuperuser  bool      `gorm:"default:false" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	BusinessProfile *BusinessProfile `gorm:"foreignKey:UserID" json:"business_profile,omitempty"`
	CustomerProfile *CustomerProfile `gorm:"foreignKey:UserID" json:"customer_profile,omitempty"`
	Offers          []Offer          `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

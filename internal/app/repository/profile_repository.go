package repository

import (
	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	CreateBusiness(profile *model.BusinessProfile) error
	CreateCustomer(profile *model.CustomerProfile) error
	FindBusinessByUserID(userID uint) (*model.BusinessProfile, error)
	FindCustomerByUserID(userID uint) (*model.CustomerProfile, error)
	ListBusiness() ([]model.BusinessProfile, error)
	ListCustomer() ([]model.CustomerProfile, error)
	UpdateBusiness(profile *model.BusinessProfile) error
	UpdateCustomer(profile *model.CustomerProfile) error
	CountBusiness() (int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) CreateBusiness(profile *model.BusinessProfile) error {
	logger.Debug("Creating business profile in database", map[string]interface{}{
		"user_id": profile.UserID,
	})

	if err := r.db.Create(profile).Error; err != nil {
		logger.Error("Failed to create business profile in database", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return err
	}
	return nil
}

func (r *profileRepository) CreateCustomer(profile *model.CustomerProfile) error {
	logger.Debug("Creating customer profile in database", map[string]interface{}{
		"user_id": profile.UserID,
	})

	if err := r.db.Create(profile).Error; err != nil {
		logger.Error("Failed to create customer profile in database", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return err
	}
	return nil
}

func (r *profileRepository) FindBusinessByUserID(userID uint) (*model.BusinessProfile, error) {
	var profile model.BusinessProfile
	err := r.db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		logger.Debug("Failed to find business profile in database", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindCustomerByUserID(userID uint) (*model.CustomerProfile, error) {
	var profile model.CustomerProfile
	err := r.db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		logger.Debug("Failed to find customer profile in database", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) ListBusiness() ([]model.BusinessProfile, error) {
	var profiles []model.BusinessProfile
	err := r.db.Preload("User").Order("user_id ASC").Find(&profiles).Error
	if err != nil {
		logger.Error("Failed to list business profiles from database", err, nil)
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) ListCustomer() ([]model.CustomerProfile, error) {
	var profiles []model.CustomerProfile
	err := r.db.Preload("User").Order("user_id ASC").Find(&profiles).Error
	if err != nil {
		logger.Error("Failed to list customer profiles from database", err, nil)
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) UpdateBusiness(profile *model.BusinessProfile) error {
	logger.Debug("Updating business profile in database", map[string]interface{}{
		"user_id": profile.UserID,
	})

	if err := r.db.Save(profile).Error; err != nil {
		logger.Error("Failed to update business profile in database", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return err
	}
	return nil
}

func (r *profileRepository) UpdateCustomer(profile *model.CustomerProfile) error {
	logger.Debug("Updating customer profile in database", map[string]interface{}{
		"user_id": profile.UserID,
	})

	if err := r.db.Save(profile).Error; err != nil {
		logger.Error("Failed to update customer profile in database", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return err
	}
	return nil
}

func (r *profileRepository) CountBusiness() (int64, error) {
	var count int64
	if err := r.db.Model(&model.BusinessProfile{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count business profiles in database", err, nil)
		return 0, err
	}
	return count, nil
}

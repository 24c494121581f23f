package repository

import (
	"fmt"
	"strings"

	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"gorm.io/gorm"
)

// OrderTerm is a single whitelisted ordering clause. Column validation
// happens in the service layer before it reaches the repository.
type OrderTerm struct {
	Column string
	Desc   bool
}

type OfferFilter struct {
	CreatorID       *uint
	MinPrice        *float64
	MaxPrice        *float64
	MaxDeliveryTime *int
	Search          string
	Ordering        []OrderTerm
	Limit           int
	Offset          int
}

type OfferRepository interface {
	Create(offer *model.Offer) error
	FindByID(id uint) (*model.Offer, error)
	FindWithFilter(filter OfferFilter) ([]model.Offer, int64, error)
	FindDetailByID(id uint) (*model.OfferDetail, error)
	Count() (int64, error)
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(offer *model.Offer) error {
	logger.Debug("Creating offer in database", map[string]interface{}{
		"title":   offer.Title,
		"user_id": offer.UserID,
	})

	if err := r.db.Create(offer).Error; err != nil {
		logger.Error("Failed to create offer in database", err, map[string]interface{}{
			"title": offer.Title,
		})
		return err
	}

	logger.Debug("Offer created in database", map[string]interface{}{
		"offer_id": offer.ID,
	})
	return nil
}

func (r *offerRepository) FindByID(id uint) (*model.Offer, error) {
	var offer model.Offer
	err := r.db.Preload("Details").Preload("User").First(&offer, id).Error
	if err != nil {
		logger.Debug("Failed to find offer by ID in database", map[string]interface{}{
			"offer_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) FindWithFilter(filter OfferFilter) ([]model.Offer, int64, error) {
	query := r.db.Model(&model.Offer{})

	if filter.CreatorID != nil {
		query = query.Where("user_id = ?", *filter.CreatorID)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.MaxDeliveryTime != nil {
		query = query.Where("delivery_time_in_days <= ?", *filter.MaxDeliveryTime)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count offers in database", err, nil)
		return nil, 0, err
	}

	for _, term := range filter.Ordering {
		direction := "ASC"
		if term.Desc {
			direction = "DESC"
		}
		query = query.Order(fmt.Sprintf("%s %s", term.Column, direction))
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var offers []model.Offer
	if err := query.Preload("Details").Preload("User").Find(&offers).Error; err != nil {
		logger.Error("Failed to list offers from database", err, nil)
		return nil, 0, err
	}

	return offers, total, nil
}

func (r *offerRepository) FindDetailByID(id uint) (*model.OfferDetail, error) {
	var detail model.OfferDetail
	err := r.db.First(&detail, id).Error
	if err != nil {
		logger.Debug("Failed to find offer detail by ID in database", map[string]interface{}{
			"detail_id": id,
			"error":     err.Error(),
		})
		return nil, err
	}
	return &detail, nil
}

func (r *offerRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Offer{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count offers in database", err, nil)
		return 0, err
	}
	return count, nil
}

package repository

import (
	"fmt"

	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewFilter struct {
	BusinessUserID *uint
	ReviewerID     *uint
	OfferID        *uint
	Ordering       []OrderTerm
	Limit          int
	Offset         int
}

type ReviewRepository interface {
	Create(review *model.Review) error
	FindByID(id uint) (*model.Review, error)
	FindWithFilter(filter ReviewFilter) ([]model.Review, int64, error)
	Update(review *model.Review) error
	Delete(id uint) error
	ExistsForPair(tx *gorm.DB, businessUserID, reviewerID uint) (bool, error)
	AverageRatingForBusinessUser(businessUserID uint) (*float64, error)
	AverageRating() (*float64, error)
	Count() (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *model.Review) error {
	logger.Debug("Creating review in database", map[string]interface{}{
		"business_user_id": review.BusinessUserID,
		"reviewer_id":      review.ReviewerID,
		"rating":           review.Rating,
	})

	if err := r.db.Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"business_user_id": review.BusinessUserID,
			"reviewer_id":      review.ReviewerID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	err := r.db.First(&review, id).Error
	if err != nil {
		logger.Debug("Failed to find review by ID in database", map[string]interface{}{
			"review_id": id,
			"error":     err.Error(),
		})
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindWithFilter(filter ReviewFilter) ([]model.Review, int64, error) {
	query := r.db.Model(&model.Review{})

	if filter.BusinessUserID != nil {
		query = query.Where("business_user_id = ?", *filter.BusinessUserID)
	}
	if filter.ReviewerID != nil {
		query = query.Where("reviewer_id = ?", *filter.ReviewerID)
	}
	if filter.OfferID != nil {
		query = query.Where("offer_id = ?", *filter.OfferID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count reviews in database", err, nil)
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

	var reviews []model.Review
	if err := query.Find(&reviews).Error; err != nil {
		logger.Error("Failed to list reviews from database", err, nil)
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) Update(review *model.Review) error {
	logger.Debug("Updating review in database", map[string]interface{}{
		"review_id": review.ID,
	})

	if err := r.db.Save(review).Error; err != nil {
		logger.Error("Failed to update review in database", err, map[string]interface{}{
			"review_id": review.ID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) Delete(id uint) error {
	logger.Debug("Deleting review from database", map[string]interface{}{
		"review_id": id,
	})

	if err := r.db.Delete(&model.Review{}, id).Error; err != nil {
		logger.Error("Failed to delete review from database", err, map[string]interface{}{
			"review_id": id,
		})
		return err
	}
	return nil
}

// ExistsForPair runs on tx when given so callers can keep the duplicate
// check inside their transaction; nil falls back to the repository handle.
func (r *reviewRepository) ExistsForPair(tx *gorm.DB, businessUserID, reviewerID uint) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	var count int64
	err := tx.Model(&model.Review{}).
		Where("business_user_id = ? AND reviewer_id = ?", businessUserID, reviewerID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check existing review in database", err, map[string]interface{}{
			"business_user_id": businessUserID,
			"reviewer_id":      reviewerID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *reviewRepository) AverageRatingForBusinessUser(businessUserID uint) (*float64, error) {
	return r.averageRating(r.db.Model(&model.Review{}).Where("business_user_id = ?", businessUserID))
}

func (r *reviewRepository) AverageRating() (*float64, error) {
	return r.averageRating(r.db.Model(&model.Review{}))
}

func (r *reviewRepository) averageRating(query *gorm.DB) (*float64, error) {
	var result struct {
		Avg *float64
	}
	if err := query.Select("AVG(rating) AS avg").Scan(&result).Error; err != nil {
		logger.Error("Failed to compute average rating in database", err, nil)
		return nil, err
	}
	return result.Avg, nil
}

func (r *reviewRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Review{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count reviews in database", err, nil)
		return 0, err
	}
	return count, nil
}

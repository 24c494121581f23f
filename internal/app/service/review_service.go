package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/internal/app/repository"
	apperrors "github.com/coderr-app/coderr-backend/internal/errors"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotCustomer     = errors.New("only customers can write reviews")
	ErrAlreadyReviewed = errors.New("reviewer has already reviewed this provider")
	ErrNotReviewOwner  = errors.New("review belongs to another reviewer")
)

var reviewOrderingFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"rating":     true,
}

type ReviewData struct {
	ID            uint        `json:"id"`
	Rating        int         `json:"rating"`
	Description   string      `json:"description"`
	BusinessUser  UserSummary `json:"business_user"`
	Reviewer      UserSummary `json:"reviewer"`
	OfferID       uint        `json:"offer_id"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	AverageRating float64     `json:"average_rating"`
}

type ReviewQuery struct {
	BusinessUserID *uint
	ReviewerID     *uint
	OfferID        *uint
	Ordering       string
	Limit          int
	Offset         int
}

type ReviewCreateInput struct {
	Rating         int    `json:"rating" binding:"required"`
	Description    string `json:"description"`
	BusinessUserID uint   `json:"business_user_id" binding:"required"`
	OfferID        uint   `json:"offer_id" binding:"required"`
}

type ReviewUpdateInput struct {
	Rating      *int    `json:"rating"`
	Description *string `json:"description"`
}

type ReviewService interface {
	CreateReview(reviewerID uint, input ReviewCreateInput) (*ReviewData, error)
	ListReviews(query ReviewQuery) ([]ReviewData, int64, error)
	UpdateReview(reviewerID, reviewID uint, input ReviewUpdateInput) (*ReviewData, error)
	DeleteReview(reviewerID, reviewID uint) error
}

type reviewService struct {
	reviewRepo     repository.ReviewRepository
	userRepo       repository.UserRepository
	offerRepo      repository.OfferRepository
	profileService ProfileService
	db             *gorm.DB
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	offerRepo repository.OfferRepository,
	profileService ProfileService,
	db *gorm.DB,
) ReviewService {
	return &reviewService{
		reviewRepo:     reviewRepo,
		userRepo:       userRepo,
		offerRepo:      offerRepo,
		profileService: profileService,
		db:             db,
	}
}

// CreateReview enforces one review per (reviewer, provider) pair. The
// duplicate check and the insert run in one transaction, and the composite
// unique index catches whatever still races past it.
func (s *reviewService) CreateReview(reviewerID uint, input ReviewCreateInput) (*ReviewData, error) {
	logger.Info("Creating review", map[string]interface{}{
		"reviewer_id":      reviewerID,
		"business_user_id": input.BusinessUserID,
		"rating":           input.Rating,
	})

	userType, err := s.profileService.Classify(reviewerID)
	if err != nil {
		return nil, err
	}
	if userType != model.TypeCustomer {
		logger.Warn("Review creation rejected: requester is not a customer", map[string]interface{}{
			"reviewer_id": reviewerID,
			"user_type":   userType,
		})
		return nil, ErrNotCustomer
	}

	if _, err := s.userRepo.FindByID(input.BusinessUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if _, err := s.offerRepo.FindByID(input.OfferID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}

	review := &model.Review{
		Rating:         input.Rating,
		Description:    input.Description,
		BusinessUserID: input.BusinessUserID,
		ReviewerID:     reviewerID,
		OfferID:        input.OfferID,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during review creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"reviewer_id": reviewerID,
			})
		}
	}()

	exists, err := s.reviewRepo.ExistsForPair(tx, input.BusinessUserID, reviewerID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if exists {
		tx.Rollback()
		logger.Warn("Review creation rejected: already reviewed", map[string]interface{}{
			"reviewer_id":      reviewerID,
			"business_user_id": input.BusinessUserID,
		})
		return nil, ErrAlreadyReviewed
	}

	if err := tx.Create(review).Error; err != nil {
		tx.Rollback()
		if apperrors.IsDuplicateKey(err) {
			return nil, ErrAlreadyReviewed
		}
		logger.Error("Failed to create review", err, map[string]interface{}{
			"reviewer_id": reviewerID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit review creation", err, map[string]interface{}{
			"reviewer_id": reviewerID,
		})
		return nil, err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id": review.ID,
	})

	return s.buildReviewData(review)
}

func (s *reviewService) ListReviews(query ReviewQuery) ([]ReviewData, int64, error) {
	filter := repository.ReviewFilter{
		BusinessUserID: query.BusinessUserID,
		ReviewerID:     query.ReviewerID,
		OfferID:        query.OfferID,
		Ordering:       parseOrdering(query.Ordering, reviewOrderingFields, defaultReviewOrdering()),
		Limit:          query.Limit,
		Offset:         query.Offset,
	}

	reviews, total, err := s.reviewRepo.FindWithFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]ReviewData, 0, len(reviews))
	for i := range reviews {
		data, err := s.buildReviewData(&reviews[i])
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *data)
	}
	return result, total, nil
}

func (s *reviewService) UpdateReview(reviewerID, reviewID uint, input ReviewUpdateInput) (*ReviewData, error) {
	review, err := s.findOwnReview(reviewerID, reviewID)
	if err != nil {
		return nil, err
	}

	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Description != nil {
		review.Description = *input.Description
	}

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	logger.Info("Review updated", map[string]interface{}{
		"review_id": reviewID,
	})

	return s.buildReviewData(review)
}

func (s *reviewService) DeleteReview(reviewerID, reviewID uint) error {
	if _, err := s.findOwnReview(reviewerID, reviewID); err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return err
	}

	logger.Info("Review deleted", map[string]interface{}{
		"review_id": reviewID,
	})
	return nil
}

func (s *reviewService) findOwnReview(reviewerID, reviewID uint) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.ReviewerID != reviewerID {
		logger.Warn("Review access rejected: requester is not the reviewer", map[string]interface{}{
			"review_id":   reviewID,
			"reviewer_id": reviewerID,
		})
		return nil, ErrNotReviewOwner
	}
	return review, nil
}

func (s *reviewService) buildReviewData(review *model.Review) (*ReviewData, error) {
	businessUser, err := s.userRepo.FindByID(review.BusinessUserID)
	if err != nil {
		return nil, err
	}
	businessSummary, err := s.profileService.Summarize(businessUser)
	if err != nil {
		return nil, err
	}

	reviewer, err := s.userRepo.FindByID(review.ReviewerID)
	if err != nil {
		return nil, err
	}
	reviewerSummary, err := s.profileService.Summarize(reviewer)
	if err != nil {
		return nil, err
	}

	avg, err := s.reviewRepo.AverageRatingForBusinessUser(review.BusinessUserID)
	if err != nil {
		return nil, err
	}
	average := 0.0
	if avg != nil {
		average = RoundRating(*avg)
	}

	return &ReviewData{
		ID:            review.ID,
		Rating:        review.Rating,
		Description:   review.Description,
		BusinessUser:  *businessSummary,
		Reviewer:      *reviewerSummary,
		OfferID:       review.OfferID,
		CreatedAt:     review.CreatedAt,
		UpdatedAt:     review.UpdatedAt,
		AverageRating: average,
	}, nil
}

func defaultReviewOrdering() []repository.OrderTerm {
	return []repository.OrderTerm{{Column: "updated_at", Desc: true}}
}

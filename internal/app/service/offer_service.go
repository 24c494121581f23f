package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/internal/app/repository"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrOfferNotFound    = errors.New("offer not found")
	ErrOfferNotOwned    = errors.New("offer not found or not owned by requester")
	ErrNotProvider      = errors.New("only providers can create offers")
	ErrInvalidOfferType = errors.New("offer_type must be 'basic', 'standard' or 'premium'")
	ErrDuplicateTier    = errors.New("an offer can only have one detail per offer_type")
)

// offerOrderingFields is the whitelist for the ordering query parameter.
// Unknown fields are silently ignored.
var offerOrderingFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"price":      true,
}

type OfferData struct {
	ID                 uint                 `json:"id"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	Price              *float64             `json:"price"`
	DeliveryTimeInDays *int                 `json:"delivery_time_in_days"`
	MinPrice           *float64             `json:"min_price"`
	MinDeliveryTime    *int                 `json:"min_delivery_time"`
	Image              string               `json:"image"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	Details            []model.OfferDetail  `json:"details"`
	User               UserSummary          `json:"user"`
	BusinessProfile    *BusinessProfileData `json:"business_profile"`
}

type OfferQuery struct {
	CreatorID       *uint
	MinPrice        *float64
	MaxPrice        *float64
	MaxDeliveryTime *int
	Search          string
	Ordering        string
	Limit           int
	Offset          int
}

type OfferDetailInput struct {
	Title              *string   `json:"title"`
	Price              *float64  `json:"price"`
	DeliveryTimeInDays *int      `json:"delivery_time_in_days"`
	Revisions          *int      `json:"revisions"`
	AdditionalDetails  *string   `json:"additional_details"`
	OfferType          string    `json:"offer_type" binding:"required"`
	Features           *[]string `json:"features"`
}

type OfferCreateInput struct {
	Title              string             `json:"title" binding:"required"`
	Description        string             `json:"description"`
	Price              *float64           `json:"price"`
	DeliveryTimeInDays *int               `json:"delivery_time_in_days"`
	Image              string             `json:"image"`
	Details            []OfferDetailInput `json:"details"`
}

type OfferUpdateInput struct {
	Title              *string            `json:"title"`
	Description        *string            `json:"description"`
	Price              *float64           `json:"price"`
	DeliveryTimeInDays *int               `json:"delivery_time_in_days"`
	Image              *string            `json:"image"`
	Details            []OfferDetailInput `json:"details"`
}

type OfferService interface {
	ListOffers(requesterID *uint, query OfferQuery) ([]OfferData, int64, error)
	GetOffer(id uint) (*OfferData, error)
	CreateOffer(userID uint, input OfferCreateInput) (*OfferData, error)
	UpdateOffer(userID, offerID uint, input OfferUpdateInput) (*OfferData, error)
	DeleteOffer(userID, offerID uint) error
}

type offerService struct {
	offerRepo      repository.OfferRepository
	profileService ProfileService
	db             *gorm.DB
}

func NewOfferService(
	offerRepo repository.OfferRepository,
	profileService ProfileService,
	db *gorm.DB,
) OfferService {
	return &offerService{
		offerRepo:      offerRepo,
		profileService: profileService,
		db:             db,
	}
}

// ListOffers applies the visibility rule before the query filters: an
// explicit creator_id wins over everything, otherwise a business requester
// only sees their own offers and everyone else sees all of them.
func (s *offerService) ListOffers(requesterID *uint, query OfferQuery) ([]OfferData, int64, error) {
	filter := repository.OfferFilter{
		CreatorID:       query.CreatorID,
		MinPrice:        query.MinPrice,
		MaxPrice:        query.MaxPrice,
		MaxDeliveryTime: query.MaxDeliveryTime,
		Search:          query.Search,
		Ordering:        parseOrdering(query.Ordering, offerOrderingFields, defaultOfferOrdering()),
		Limit:           query.Limit,
		Offset:          query.Offset,
	}

	if filter.CreatorID == nil && requesterID != nil {
		userType, err := s.profileService.Classify(*requesterID)
		if err != nil {
			return nil, 0, err
		}
		if userType == model.TypeBusiness {
			filter.CreatorID = requesterID
		}
	}

	offers, total, err := s.offerRepo.FindWithFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]OfferData, 0, len(offers))
	for i := range offers {
		data, err := s.buildOfferData(&offers[i])
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *data)
	}
	return result, total, nil
}

func (s *offerService) GetOffer(id uint) (*OfferData, error) {
	offer, err := s.offerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return s.buildOfferData(offer)
}

func (s *offerService) CreateOffer(userID uint, input OfferCreateInput) (*OfferData, error) {
	logger.Info("Creating offer", map[string]interface{}{
		"user_id": userID,
		"title":   input.Title,
	})

	userType, err := s.profileService.Classify(userID)
	if err != nil {
		return nil, err
	}
	if userType != model.TypeBusiness {
		logger.Warn("Offer creation rejected: requester is not a provider", map[string]interface{}{
			"user_id":   userID,
			"user_type": userType,
		})
		return nil, ErrNotProvider
	}

	details, err := buildDetails(input.Details)
	if err != nil {
		return nil, err
	}

	offer := &model.Offer{
		Title:              input.Title,
		Description:        input.Description,
		Price:              input.Price,
		DeliveryTimeInDays: input.DeliveryTimeInDays,
		Image:              input.Image,
		UserID:             userID,
		Details:            details,
	}

	if err := s.offerRepo.Create(offer); err != nil {
		return nil, err
	}

	logger.Info("Offer created", map[string]interface{}{
		"offer_id":     offer.ID,
		"user_id":      userID,
		"detail_count": len(offer.Details),
	})

	return s.GetOffer(offer.ID)
}

// UpdateOffer merges nested details by offer_type: a tier that already
// exists on the offer is overwritten in place, a new tier is appended.
// Tiers absent from the payload are left untouched.
func (s *offerService) UpdateOffer(userID, offerID uint, input OfferUpdateInput) (*OfferData, error) {
	offer, err := s.findOwnedOffer(userID, offerID)
	if err != nil {
		return nil, err
	}

	logger.Info("Updating offer", map[string]interface{}{
		"offer_id": offerID,
		"user_id":  userID,
	})

	if err := validateDetailInputs(input.Details); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during offer update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"offer_id": offerID,
			})
		}
	}()

	if input.Title != nil {
		offer.Title = *input.Title
	}
	if input.Description != nil {
		offer.Description = *input.Description
	}
	if input.Price != nil {
		offer.Price = input.Price
	}
	if input.DeliveryTimeInDays != nil {
		offer.DeliveryTimeInDays = input.DeliveryTimeInDays
	}
	if input.Image != nil {
		offer.Image = *input.Image
	}
	if err := tx.Omit("Details").Save(offer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	existing := make(map[model.OfferType]*model.OfferDetail, len(offer.Details))
	for i := range offer.Details {
		existing[offer.Details[i].OfferType] = &offer.Details[i]
	}

	for _, detailInput := range input.Details {
		tier := model.OfferType(detailInput.OfferType)
		if current, ok := existing[tier]; ok {
			applyDetailInput(current, detailInput)
			if err := tx.Save(current).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		} else {
			detail := model.OfferDetail{OfferID: offer.ID, OfferType: tier}
			applyDetailInput(&detail, detailInput)
			if err := tx.Create(&detail).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit offer update", err, map[string]interface{}{
			"offer_id": offerID,
		})
		return nil, err
	}

	return s.GetOffer(offerID)
}

// DeleteOffer removes the offer and everything hanging off it: details,
// orders placed against it and reviews referencing it.
func (s *offerService) DeleteOffer(userID, offerID uint) error {
	if _, err := s.findOwnedOffer(userID, offerID); err != nil {
		return err
	}

	logger.Info("Deleting offer", map[string]interface{}{
		"offer_id": offerID,
		"user_id":  userID,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during offer deletion, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"offer_id": offerID,
			})
		}
	}()

	if err := tx.Where("offer_id = ?", offerID).Delete(&model.Review{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("offer_id = ?", offerID).Delete(&model.Order{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("offer_id = ?", offerID).Delete(&model.OfferDetail{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&model.Offer{}, offerID).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit offer deletion", err, map[string]interface{}{
			"offer_id": offerID,
		})
		return err
	}

	logger.Info("Offer deleted", map[string]interface{}{
		"offer_id": offerID,
	})
	return nil
}

// findOwnedOffer loads an offer scoped to its creator. A missing offer and
// a foreign offer are indistinguishable to the caller on purpose.
func (s *offerService) findOwnedOffer(userID, offerID uint) (*model.Offer, error) {
	var offer model.Offer
	err := s.db.Preload("Details").Where("id = ? AND user_id = ?", offerID, userID).First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Offer not found or not owned by requester", map[string]interface{}{
				"offer_id": offerID,
				"user_id":  userID,
			})
			return nil, ErrOfferNotOwned
		}
		return nil, err
	}
	return &offer, nil
}

func (s *offerService) buildOfferData(offer *model.Offer) (*OfferData, error) {
	user := offer.User
	if user.ID == 0 {
		var loaded model.User
		if err := s.db.First(&loaded, offer.UserID).Error; err != nil {
			return nil, err
		}
		user = loaded
	}

	summary, err := s.profileService.Summarize(&user)
	if err != nil {
		return nil, err
	}

	var businessProfile *BusinessProfileData
	if summary.Type == model.TypeBusiness {
		businessProfile, err = s.profileService.GetBusinessProfile(user.ID)
		if err != nil && !errors.Is(err, ErrBusinessProfileNotFound) {
			return nil, err
		}
	}

	details := offer.Details
	if details == nil {
		details = []model.OfferDetail{}
	}

	return &OfferData{
		ID:                 offer.ID,
		Title:              offer.Title,
		Description:        offer.Description,
		Price:              offer.Price,
		DeliveryTimeInDays: offer.DeliveryTimeInDays,
		MinPrice:           offer.Price,
		MinDeliveryTime:    offer.DeliveryTimeInDays,
		Image:              offer.Image,
		CreatedAt:          offer.CreatedAt,
		UpdatedAt:          offer.UpdatedAt,
		Details:            details,
		User:               *summary,
		BusinessProfile:    businessProfile,
	}, nil
}

func buildDetails(inputs []OfferDetailInput) ([]model.OfferDetail, error) {
	if err := validateDetailInputs(inputs); err != nil {
		return nil, err
	}

	details := make([]model.OfferDetail, 0, len(inputs))
	for _, input := range inputs {
		detail := model.OfferDetail{OfferType: model.OfferType(input.OfferType)}
		applyDetailInput(&detail, input)
		details = append(details, detail)
	}
	return details, nil
}

func validateDetailInputs(inputs []OfferDetailInput) error {
	seen := make(map[model.OfferType]bool, len(inputs))
	for _, input := range inputs {
		tier := model.OfferType(input.OfferType)
		if !model.ValidOfferType(tier) {
			return ErrInvalidOfferType
		}
		if seen[tier] {
			return ErrDuplicateTier
		}
		seen[tier] = true
	}
	return nil
}

func applyDetailInput(detail *model.OfferDetail, input OfferDetailInput) {
	if input.Title != nil {
		detail.VariantTitle = *input.Title
	}
	if input.Price != nil {
		detail.VariantPrice = input.Price
	}
	if input.DeliveryTimeInDays != nil {
		detail.DeliveryTimeInDays = input.DeliveryTimeInDays
	}
	if input.Revisions != nil {
		detail.RevisionLimit = input.Revisions
	}
	if input.AdditionalDetails != nil {
		detail.AdditionalDetails = *input.AdditionalDetails
	}
	if input.Features != nil {
		detail.Features = datatypes.JSONSlice[string](*input.Features)
	}
}

func defaultOfferOrdering() []repository.OrderTerm {
	return []repository.OrderTerm{
		{Column: "created_at", Desc: true},
		{Column: "price"},
	}
}

// parseOrdering turns a comma-separated ordering parameter ("-created_at,price")
// into order terms, dropping any field outside the whitelist.
func parseOrdering(raw string, allowed map[string]bool, fallback []repository.OrderTerm) []repository.OrderTerm {
	if raw == "" {
		return fallback
	}

	var terms []repository.OrderTerm
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if allowed[field] {
			terms = append(terms, repository.OrderTerm{Column: field, Desc: desc})
		}
	}
	if len(terms) == 0 {
		return fallback
	}
	return terms
}

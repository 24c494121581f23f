package service

import (
	"testing"

	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/internal/app/repository"
	"github.com/coderr-app/coderr-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOfferServiceTest(t *testing.T) (OfferService, *gorm.DB, *model.User, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	profileRepo := repository.NewProfileRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	offerRepo := repository.NewOfferRepository(testDB)
	profileService := NewProfileService(userRepo, profileRepo, orderRepo, reviewRepo, testDB)
	offerService := NewOfferService(offerRepo, profileService, testDB)

	provider := createBusinessUser(t, testDB, "provider")
	customer := createCustomerUser(t, testDB, "customer")

	return offerService, testDB, provider, customer
}

func sampleOfferInput() OfferCreateInput {
	price := 100.0
	delivery := 7
	revisions := 2
	basicTitle := "Basic Design"
	features := []string{"Logo Design", "Visitenkarte"}
	return OfferCreateInput{
		Title:              "Website Design",
		Description:        "Professional website design",
		Price:              &price,
		DeliveryTimeInDays: &delivery,
		Details: []OfferDetailInput{
			{
				Title:              &basicTitle,
				Price:              &price,
				DeliveryTimeInDays: &delivery,
				Revisions:          &revisions,
				OfferType:          "basic",
				Features:           &features,
			},
		},
	}
}

func TestOfferService_CreateOffer_Success(t *testing.T) {
	offerService, _, provider, _ := setupOfferServiceTest(t)

	offer, err := offerService.CreateOffer(provider.ID, sampleOfferInput())
	require.NoError(t, err)
	assert.NotZero(t, offer.ID)
	assert.Equal(t, "Website Design", offer.Title)
	require.Len(t, offer.Details, 1)
	assert.Equal(t, model.OfferTypeBasic, offer.Details[0].OfferType)
	assert.Equal(t, []string{"Logo Design", "Visitenkarte"}, []string(offer.Details[0].Features))
	assert.Equal(t, provider.Username, offer.User.Username)

	// min_price and min_delivery_time mirror the offer-level fields.
	require.NotNil(t, offer.MinPrice)
	assert.Equal(t, 100.0, *offer.MinPrice)
	require.NotNil(t, offer.MinDeliveryTime)
	assert.Equal(t, 7, *offer.MinDeliveryTime)
}

func TestOfferService_CreateOffer_CustomerRejected(t *testing.T) {
	offerService, _, _, customer := setupOfferServiceTest(t)

	_, err := offerService.CreateOffer(customer.ID, sampleOfferInput())
	assert.ErrorIs(t, err, ErrNotProvider)
}

func TestOfferService_CreateOffer_InvalidOfferType(t *testing.T) {
	offerService, _, provider, _ := setupOfferServiceTest(t)

	input := sampleOfferInput()
	input.Details[0].OfferType = "platinum"
	_, err := offerService.CreateOffer(provider.ID, input)
	assert.ErrorIs(t, err, ErrInvalidOfferType)
}

func TestOfferService_CreateOffer_DuplicateTier(t *testing.T) {
	offerService, _, provider, _ := setupOfferServiceTest(t)

	input := sampleOfferInput()
	input.Details = append(input.Details, OfferDetailInput{OfferType: "basic"})
	_, err := offerService.CreateOffer(provider.ID, input)
	assert.ErrorIs(t, err, ErrDuplicateTier)
}

func TestOfferService_GetOffer_NotFound(t *testing.T) {
	offerService, _, _, _ := setupOfferServiceTest(t)

	_, err := offerService.GetOffer(9999)
	assert.ErrorIs(t, err, ErrOfferNotFound)
}

func TestOfferService_ListOffers_CreatorIDWinsOverRole(t *testing.T) {
	offerService, testDB, provider, _ := setupOfferServiceTest(t)

	other := createBusinessUser(t, testDB, "otherprovider")

	_, err := offerService.CreateOffer(provider.ID, sampleOfferInput())
	require.NoError(t, err)
	otherInput := sampleOfferInput()
	otherInput.Title = "Other Offer"
	_, err = offerService.CreateOffer(other.ID, otherInput)
	require.NoError(t, err)

	// A business requester normally only sees their own offers, but an
	// explicit creator_id takes precedence.
	offers, total, err := offerService.ListOffers(&provider.ID, OfferQuery{
		CreatorID: &other.ID,
		Limit:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Other Offer", offers[0].Title)
}

func TestOfferService_ListOffers_BusinessSeesOnlyOwn(t *testing.T) {
	offerService, testDB, provider, customer := setupOfferServiceTest(t)

	other := createBusinessUser(t, testDB, "otherprovider")

	_, err := offerService.CreateOffer(provider.ID, sampleOfferInput())
	require.NoError(t, err)
	_, err = offerService.CreateOffer(other.ID, sampleOfferInput())
	require.NoError(t, err)

	offers, total, err := offerService.ListOffers(&provider.ID, OfferQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, provider.ID, offers[0].User.ID)

	// Customers and anonymous requesters see everything.
	_, total, err = offerService.ListOffers(&customer.ID, OfferQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = offerService.ListOffers(nil, OfferQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestOfferService_UpdateOffer_MergesDetailsByTier(t *testing.T) {
	offerService, _, provider, _ := setupOfferServiceTest(t)

	created, err := offerService.CreateOffer(provider.ID, sampleOfferInput())
	require.NoError(t, err)

	newPrice := 150.0
	premiumPrice := 500.0
	newFeatures := []string{"Logo Design", "Flyer"}
	updated, err := offerService.UpdateOffer(provider.ID, created.ID, OfferUpdateInput{
		Details: []OfferDetailInput{
			{OfferType: "basic", Price: &newPrice, Features: &newFeatures},
			{OfferType: "premium", Price: &premiumPrice},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Details, 2)

	byTier := make(map[model.OfferType]model.OfferDetail)
	for _, d := range updated.Details {
		byTier[d.OfferType] = d
	}
	assert.Equal(t, 150.0, *byTier[model.OfferTypeBasic].VariantPrice)
	assert.Equal(t, []string{"Logo Design", "Flyer"}, []string(byTier[model.OfferTypeBasic].Features))
	assert.Equal(t, 500.0, *byTier[model.OfferTypePremium].VariantPrice)
}

func TestOfferService_UpdateOffer_ScalarFields(t *testing.T) {
	offerService, _, provider, _ := setupOfferServiceTest(t)

	created, err := offerService.CreateOffer(provider.ID, sampleOfferInput())
	require.NoError(t, err)

	title := "Renamed Offer"
	updated, err := offerService.UpdateOffer(provider.ID, created.ID, OfferUpdateInput{
		Title: &title,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Offer", updated.Title)
	// Untouched fields survive a partial update.
	assert.Equal(t, created.Description, updated.Description)
	require.Len(t, updated.Details, 1)
}

func TestOfferService_UpdateOffer_NotOwned(t *testing.T) {
	offerService, testDB, provider, _ := setupOfferServiceTest(t)

	other := createBusinessUser(t, testDB, "otherprovider")
	created, err := offerService.CreateOffer(provider.ID, sampleOfferInput())
	require.NoError(t, err)

	title := "Hijacked"
	_, err = offerService.UpdateOffer(other.ID, created.ID, OfferUpdateInput{Title: &title})
	assert.ErrorIs(t, err, ErrOfferNotOwned)
}

func TestOfferService_DeleteOffer_CascadesDependents(t *testing.T) {
	offerService, testDB, provider, customer := setupOfferServiceTest(t)

	created, err := offerService.CreateOffer(provider.ID, sampleOfferInput())
	require.NoError(t, err)

	testDB.Create(&model.Order{
		UserID: customer.ID, BusinessUserID: provider.ID,
		OfferID: created.ID, OfferDetailID: created.Details[0].ID,
		Status: model.OrderStatusInProgress,
	})
	testDB.Create(&model.Review{
		Rating: 5, BusinessUserID: provider.ID, ReviewerID: customer.ID, OfferID: created.ID,
	})

	require.NoError(t, offerService.DeleteOffer(provider.ID, created.ID))

	var offerCount, detailCount, orderCount, reviewCount int64
	testDB.Model(&model.Offer{}).Where("id = ?", created.ID).Count(&offerCount)
	testDB.Model(&model.OfferDetail{}).Where("offer_id = ?", created.ID).Count(&detailCount)
	testDB.Model(&model.Order{}).Where("offer_id = ?", created.ID).Count(&orderCount)
	testDB.Model(&model.Review{}).Where("offer_id = ?", created.ID).Count(&reviewCount)
	assert.Zero(t, offerCount)
	assert.Zero(t, detailCount)
	assert.Zero(t, orderCount)
	assert.Zero(t, reviewCount)
}

func TestOfferService_DeleteOffer_NotOwned(t *testing.T) {
	offerService, _, provider, customer := setupOfferServiceTest(t)

	created, err := offerService.CreateOffer(provider.ID, sampleOfferInput())
	require.NoError(t, err)

	err = offerService.DeleteOffer(customer.ID, created.ID)
	assert.ErrorIs(t, err, ErrOfferNotOwned)
}

func TestParseOrdering(t *testing.T) {
	terms := parseOrdering("-created_at,price", offerOrderingFields, defaultOfferOrdering())
	require.Len(t, terms, 2)
	assert.Equal(t, "created_at", terms[0].Column)
	assert.True(t, terms[0].Desc)
	assert.Equal(t, "price", terms[1].Column)
	assert.False(t, terms[1].Desc)

	// Unknown fields fall back to the default ordering.
	terms = parseOrdering("evil_column", offerOrderingFields, defaultOfferOrdering())
	assert.Equal(t, defaultOfferOrdering(), terms)

	terms = parseOrdering("", offerOrderingFields, defaultOfferOrdering())
	assert.Equal(t, defaultOfferOrdering(), terms)
}

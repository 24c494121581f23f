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

type reviewServiceFixture struct {
	service  ReviewService
	db       *gorm.DB
	provider *model.User
	customer *model.User
	offer    *model.Offer
}

func setupReviewServiceTest(t *testing.T) *reviewServiceFixture {
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
	reviewService := NewReviewService(reviewRepo, userRepo, offerRepo, profileService, testDB)

	provider := createBusinessUser(t, testDB, "provider")
	customer := createCustomerUser(t, testDB, "customer")

	price := 100.0
	offer := &model.Offer{Title: "Offer", Price: &price, UserID: provider.ID}
	testDB.Create(offer)

	return &reviewServiceFixture{
		service:  reviewService,
		db:       testDB,
		provider: provider,
		customer: customer,
		offer:    offer,
	}
}

func (f *reviewServiceFixture) createInput(rating int) ReviewCreateInput {
	return ReviewCreateInput{
		Rating:         rating,
		Description:    "Solid work",
		BusinessUserID: f.provider.ID,
		OfferID:        f.offer.ID,
	}
}

func TestReviewService_CreateReview_Success(t *testing.T) {
	f := setupReviewServiceTest(t)

	review, err := f.service.CreateReview(f.customer.ID, f.createInput(4))
	require.NoError(t, err)
	assert.NotZero(t, review.ID)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, f.provider.ID, review.BusinessUser.ID)
	assert.Equal(t, f.customer.ID, review.Reviewer.ID)
	assert.Equal(t, f.offer.ID, review.OfferID)
	assert.Equal(t, 4.0, review.AverageRating)
}

func TestReviewService_CreateReview_BusinessRejected(t *testing.T) {
	f := setupReviewServiceTest(t)

	_, err := f.service.CreateReview(f.provider.ID, f.createInput(5))
	assert.ErrorIs(t, err, ErrNotCustomer)
}

func TestReviewService_CreateReview_DuplicatePair(t *testing.T) {
	f := setupReviewServiceTest(t)

	_, err := f.service.CreateReview(f.customer.ID, f.createInput(5))
	require.NoError(t, err)

	_, err = f.service.CreateReview(f.customer.ID, f.createInput(1))
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestReviewService_CreateReview_UnknownProvider(t *testing.T) {
	f := setupReviewServiceTest(t)

	input := f.createInput(5)
	input.BusinessUserID = 9999
	_, err := f.service.CreateReview(f.customer.ID, input)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestReviewService_CreateReview_UnknownOffer(t *testing.T) {
	f := setupReviewServiceTest(t)

	input := f.createInput(5)
	input.OfferID = 9999
	_, err := f.service.CreateReview(f.customer.ID, input)
	assert.ErrorIs(t, err, ErrOfferNotFound)
}

func TestReviewService_ListReviews_FilterAndOrdering(t *testing.T) {
	f := setupReviewServiceTest(t)

	second := createCustomerUser(t, f.db, "second")

	_, err := f.service.CreateReview(f.customer.ID, f.createInput(2))
	require.NoError(t, err)
	_, err = f.service.CreateReview(second.ID, f.createInput(5))
	require.NoError(t, err)

	reviews, total, err := f.service.ListReviews(ReviewQuery{
		BusinessUserID: &f.provider.ID,
		Ordering:       "-rating",
		Limit:          10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, 2, reviews[1].Rating)

	reviews, total, err = f.service.ListReviews(ReviewQuery{
		ReviewerID: &f.customer.ID,
		Limit:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, f.customer.ID, reviews[0].Reviewer.ID)
}

func TestReviewService_UpdateReview_OwnerOnly(t *testing.T) {
	f := setupReviewServiceTest(t)

	created, err := f.service.CreateReview(f.customer.ID, f.createInput(3))
	require.NoError(t, err)

	rating := 5
	updated, err := f.service.UpdateReview(f.customer.ID, created.ID, ReviewUpdateInput{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)

	other := createCustomerUser(t, f.db, "other")
	_, err = f.service.UpdateReview(other.ID, created.ID, ReviewUpdateInput{Rating: &rating})
	assert.ErrorIs(t, err, ErrNotReviewOwner)
}

func TestReviewService_UpdateReview_NotFound(t *testing.T) {
	f := setupReviewServiceTest(t)

	rating := 5
	_, err := f.service.UpdateReview(f.customer.ID, 9999, ReviewUpdateInput{Rating: &rating})
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewService_DeleteReview_OwnerOnly(t *testing.T) {
	f := setupReviewServiceTest(t)

	created, err := f.service.CreateReview(f.customer.ID, f.createInput(3))
	require.NoError(t, err)

	other := createCustomerUser(t, f.db, "other")
	err = f.service.DeleteReview(other.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotReviewOwner)

	require.NoError(t, f.service.DeleteReview(f.customer.ID, created.ID))

	var count int64
	f.db.Model(&model.Review{}).Where("id = ?", created.ID).Count(&count)
	assert.Zero(t, count)
}

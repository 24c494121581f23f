package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/internal/app/repository"
	"github.com/coderr-app/coderr-backend/internal/app/service"
	"github.com/coderr-app/coderr-backend/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reviewControllerFixture struct {
	ctrl     *ReviewController
	router   *gin.Engine
	db       *gorm.DB
	provider *model.User
	customer *model.User
	offer    *model.Offer
}

func setupReviewControllerTest(t *testing.T) *reviewControllerFixture {
	gin.SetMode(gin.TestMode)

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
	profileService := service.NewProfileService(userRepo, profileRepo, orderRepo, reviewRepo, testDB)
	reviewService := service.NewReviewService(reviewRepo, userRepo, offerRepo, profileService, testDB)
	ctrl := NewReviewController(reviewService)

	provider := &model.User{Username: "provider", Email: "provider@example.com", PasswordHash: "hash"}
	testDB.Create(provider)
	testDB.Create(&model.BusinessProfile{UserID: provider.ID, CompanyName: "Provider GmbH"})

	customer := &model.User{Username: "customer", Email: "customer@example.com", PasswordHash: "hash"}
	testDB.Create(customer)
	testDB.Create(&model.CustomerProfile{UserID: customer.ID})

	price := 100.0
	offer := &model.Offer{Title: "Offer", Price: &price, UserID: provider.ID}
	testDB.Create(offer)

	return &reviewControllerFixture{
		ctrl:     ctrl,
		router:   gin.New(),
		db:       testDB,
		provider: provider,
		customer: customer,
		offer:    offer,
	}
}

func (f *reviewControllerFixture) reviewBody(rating int) map[string]interface{} {
	return map[string]interface{}{
		"rating":           rating,
		"description":      "Great work",
		"business_user_id": f.provider.ID,
		"offer_id":         f.offer.ID,
	}
}

func TestReviewController_CreateReview_Success(t *testing.T) {
	f := setupReviewControllerTest(t)

	f.router.POST("/reviews/", func(c *gin.Context) {
		setUserIDInContext(c, f.customer.ID)
		f.ctrl.CreateReview(c)
	})

	w := postJSON(t, f.router, "/reviews/", f.reviewBody(5))
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(5), response["rating"])
	assert.Equal(t, float64(5), response["average_rating"])
}

func TestReviewController_CreateReview_BusinessForbidden(t *testing.T) {
	f := setupReviewControllerTest(t)

	f.router.POST("/reviews/", func(c *gin.Context) {
		setUserIDInContext(c, f.provider.ID)
		f.ctrl.CreateReview(c)
	})

	w := postJSON(t, f.router, "/reviews/", f.reviewBody(5))
	assert.Equal(t, http.StatusForbidden, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Only customers can write reviews.", response["error"])
}

func TestReviewController_CreateReview_Duplicate(t *testing.T) {
	f := setupReviewControllerTest(t)

	f.router.POST("/reviews/", func(c *gin.Context) {
		setUserIDInContext(c, f.customer.ID)
		f.ctrl.CreateReview(c)
	})

	w := postJSON(t, f.router, "/reviews/", f.reviewBody(5))
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, f.router, "/reviews/", f.reviewBody(1))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "You have already reviewed this provider.", response["error"])
}

func TestReviewController_ListReviews_PaginationEnvelope(t *testing.T) {
	f := setupReviewControllerTest(t)

	for i := 0; i < 3; i++ {
		reviewer := &model.User{
			Username:     fmt.Sprintf("reviewer%d", i),
			Email:        fmt.Sprintf("reviewer%d@example.com", i),
			PasswordHash: "hash",
		}
		f.db.Create(reviewer)
		f.db.Create(&model.Review{
			Rating: i + 2, BusinessUserID: f.provider.ID,
			ReviewerID: reviewer.ID, OfferID: f.offer.ID,
		})
	}

	f.router.GET("/reviews/", func(c *gin.Context) {
		setUserIDInContext(c, f.customer.ID)
		f.ctrl.ListReviews(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/reviews/?ordering=-rating", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(3), response["count"])
	assert.Equal(t, float64(1), response["total_pages"])
	results := response["results"].([]interface{})
	require.Len(t, results, 3)
	first := results[0].(map[string]interface{})
	assert.Equal(t, float64(4), first["rating"])
}

func TestReviewController_ListReviews_FilterByBusinessUser(t *testing.T) {
	f := setupReviewControllerTest(t)

	f.db.Create(&model.Review{
		Rating: 5, BusinessUserID: f.provider.ID,
		ReviewerID: f.customer.ID, OfferID: f.offer.ID,
	})

	f.router.GET("/reviews/", func(c *gin.Context) {
		setUserIDInContext(c, f.customer.ID)
		f.ctrl.ListReviews(c)
	})

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/reviews/?business_user_id=%d", f.provider.ID), nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestReviewController_UpdateReview_OwnerOnly(t *testing.T) {
	f := setupReviewControllerTest(t)

	review := &model.Review{
		Rating: 3, BusinessUserID: f.provider.ID,
		ReviewerID: f.customer.ID, OfferID: f.offer.ID,
	}
	f.db.Create(review)

	other := &model.User{Username: "other", Email: "other@example.com", PasswordHash: "hash"}
	f.db.Create(other)
	f.db.Create(&model.CustomerProfile{UserID: other.ID})

	f.router.PATCH("/reviews/:pk/", func(c *gin.Context) {
		setUserIDInContext(c, other.ID)
		f.ctrl.UpdateReview(c)
	})

	payload := `{"rating": 5}`
	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/reviews/%d/", review.ID), strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "You can only edit your own reviews.", response["error"])
}

func TestReviewController_UpdateReview_Success(t *testing.T) {
	f := setupReviewControllerTest(t)

	review := &model.Review{
		Rating: 3, BusinessUserID: f.provider.ID,
		ReviewerID: f.customer.ID, OfferID: f.offer.ID,
	}
	f.db.Create(review)

	f.router.PATCH("/reviews/:pk/", func(c *gin.Context) {
		setUserIDInContext(c, f.customer.ID)
		f.ctrl.UpdateReview(c)
	})

	payload := `{"rating": 5, "description": "Even better"}`
	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/reviews/%d/", review.ID), strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(5), response["rating"])
	assert.Equal(t, "Even better", response["description"])
}

func TestReviewController_DeleteReview(t *testing.T) {
	f := setupReviewControllerTest(t)

	review := &model.Review{
		Rating: 3, BusinessUserID: f.provider.ID,
		ReviewerID: f.customer.ID, OfferID: f.offer.ID,
	}
	f.db.Create(review)

	f.router.DELETE("/reviews/:pk/", func(c *gin.Context) {
		setUserIDInContext(c, f.customer.ID)
		f.ctrl.DeleteReview(c)
	})

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/reviews/%d/", review.ID), nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	var count int64
	f.db.Model(&model.Review{}).Where("id = ?", review.ID).Count(&count)
	assert.Zero(t, count)
}

func TestReviewController_DeleteReview_NotFound(t *testing.T) {
	f := setupReviewControllerTest(t)

	f.router.DELETE("/reviews/:pk/", func(c *gin.Context) {
		setUserIDInContext(c, f.customer.ID)
		f.ctrl.DeleteReview(c)
	})

	req := httptest.NewRequest(http.MethodDelete, "/reviews/9999/", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

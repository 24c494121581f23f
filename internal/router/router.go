package router

import (
	"github.com/gin-gonic/gin"
	"github.com/coderr-app/coderr-backend/config"
	"github.com/coderr-app/coderr-backend/internal/app/controller"
	"github.com/coderr-app/coderr-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	profileController  *controller.ProfileController
	offerController    *controller.OfferController
	orderController    *controller.OrderController
	reviewController   *controller.ReviewController
	baseInfoController *controller.BaseInfoController
	uploadController   *controller.UploadController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	profileController *controller.ProfileController,
	offerController *controller.OfferController,
	orderController *controller.OrderController,
	reviewController *controller.ReviewController,
	baseInfoController *controller.BaseInfoController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		profileController:  profileController,
		offerController:    offerController,
		orderController:    orderController,
		reviewController:   reviewController,
		baseInfoController: baseInfoController,
		uploadController:   uploadController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

// Setup wires the route table. Paths carry trailing slashes to stay
// compatible with the existing API clients.
func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Coderr API is running",
		})
	})

	authenticate := r.authMiddleware.Authenticate()
	optionalAuth := r.authMiddleware.OptionalAuthenticate()

	router.POST("/registration/", r.authController.Register)
	router.POST("/login/", r.authController.Login)

	router.GET("/base-info/", r.baseInfoController.GetBaseInfo)

	router.GET("/profile/:user_id/", authenticate, r.profileController.GetProfile)
	router.PATCH("/profile/:user_id/", authenticate, r.profileController.UpdateProfile)

	profiles := router.Group("/profiles")
	profiles.Use(authenticate)
	{
		profiles.GET("/business/", r.profileController.ListBusinessProfiles)
		profiles.GET("/business/:user_id/", r.profileController.GetBusinessProfile)
		profiles.PATCH("/business/:user_id/", r.profileController.UpdateBusinessProfile)
		profiles.GET("/customer/", r.profileController.ListCustomerProfiles)
		profiles.GET("/customer/:user_id/", r.profileController.GetCustomerProfile)
		profiles.PATCH("/customer/:user_id/", r.profileController.UpdateCustomerProfile)
	}

	// Listing is open to guests; the requester's role only narrows results.
	router.GET("/offers/", optionalAuth, r.offerController.ListOffers)
	router.POST("/offers/", authenticate, r.offerController.CreateOffer)
	router.GET("/offers/:id/", authenticate, r.offerController.GetOffer)
	router.PATCH("/offers/:id/", authenticate, r.offerController.UpdateOffer)
	router.DELETE("/offers/:id/", authenticate, r.offerController.DeleteOffer)

	router.GET("/orders/", authenticate, r.orderController.ListOrders)
	router.POST("/orders/", authenticate, r.orderController.CreateOrder)
	router.GET("/orders/export/", authenticate, r.orderController.ExportOrders)
	router.PATCH("/orders/:order_id/", authenticate, r.orderController.UpdateOrder)
	router.GET("/user/orders/", authenticate, r.orderController.ListUserOrders)
	router.GET("/order-count/:offer_id/", authenticate, r.orderController.InProgressCount)
	router.GET("/completed-order-count/:user_id/", authenticate, r.orderController.CompletedCount)

	router.GET("/reviews/", authenticate, r.reviewController.ListReviews)
	router.POST("/reviews/", authenticate, r.reviewController.CreateReview)
	router.PATCH("/reviews/:pk/", authenticate, r.reviewController.UpdateReview)
	router.DELETE("/reviews/:pk/", authenticate, r.reviewController.DeleteReview)

	router.POST("/upload/image/", authenticate, r.uploadController.UploadImage)

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

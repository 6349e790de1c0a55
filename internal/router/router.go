package router

import (
	"github.com/gin-gonic/gin"
	"github.com/taragold/taraerp-backend/config"
	"github.com/taragold/taraerp-backend/internal/app/controller"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	partnerController      *controller.PartnerController
	kycController          *controller.KYCController
	orderController        *controller.OrderController
	notificationController *controller.NotificationController
	uploadController       *controller.UploadController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	partnerController *controller.PartnerController,
	kycController *controller.KYCController,
	orderController *controller.OrderController,
	notificationController *controller.NotificationController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		partnerController:      partnerController,
		kycController:          kycController,
		orderController:        orderController,
		notificationController: notificationController,
		uploadController:       uploadController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "TARAGOLD ERP API is running",
		})
	})

	backOffice := []model.UserRole{
		model.RoleProjectOwner,
		model.RoleSuperAdmin,
		model.RoleAdmin,
	}

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
			auth.POST("/change-password", r.authMiddleware.Authenticate(), r.authController.ChangePassword)

			auth.POST("/password-reset/request", r.authController.RequestPasswordReset)
			auth.POST("/password-reset/verify", r.authController.VerifyPasswordResetOTP)
			auth.POST("/password-reset/confirm", r.authController.ResetPassword)
		}

		partners := v1.Group("/partners")
		partners.Use(r.authMiddleware.Authenticate())
		{
			// Registration and conversion are field-operations actions;
			// the service rejects back-office registrars.
			partners.POST("", r.partnerController.Register)
			partners.GET("", r.partnerController.List)
			partners.GET("/:bp_code", r.partnerController.Get)
			partners.PUT("/:bp_code", r.partnerController.Update)
			partners.POST("/:bp_code/convert", r.partnerController.ConvertToCraftsman)

			partners.POST("/:bp_code/approve",
				r.authMiddleware.RequireRole(backOffice...),
				r.partnerController.Approve,
			)
			partners.DELETE("/:bp_code",
				r.authMiddleware.RequireRole(backOffice...),
				r.partnerController.Delete,
			)

			partners.GET("/:bp_code/kyc", r.kycController.Get)
			partners.PUT("/:bp_code/kyc", r.kycController.Upsert)
			partners.POST("/:bp_code/kyc/freeze",
				r.authMiddleware.RequireRole(backOffice...),
				r.kycController.Freeze,
			)
			partners.POST("/:bp_code/kyc/unfreeze",
				r.authMiddleware.RequireRole(backOffice...),
				r.kycController.Unfreeze,
			)
			partners.POST("/:bp_code/kyc/revoke",
				r.authMiddleware.RequireRole(backOffice...),
				r.kycController.Revoke,
			)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.POST("", r.orderController.Place)
			orders.GET("", r.orderController.List)
			orders.GET("/export",
				r.authMiddleware.RequireRole(backOffice...),
				r.orderController.Export,
			)
			orders.GET("/:order_no", r.orderController.Get)
			orders.GET("/:order_no/history", r.orderController.History)
			orders.GET("/partner/:partner_ref", r.orderController.PartnerOrders)
			orders.GET("/assigned/:craftsman_ref", r.orderController.AssignedOrders)

			orders.POST("/:order_no/review",
				r.authMiddleware.RequireRole(model.RoleKeyUser, model.RoleProjectOwner),
				r.orderController.KeyUserReview,
			)
			orders.POST("/:order_no/verify",
				r.authMiddleware.RequireRole(backOffice...),
				r.orderController.AdminVerify,
			)
			orders.POST("/:order_no/assign",
				r.authMiddleware.RequireRole(backOffice...),
				r.orderController.Assign,
			)
			orders.POST("/:order_no/response",
				r.authMiddleware.RequireRole(model.RoleCraftsman),
				r.orderController.CraftsmanRespond,
			)
			orders.POST("/:order_no/complete",
				r.authMiddleware.RequireRole(model.RoleCraftsman),
				r.orderController.ClaimCompletion,
			)
			orders.POST("/:order_no/approve",
				r.authMiddleware.RequireRole(model.RoleKeyUser, model.RoleProjectOwner, model.RoleSuperAdmin, model.RoleAdmin),
				r.orderController.FinalApprove,
			)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(r.authMiddleware.Authenticate())
		{
			notifications.GET("", r.notificationController.List)
			notifications.GET("/unread-count", r.notificationController.UnreadCount)
			notifications.GET("/settings", r.notificationController.GetSettings)
			notifications.PUT("/settings", r.notificationController.UpdateSettings)
			notifications.POST("/:id/read", r.notificationController.MarkAsRead)
			notifications.POST("/read-all", r.notificationController.MarkAllAsRead)
			notifications.DELETE("/:id", r.notificationController.Delete)
		}

		// Browsers cannot set headers on WebSocket requests, so the
		// token arrives as a query parameter here.
		v1.GET("/ws/notifications",
			r.authMiddleware.Authenticate(),
			r.notificationController.WebSocketHandler,
		)

		uploads := v1.Group("/uploads")
		uploads.Use(r.authMiddleware.Authenticate())
		{
			uploads.POST("/kyc-document", r.uploadController.PresignKYCDocument)
			uploads.POST("/order-attachment", r.uploadController.PresignOrderAttachment)
			uploads.POST("/partner-photo", r.uploadController.PresignPartnerPhoto)
		}
	}

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

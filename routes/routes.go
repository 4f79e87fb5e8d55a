package routes

import (
	"github.com/xinyucaoo/influenceBay-sub000/controllers"
	"github.com/xinyucaoo/influenceBay-sub000/middleware"
	"github.com/xinyucaoo/influenceBay-sub000/websocket"

	"github.com/gin-gonic/gin"
)

// SetupRoutes 设置路由
func SetupRoutes(r *gin.Engine) {
	// 应用全局中间件
	r.Use(middleware.CORS())
	r.Use(middleware.Logger())

	api := r.Group("/api")
	{
		// ====== 认证路由 ======
		auth := api.Group("/auth")
		{
			authController := controllers.NewAuthController()
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/refresh", authController.RefreshToken)
			auth.GET("/me", middleware.AuthMiddleware(), authController.Me)
		}

		// ====== 用户路由 ======
		users := api.Group("/users")
		{
			userController := controllers.NewUserController()
			users.GET("/:id", userController.GetUserProfile)
			users.PUT("/profile", middleware.AuthMiddleware(), userController.UpdateUserProfile)
		}

		// ====== 刊登路由 ======
		listings := api.Group("/listings")
		{
			listingController := controllers.NewListingController()
			offerController := controllers.NewOfferController()

			listings.GET("", listingController.GetListings)
			listings.GET("/mine", middleware.AuthMiddleware(), listingController.GetMyListings)
			listings.GET("/:id", listingController.GetListing)
			listings.POST("", middleware.AuthMiddleware(), listingController.CreateListing)
			listings.PUT("/:id/status", middleware.AuthMiddleware(), listingController.UpdateListingStatus)

			// 报价子路由
			listings.GET("/:id/offers", middleware.AuthMiddleware(), offerController.GetOffers)
			listings.POST("/:id/offers", middleware.AuthMiddleware(), offerController.CreateOffer)
			listings.PUT("/:id/offers/:offerId", middleware.AuthMiddleware(), offerController.DecideOffer)
		}

		// ====== 推广活动路由 ======
		campaigns := api.Group("/campaigns")
		{
			campaignController := controllers.NewCampaignController()

			campaigns.GET("", campaignController.GetCampaigns)
			campaigns.GET("/:id", campaignController.GetCampaign)
			campaigns.POST("", middleware.AuthMiddleware(), middleware.RequireRole("brand"), campaignController.CreateCampaign)
			campaigns.PUT("/:id/close", middleware.AuthMiddleware(), middleware.RequireRole("brand"), campaignController.CloseCampaign)

			// 申请子路由
			campaigns.GET("/:id/applications", middleware.AuthMiddleware(), campaignController.GetApplications)
			campaigns.POST("/:id/applications", middleware.AuthMiddleware(), middleware.RequireRole("creator"), campaignController.Apply)
			campaigns.PUT("/:id/applications/:applicationId", middleware.AuthMiddleware(), middleware.RequireRole("brand"), campaignController.DecideApplication)
		}

		// ====== 会话路由 ======
		chats := api.Group("/chats")
		chats.Use(middleware.AuthMiddleware())
		{
			chatController := controllers.NewChatController()

			chats.GET("", chatController.GetConversations)
			chats.GET("/unread", chatController.GetUnreadCount)
			chats.POST("", chatController.OpenConversation)
			chats.GET("/:id/messages", chatController.GetMessages)
			chats.POST("/:id/messages", chatController.SendMessage)
			chats.PUT("/:id/read", chatController.MarkAsRead)
		}
	}

	// ====== WebSocket路由 ======
	r.GET("/ws", middleware.AuthMiddleware(), websocket.HandleConnection)
}

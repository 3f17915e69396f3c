package routes

import (
	"time"

	"meetmydesigners/handlers"
	"meetmydesigners/metrics"
	"meetmydesigners/middleware"
	"meetmydesigners/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers sign-up, sign-in and profile endpoints.
func RegisterAuthRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", hb.Profile.SignUpHandler)
		authGroup.POST("/login", hb.Profile.SignInHandler)
		authGroup.POST("/logout", auth, hb.Profile.SignOutHandler)
	}

	profile := api.Group("/profile", auth)
	{
		profile.GET("", hb.Profile.GetProfileHandler)
		profile.PUT("", hb.Profile.UpdateProfileHandler)
		profile.PUT("/fcm", hb.Profile.UpdateFCMTokenHandler)
	}
}

// RegisterDesignerRoutes registers the public directory and designer self-service.
func RegisterDesignerRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	public := api.Group("/designers")
	{
		public.GET("", hb.Designer.ListDesignersHandler)
		public.GET("/:id", hb.Designer.GetDesignerHandler)
		public.GET("/:id/availability", hb.Designer.AvailabilityHandler)
		public.GET("/:id/slots", hb.Designer.SlotsHandler)
	}

	self := api.Group("/designer", auth, middleware.RequireRole(models.RoleDesigner))
	{
		self.GET("/profile", hb.Designer.GetOwnDesignerHandler)
		self.PUT("/profile", hb.Designer.UpdateOwnDesignerHandler)
		self.PUT("/online", hb.Designer.SetOnlineHandler)
		self.GET("/schedule", hb.Designer.GetScheduleHandler)
		self.PUT("/schedule", hb.Designer.ReplaceScheduleHandler)
		self.GET("/special-days", hb.Designer.ListSpecialDaysHandler)
		self.POST("/special-days", hb.Designer.SetSpecialDayHandler)
		self.DELETE("/special-days/:id", hb.Designer.DeleteSpecialDayHandler)
	}
}

// RegisterBookingRoutes registers bookings and live sessions.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	bookings := api.Group("/bookings", auth)
	{
		bookings.POST("", middleware.RequireRole(models.RoleClient), hb.Booking.CreateBookingHandler)
		bookings.GET("", hb.Booking.ListBookingsHandler)
		bookings.GET("/:id", hb.Booking.GetBookingHandler)
		bookings.POST("/:id/accept", middleware.RequireRole(models.RoleDesigner), hb.Booking.AcceptBookingHandler)
		bookings.POST("/:id/reject", middleware.RequireRole(models.RoleDesigner), hb.Booking.RejectBookingHandler)
		bookings.POST("/:id/cancel", hb.Booking.CancelBookingHandler)
	}

	sessions := api.Group("/sessions", auth)
	{
		sessions.POST("", middleware.RequireRole(models.RoleClient), hb.Session.StartSessionHandler)
		sessions.GET("", hb.Session.ListSessionsHandler)
		sessions.GET("/:id", hb.Session.GetSessionHandler)
		sessions.POST("/:id/join", middleware.RequireRole(models.RoleDesigner), hb.Session.JoinSessionHandler)
		sessions.POST("/:id/end", hb.Session.EndSessionHandler)
		sessions.POST("/:id/review", hb.Session.SubmitReviewHandler)
		sessions.POST("/:id/files", hb.Session.UploadFileHandler)
		sessions.GET("/:id/files", hb.Session.ListFilesHandler)
		sessions.DELETE("/:id/files/:fileId", hb.Session.DeleteFileHandler)
	}
}

// RegisterWalletRoutes registers the wallet, bank accounts, complaints and notifications.
func RegisterWalletRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	wallet := api.Group("/wallet", auth)
	{
		wallet.GET("/balance", hb.Wallet.BalanceHandler)
		wallet.GET("/transactions", hb.Wallet.TransactionsHandler)
		wallet.POST("/deposit", hb.Wallet.DepositHandler)
		wallet.POST("/deposit/razorpay/verify", hb.Wallet.VerifyRazorpayHandler)
		wallet.POST("/withdraw", hb.Wallet.WithdrawHandler)
	}

	banks := api.Group("/bank-accounts", auth)
	{
		banks.POST("", hb.Bank.AddAccountHandler)
		banks.GET("", hb.Bank.ListAccountsHandler)
		banks.POST("/:id/verify", hb.Bank.VerifyAccountHandler)
		banks.POST("/:id/resend-otp", hb.Bank.ResendOTPHandler)
		banks.POST("/:id/primary", hb.Bank.SetPrimaryHandler)
		banks.DELETE("/:id", hb.Bank.DeleteAccountHandler)
	}

	complaints := api.Group("/complaints", auth)
	{
		complaints.POST("", hb.Complaint.FileComplaintHandler)
		complaints.GET("", hb.Complaint.ListComplaintsHandler)
	}

	notifications := api.Group("/notifications", auth)
	{
		notifications.GET("", hb.Notification.ListHandler)
		notifications.POST("/read-all", hb.Notification.MarkAllReadHandler)
		notifications.POST("/:id/read", hb.Notification.MarkReadHandler)
	}
}

// RegisterWebhookRoutes registers the unauthenticated, signature-checked gateway callbacks.
func RegisterWebhookRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/razorpay", hb.Webhook.RazorpayHandler)
		webhooks.POST("/phonepe", hb.Webhook.PhonePeHandler)
		webhooks.POST("/stripe", hb.Webhook.StripeHandler)
	}
}

func RegisterRealtimeRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	rt := api.Group("/realtime", auth)
	{
		rt.GET("/:channel/ws", hb.Realtime.SubscribeHandler)
		rt.POST("/:channel", hb.Realtime.BroadcastHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, adminToken string) {
	adminGroup := api.Group("/admin", middleware.AdminAuthMiddleware(adminToken))
	{
		adminGroup.GET("/complaints", hb.Admin.ListComplaintsHandler)
		adminGroup.PUT("/complaints/:id/status", hb.Admin.UpdateComplaintStatusHandler)
		adminGroup.POST("/sessions/:id/refund", hb.Admin.RefundSessionHandler)
		adminGroup.POST("/sessions/expire", hb.Admin.ExpireSessionsHandler)
		adminGroup.POST("/bookings/expire", hb.Admin.ExpireBookingsHandler)
	}
}

// Options carries the settings the router needs from config.
type Options struct {
	AdminToken        string
	MaxRequestsPerMin int
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", handlers.HealthHandler)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api", middleware.RateLimitMiddleware(opts.MaxRequestsPerMin))
	auth := middleware.JWTAuthMiddleware(hb.Auth)

	RegisterAuthRoutes(api, hb, auth)
	RegisterDesignerRoutes(api, hb, auth)
	RegisterBookingRoutes(api, hb, auth)
	RegisterWalletRoutes(api, hb, auth)
	RegisterWebhookRoutes(api, hb)
	RegisterRealtimeRoutes(api, hb, auth)
	RegisterAdminRoutes(api, hb, opts.AdminToken)
}

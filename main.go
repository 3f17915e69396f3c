package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetmydesigners/config"
	"meetmydesigners/cron"
	"meetmydesigners/database"
	availabilityRepo "meetmydesigners/database/repository/availability"
	bankRepo "meetmydesigners/database/repository/bank"
	bookingRepo "meetmydesigners/database/repository/booking"
	complaintRepo "meetmydesigners/database/repository/complaint"
	designerRepo "meetmydesigners/database/repository/designer"
	notificationRepo "meetmydesigners/database/repository/notification"
	profileRepo "meetmydesigners/database/repository/profile"
	sessionRepo "meetmydesigners/database/repository/session"
	walletRepo "meetmydesigners/database/repository/wallet"
	"meetmydesigners/handlers"
	"meetmydesigners/middleware"
	"meetmydesigners/routes"
	"meetmydesigners/services/availability"
	"meetmydesigners/services/bank"
	"meetmydesigners/services/booking"
	"meetmydesigners/services/complaint"
	"meetmydesigners/services/notification"
	"meetmydesigners/services/payment"
	"meetmydesigners/services/payment/gateway"
	"meetmydesigners/services/profile"
	"meetmydesigners/services/realtime"
	"meetmydesigners/services/session"
	"meetmydesigners/services/storage"
	"meetmydesigners/services/wallet"
	"meetmydesigners/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	database.InitDB()
	utils.InitRedis()
	stripe.Key = cfg.StripeKey

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid default timezone %q: %v", cfg.DefaultTimezone, err)
	}

	rootCtx, stopMonitors := context.WithCancel(context.Background())
	defer stopMonitors()

	// Push and file storage are optional.
	var pusher notification.Pusher
	if fcm, err := utils.FirebaseInit(rootCtx); err != nil {
		logger.Warn("main: firebase disabled", zap.Error(err))
	} else if fcm != nil {
		pusher = &notification.FCMPusher{Client: fcm}
	}

	var fileStore storage.StorageService
	if cld, err := utils.Cloudinary(); err != nil {
		logger.Warn("main: session file storage disabled", zap.Error(err))
	} else {
		fileStore = storage.NewCloudinaryStorage(cld, cfg.CloudinaryAuthTokenKey, time.Duration(cfg.FileURLTTLMinutes)*time.Minute)
	}

	// Repositories.
	profiles := profileRepo.NewMongoProfileRepo()
	designers := designerRepo.NewMongoDesignerRepo()
	slots := availabilityRepo.NewMongoAvailabilityRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	sessions := sessionRepo.NewMongoSessionRepo()
	reviews := sessionRepo.NewMongoReviewRepo()
	files := sessionRepo.NewMongoFileRepo()
	walletTx := walletRepo.NewMongoWalletRepo()
	banks := bankRepo.NewMongoBankRepo()
	complaints := complaintRepo.NewMongoComplaintRepo()
	notifications := notificationRepo.NewMongoNotificationRepo()

	// Services.
	hub := &realtime.RedisHub{Client: utils.GetCacheClient()}

	notifier := &notification.DefaultNotificationService{
		Repo:      notifications,
		Profiles:  profiles,
		Publisher: hub,
		Pusher:    pusher,
	}

	walletService := &wallet.DefaultWalletService{
		Repo:  walletTx,
		Cache: &wallet.RedisBalanceCache{Client: utils.GetCacheClient()},
	}

	availabilityService := &availability.DefaultAvailabilityService{
		Designers:       designers,
		Repo:            slots,
		DefaultLocation: loc,
	}

	paymentService := &payment.DefaultPaymentService{
		Wallet:         walletService,
		Banks:          banks,
		Notifier:       notifier,
		Currency:       cfg.Currency,
		CommissionRate: cfg.PlatformCommissionRate,
		MinWithdrawal:  cfg.MinWithdrawalAmount,
	}
	if cfg.RazorpayKeyID != "" {
		paymentService.Razorpay = &gateway.Razorpay{
			KeyID:         cfg.RazorpayKeyID,
			KeySecret:     cfg.RazorpayKeySecret,
			WebhookSecret: cfg.RazorpayWebhookSecret,
			AccountNumber: cfg.RazorpayAccountNumber,
			BaseURL:       cfg.RazorpayBaseURL,
		}
	}
	if cfg.PhonePeMerchantID != "" {
		paymentService.PhonePe = &gateway.PhonePe{
			MerchantID:  cfg.PhonePeMerchantID,
			SaltKey:     cfg.PhonePeSaltKey,
			SaltIndex:   cfg.PhonePeSaltIndex,
			BaseURL:     cfg.PhonePeBaseURL,
			RedirectURL: cfg.PhonePeRedirectURL,
			CallbackURL: cfg.PhonePeCallbackURL,
		}
	}
	if cfg.StripeKey != "" {
		paymentService.Stripe = &gateway.Stripe{WebhookSecret: cfg.StripeWebhookSecret}
	}

	bankService := &bank.DefaultBankService{
		Repo:     banks,
		OTPs:     &bank.RedisOTPStore{Client: utils.GetOTPCacheClient()},
		Notifier: notifier,
	}

	bookingService := &booking.DefaultBookingService{
		Repo:            bookings,
		Designers:       designers,
		Availability:    availabilityService,
		Wallet:          walletService,
		Notifier:        notifier,
		Publisher:       hub,
		DefaultLocation: loc,
	}

	sessionService := &session.DefaultSessionService{
		Sessions:          sessions,
		Reviews:           reviews,
		Files:             files,
		Bookings:          bookings,
		Designers:         designers,
		Availability:      availabilityService,
		Wallet:            walletService,
		Payments:          paymentService,
		Publisher:         hub,
		Storage:           fileStore,
		MaxSessionMinutes: cfg.MaxSessionMinutes,
	}

	complaintService := &complaint.DefaultComplaintService{
		Repo:     complaints,
		Notifier: notifier,
	}

	profileService := &profile.DefaultProfileService{
		Profiles:  profiles,
		Designers: designers,
		Tokens:    &profile.RedisTokenCache{Client: utils.GetAuthCacheClient()},
		TokenTTL:  utils.SessionTokenTTL,
	}

	// Periodic expiry jobs.
	worker, err := cron.NewWorker(cron.Jobs{Bookings: bookingService, Sessions: sessionService}, loc)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to create worker: %v", err)
	}
	worker.Start()

	utils.StartHealthMonitor(rootCtx,
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient(), utils.GetOTPCacheClient()},
		database.MongoClient)

	handlerBundle := &handlers.HandlerBundle{
		Auth:         profileService,
		Profile:      handlers.NewAuthHandler(profileService),
		Designer:     handlers.NewDesignerHandler(profileService, availabilityService),
		Booking:      handlers.NewBookingHandler(bookingService),
		Session:      handlers.NewSessionHandler(sessionService),
		Wallet:       handlers.NewWalletHandler(walletService, paymentService),
		Bank:         handlers.NewBankHandler(bankService),
		Complaint:    handlers.NewComplaintHandler(complaintService),
		Notification: handlers.NewNotificationHandler(notifier),
		Webhook:      handlers.NewWebhookHandler(paymentService),
		Realtime:     handlers.NewRealtimeHandler(hub, bookingService, sessionService),
		Admin:        handlers.NewAdminHandler(complaintService, paymentService, bookingService, sessionService),
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))

	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		AdminToken:        cfg.AdminToken,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
	})

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	stopMonitors()
	if err := database.Close(ctx); err != nil {
		logger.Warn("main: failed to close MongoDB", zap.Error(err))
	}
	utils.CloseRedis()

	logger.Sugar().Info("main: server stopped gracefully")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/config"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/cron"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/database"
	invoiceRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/invoice"
	paymentRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/payment"
	reservationRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/reservation"
	userRepoPkg "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/user"
	webhookeventRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/webhookevent"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/handlers"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/middleware"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/routes"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/billing"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/effects"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/events"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/guest"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/notification"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/payments"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	cloudinaryStorageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	emailClient, err := notification.NewEmailClient()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize email client: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	invRepo := invoiceRepo.NewMongoInvoiceRepo()
	payRepo := paymentRepo.NewMongoPaymentRepo()
	resRepo := reservationRepo.NewMongoReservationRepo()
	usrRepo := userRepoPkg.NewMongoUserRepo()
	eventRepo := webhookeventRepo.NewMongoWebhookEventRepo()

	// Task queue client for post-settlement work.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	defer asynqClient.Close()

	eventPublisher := events.NewAMQPPublisher(config.AppConfig.AMQPUrl, config.AppConfig.CommissionQueue)

	// services.
	notificationService := &notification.DefaultNotificationService{
		Users: usrRepo,
		Email: emailClient,
	}

	dispatcher := &effects.Dispatcher{
		Queue:     asynqClient,
		Events:    eventPublisher,
		Recipient: config.AppConfig.CommissionRecipient,
		Logger:    logger,
	}

	sessionTTL := time.Duration(config.AppConfig.CheckoutSessionTTL) * time.Minute
	gatewayTimeout := time.Duration(config.AppConfig.GatewayTimeoutSec) * time.Second
	gateway := payments.NewStripeGateway(
		config.AppConfig.StripeWebhookSecret,
		config.AppConfig.CheckoutSuccessURL,
		config.AppConfig.CheckoutCancelURL,
		sessionTTL,
		gatewayTimeout,
		logger,
	)

	checkoutService := &payments.DefaultCheckoutService{
		Invoices:   invRepo,
		Payments:   payRepo,
		Users:      usrRepo,
		Gateway:    gateway,
		SessionTTL: sessionTTL,
		Logger:     logger,
	}
	reconcilerService := &payments.DefaultReconciler{
		Invoices: invRepo,
		Payments: payRepo,
		Events:   eventRepo,
		Verifier: gateway,
		Effects:  dispatcher,
		Logger:   logger,
	}
	statusService := &payments.DefaultStatusService{
		Invoices: invRepo,
		Payments: payRepo,
	}

	invoiceService := &billing.DefaultInvoiceService{
		Invoices:     invRepo,
		Reservations: resRepo,
		Logger:       logger,
	}
	reservationService := &billing.DefaultReservationService{
		Reservations: resRepo,
		Logger:       logger,
	}
	accountService := &guest.DefaultAccountService{
		Repo:      usrRepo,
		AuthCache: utils.GetAuthCacheClient(),
		Logger:    logger,
	}

	paymentHandler := handlers.NewPaymentHandler(checkoutService, reconcilerService, statusService)
	billingHandler := handlers.NewBillingHandler(invoiceService, reservationService)
	guestHandler := handlers.NewGuestHandler(accountService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo: usrRepo,

		// Guest endpoints.
		RegisterGuestHandler:  guestHandler.RegisterGuestHandler,
		LoginGuestHandler:     guestHandler.LoginGuestHandler,
		GetProfileHandler:     guestHandler.GetProfileHandler,
		UpdateFCMTokenHandler: guestHandler.UpdateFCMTokenHandler,

		// Reservation endpoints.
		CreateReservationHandler: billingHandler.CreateReservationHandler,
		GetReservationHandler:    billingHandler.GetReservationHandler,
		ListReservationsHandler:  billingHandler.ListReservationsHandler,

		// Invoice endpoints.
		CreateInvoiceHandler: billingHandler.CreateInvoiceHandler,
		GetInvoiceHandler:    billingHandler.GetInvoiceHandler,
		ListInvoicesHandler:  billingHandler.ListInvoicesHandler,

		// Payment endpoints.
		CreateCheckoutSessionHandler: paymentHandler.CreateCheckoutSessionHandler,
		StripeWebhookHandler:         paymentHandler.StripeWebhookHandler,
		GetSessionStatusHandler:      paymentHandler.GetSessionStatusHandler,
		GetInvoiceStatusHandler:      paymentHandler.GetInvoiceStatusHandler,
	}

	// Start the payment confirmation worker.
	cron.InitPaymentWorker(cron.ConfirmationDeps{
		Invoices:     invRepo,
		Payments:     payRepo,
		Reservations: resRepo,
		Users:        usrRepo,
		Notifier:     notificationService,
		Storage:      cloudinaryStorageService,
	})

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
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

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

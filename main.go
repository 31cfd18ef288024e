package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ugc-rewards-system/handlers"
	"ugc-rewards-system/models"
	"ugc-rewards-system/services"
	"ugc-rewards-system/utils"
	"ugc-rewards-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 110 * 1024 * 1024, // 100MB video + multipart overhead
	})

	// CORS for the embedded dashboard and the upload form
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		logrus.Warn("⚠️  ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Shopify-Shop-Domain, X-Access-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := mustEnv("DATABASE_URL")
	webhookSecret := mustEnv("SHOPIFY_WEBHOOK_SECRET")
	tokenSecret := mustEnv("UGC_TOKEN_SECRET")
	clientID := mustEnv("SHOPIFY_CLIENT_ID")
	clientSecret := mustEnv("SHOPIFY_CLIENT_SECRET")
	redirectURI := mustEnv("SHOPIFY_REDIRECT_URI")
	appURL := mustEnv("APP_URL")

	// Duplicate-key violations must surface as gorm.ErrDuplicatedKey: the
	// invitation/submission/reward uniqueness guards depend on it
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.Merchant{},
		&models.Customer{},
		&models.Invitation{},
		&models.Submission{},
		&models.Reward{},
		&models.UploadToken{},
	); err != nil {
		logrus.Fatal("failed to migrate database: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := utils.NewStorage(ctx, utils.StorageConfig{
		AccountID:       mustEnv("CLOUDFLARE_ACCOUNT_ID"),
		AccessKeyID:     mustEnv("R2_ACCESS_KEY_ID"),
		AccessKeySecret: mustEnv("R2_ACCESS_KEY_SECRET"),
		Bucket:          mustEnv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_URL"),
	})
	if err != nil {
		logrus.Fatal("failed to initialize R2 storage: ", err)
	}

	tokens := utils.NewTokenCodec(tokenSecret, utils.InvitationTokenTTL)
	shopify := services.NewShopifyClient(clientID, clientSecret)
	mailer := services.NewMailer(os.Getenv("RESEND_API_KEY"), emailFrom(), appURL)

	customerService := services.NewCustomerService(db)
	rewardService := services.NewRewardService(db, shopify)
	submissionService := services.NewSubmissionService(db, storage, tokens, rewardService)
	webhookService := services.NewWebhookService(db, customerService, tokens, mailer,
		webhookSecret, os.Getenv("TYPEFORM_WEBHOOK_SECRET"))
	authService := services.NewAuthService(db, shopify, redirectURI, appURL)

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupWebhookRoutes(app, webhookService)
	handlers.SetupUGCRoutes(app, submissionService)
	handlers.SetupAdminRoutes(app, db, submissionService)

	services.StartTokenPurgeScheduler(db)

	retryWorker := workers.NewRewardRetryWorker(db, rewardService)
	retryWorker.Start(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			logrus.Error("Server error: ", err)
		}
	}()

	logrus.Infof("✅ Server running on http://localhost:%s", port)
	logrus.Info("✅ Upload token purge scheduler running (hourly)")
	logrus.Info("✅ Reward retry worker running (every 2m)")
	logrus.Infof("✅ CORS configured for origins: %s", strings.Join(origins, ","))

	<-ctx.Done()
	logrus.Info("Shutting down server...")
	_ = app.Shutdown()
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		logrus.Fatalf("%s environment variable not set", key)
	}
	return value
}

func emailFrom() string {
	if from := os.Getenv("EMAIL_FROM"); from != "" {
		return from
	}
	return "rewards@ugc-rewards.app"
}

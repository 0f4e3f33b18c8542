package main

import (
	"log"

	"fstop/cms"
	"fstop/commerce"
	"fstop/config"
	"fstop/controllers/adminController"
	"fstop/controllers/authController"
	"fstop/controllers/commerceController"
	"fstop/controllers/courseController"
	"fstop/controllers/enrollmentController"
	"fstop/controllers/progressController"
	"fstop/controllers/systemController"
	"fstop/database"
	"fstop/enrollment"
	"fstop/identity"
	"fstop/middleware"
	"fstop/progress"
	"fstop/routers/adminRoutes"
	"fstop/routers/authRoutes"
	"fstop/routers/commerceRoutes"
	"fstop/routers/courseRoutes"
	"fstop/routers/enrollmentRoutes"
	"fstop/routers/progressRoutes"
	"fstop/routers/systemRoutes"
	"fstop/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(config.ProfileServer)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := utils.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Connect(cfg)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}

	retry := utils.RetryPolicy{Retries: cfg.StoreRetryAttempts, Delay: cfg.StoreRetryDelay}

	// Identity
	sessions := middleware.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	events := identity.NewEvents()
	var (
		provider  identity.Provider
		registrar authController.Registrar
	)
	switch cfg.AuthProvider {
	case "local":
		local := identity.NewLocalProvider(db)
		provider, registrar = local, local
	default:
		provider = identity.NewFirebaseProvider(identity.FirebaseAuthURL, cfg.FirebaseAPIKey)
	}
	identitySvc := identity.NewService(provider, sessions, events, db, zlog)

	// Enrollment
	selector := enrollment.NewSelector(enrollment.NewGormStore(db), enrollment.NewMemoryStore(), retry, zlog)
	opts := enrollment.Options{StrictCourseEntitlement: cfg.StrictCourseEntitlement}
	if mailer := utils.NewMailer(cfg.SendGridAPIKey, cfg.MailFrom, zlog); mailer != nil {
		opts.Notifier = mailer
	}
	enrollmentSvc := enrollment.NewService(selector, zlog, opts)
	unsubscribe := enrollmentSvc.Subscribe(events)
	defer unsubscribe()

	probe, err := utils.StartStoreProbe(selector, cfg.StoreProbeInterval, zlog)
	if err != nil {
		zlog.Fatal("store probe scheduler failed", zap.Error(err))
	}
	defer probe.Stop()

	// Content, progress and commerce
	content := cms.NewClient(cfg.Sanity)
	engine := progress.NewEngine(progress.NewCMSStore(content), progress.NewMemoryStore(), content, retry, zlog)
	storefront := commerce.NewClient(cfg.Shopify)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(zlog),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: cfg.CORSOrigins != "*",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app, authController.NewHandler(identitySvc, registrar, cfg.IsProduction()), sessions, registrar != nil)
	courseRoutes.SetupCourseRoutes(app, courseController.NewHandler(content, engine, enrollmentSvc, cfg.FeaturedCourseSlug, zlog), sessions, enrollmentSvc)
	enrollmentRoutes.SetupEnrollmentRoutes(app, enrollmentController.NewHandler(enrollmentSvc), sessions)
	progressRoutes.SetupProgressRoutes(app, progressController.NewHandler(content, engine, enrollmentSvc), sessions, enrollmentSvc)
	commerceRoutes.SetupCommerceRoutes(app, commerceController.NewHandler(storefront, zlog))
	adminRoutes.SetupAdminRoutes(app, adminController.NewHandler(enrollmentSvc), sessions, enrollmentSvc)
	systemRoutes.SetupSystemRoutes(app, systemController.NewHandler(selector))

	zlog.Info("server is running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

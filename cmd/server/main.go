package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MostTP/EduWave-Backend/internal/api"
	"github.com/MostTP/EduWave-Backend/internal/config"
	"github.com/MostTP/EduWave-Backend/internal/events"
	"github.com/MostTP/EduWave-Backend/internal/mailer"
	"github.com/MostTP/EduWave-Backend/internal/model"
	"github.com/MostTP/EduWave-Backend/internal/repository"
	"github.com/MostTP/EduWave-Backend/internal/service"
	"github.com/MostTP/EduWave-Backend/internal/token"
	"github.com/MostTP/EduWave-Backend/internal/tools"
	"github.com/MostTP/EduWave-Backend/internal/tracing"
	_ "github.com/MostTP/EduWave-Backend/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables")
	}

	cfg := config.Load()

	api.SetupGlobalLogger("eduwave-server")

	shutdownTracer, err := tracing.Init("eduwave-server", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations(cfg)
		return
	}

	db := connectDB(cfg)
	defer db.Close()

	var eventPublisher events.Publisher = events.NoopPublisher{}
	if cfg.NatsURL != "" {
		eventPublisher, err = events.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		log.Println("Successfully connected to NATS.")
	} else {
		log.Println("NATS_URL not set, events will be discarded.")
	}

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.ResendAPIKey != "" {
		mail = mailer.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom)
	} else {
		log.Println("RESEND_API_KEY not set, emails will be logged instead of sent.")
	}

	tokens := token.NewManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	userRepo := repository.NewPostgresUserRepository(db)
	courseRepo := repository.NewPostgresCourseRepository(db)
	enrollmentRepo := repository.NewPostgresEnrollmentRepository(db)
	notificationRepo := repository.NewPostgresNotificationRepository(db)

	authService := service.NewAuthService(userRepo, tokens, mail, eventPublisher, cfg.AppBaseURL)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, eventPublisher)
	notificationService := service.NewNotificationService(notificationRepo)

	authHandler := api.NewAuthHandler(authService)
	userHandler := api.NewUserHandler(authService)
	courseHandler := api.NewCourseHandler(courseService)
	notificationHandler := api.NewNotificationHandler(notificationService)
	toolHandler := api.NewToolHandler(tools.DefaultRegistry())

	authRequired := api.Authenticate(tokens, userRepo)
	authOptional := api.OptionalAuthenticate(tokens, userRepo)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "eduwave-server"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/verify-email", authHandler.VerifyEmail)
	authRoutes.Post("/resend-verification", authHandler.ResendVerification)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/forgot-password", authHandler.ForgotPassword)
	authRoutes.Post("/reset-password", authHandler.ResetPassword)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Post("/logout", authRequired, authHandler.Logout)

	userRoutes := v1.Group("/users")
	userRoutes.Get("/me", authRequired, userHandler.Me)
	userRoutes.Patch("/:id/role", authRequired, api.RequireRoles(model.RoleAdmin), userHandler.UpdateRole)

	courseRoutes := v1.Group("/courses")
	courseRoutes.Get("/", authOptional, courseHandler.List)
	courseRoutes.Get("/:id", authOptional, courseHandler.Get)
	courseRoutes.Post("/", authRequired, api.RequireRoles(model.RoleInstructor, model.RoleAdmin), courseHandler.Create)
	courseRoutes.Put("/:id", authRequired, api.RequireRoles(model.RoleInstructor, model.RoleAdmin), courseHandler.Update)
	courseRoutes.Put("/:id/progress", authRequired, courseHandler.UpdateProgress)
	courseRoutes.Get("/:id/progress", authRequired, courseHandler.GetProgress)

	notificationRoutes := v1.Group("/notifications")
	notificationRoutes.Use(authRequired)
	notificationRoutes.Get("/", notificationHandler.List)
	notificationRoutes.Post("/read-all", notificationHandler.MarkAllRead)
	notificationRoutes.Post("/:id/read", notificationHandler.MarkRead)

	toolRoutes := v1.Group("/tools")
	toolRoutes.Use(authRequired)
	toolRoutes.Get("/", toolHandler.List)
	toolRoutes.Post("/:id/run", toolHandler.Run)

	log.Printf("Listening eduwave-server on port %s", cfg.AppPort)
	log.Fatal(app.Listen(":" + cfg.AppPort))
}

func connectDB(cfg *config.Config) *sqlx.DB {
	db, err := sqlx.Connect("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations(cfg *config.Config) {
	fmt.Println("Running database migrations...")

	db, err := sql.Open("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}

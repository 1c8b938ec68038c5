package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MostTP/EduWave-Backend/internal/api"
	"github.com/MostTP/EduWave-Backend/internal/config"
	"github.com/MostTP/EduWave-Backend/internal/events"
	"github.com/MostTP/EduWave-Backend/internal/repository"
)

func main() {
	godotenv.Load(".env.dev")

	cfg := config.Load()

	api.SetupGlobalLogger("eduwave-worker")

	if cfg.NatsURL == "" {
		log.Fatal("NATS_URL environment variable is not set")
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	notificationRepo := repository.NewPostgresNotificationRepository(db)

	if _, err := events.NewNotificationSubscriber(cfg.NatsURL, notificationRepo); err != nil {
		log.Fatalf("Failed to start notification subscriber: %v", err)
	}

	log.Println("Notification worker started, waiting for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down notification worker...")
}

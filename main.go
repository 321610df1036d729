package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guild-review-system/handlers"
	"guild-review-system/middleware"
	"guild-review-system/models"
	"guild-review-system/services"
	"guild-review-system/utils"
	"guild-review-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := utils.LoadConfig(configPath)
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Guild{},
		&models.Player{},
		&models.Content{},
		&models.Ticket{},
		&models.Session{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	notifier := services.LogNotifier{}
	registryService := services.NewRegistryService(db, notifier)
	ticketService := services.NewTicketService(db, notifier)
	statsService := services.NewStatsService(db)

	if err := registryService.SeedGuilds(cfg); err != nil {
		log.Fatal("failed to seed guilds:", err)
	}

	app := fiber.New()

	// Only the bot adapter may talk to this service.
	app.Use(middleware.ServiceAuthMiddleware())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Every command route needs the caller's identity and tier.
	app.Use(middleware.UserContextMiddleware(cfg.Roles))

	handlers.SetupAuthRoutes(app, registryService)
	handlers.SetupTicketRoutes(app, ticketService, registryService)
	handlers.SetupStatsRoutes(app, statsService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reminder := workers.NewStaleTicketReminder(
		ticketService, notifier,
		time.Duration(cfg.Tickets.ReminderAfterHours)*time.Hour,
	)
	if err := reminder.Start(ctx); err != nil {
		log.Fatal("failed to start reminder worker:", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Stale ticket reminder running")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

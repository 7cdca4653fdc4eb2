package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/channelmarket/internal/config"
	"github.com/example/channelmarket/internal/database"
	"github.com/example/channelmarket/internal/routes"
	"github.com/example/channelmarket/internal/services"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)
	cache := database.ConnectRedis(cfg.RedisURL)
	defer cache.Close()

	var verifier services.TokenVerifier
	if cfg.FirebaseCredentials != "" {
		fb, err := services.NewFirebaseService(context.Background(), cfg.FirebaseCredentials)
		if err != nil {
			log.Fatalf("firebase init failed: %v", err)
		}
		verifier = fb
	} else {
		log.Println("Firebase credentials not configured, federated login disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Channel Market Backend",
		ErrorHandler: routes.ErrorHandler,
		// Listing submissions carry up to five images at 5 MB each.
		BodyLimit: 30 << 20,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	routes.Register(app, routes.Deps{
		DB:       db,
		Cache:    cache,
		Cfg:      cfg,
		SMS:      services.NewSMSService(cfg.SMSBaseURL, cfg.SMSAPIKey, cfg.SMSSenderID),
		Verifier: verifier,
	})

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

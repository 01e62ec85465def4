package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/voicedesk-co/voicedesk-backend/database"
	"github.com/voicedesk-co/voicedesk-backend/internal/handlers"
	"github.com/voicedesk-co/voicedesk-backend/internal/models"
	"github.com/voicedesk-co/voicedesk-backend/internal/routes"
	"github.com/voicedesk-co/voicedesk-backend/internal/services"
	"github.com/voicedesk-co/voicedesk-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		if err := database.DB.AutoMigrate(&models.Customer{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Response generator (Gemini)
	var generator services.ResponseGenerator
	geminiService, err := services.NewGeminiService(context.Background())
	if err != nil {
		log.Printf("⚠️  Gemini not configured (%v) - callers will hear the apology path", err)
		generator = services.UnavailableGenerator{}
	} else {
		log.Println("✅ Gemini response generator initialized")
		generator = geminiService
	}

	// Twilio service for outbound calls (optional)
	twilioService, err := services.NewTwilioService()
	if err != nil {
		log.Printf("⚠️  Twilio service not initialized: %v - outbound calls disabled", err)
	} else {
		log.Println("✅ Twilio service initialized")
		services.SetTwilioService(twilioService)
	}

	// Call session registry and dialogue controller
	sessionStore := services.NewSessionStore(services.SessionTTLFromEnv())
	dialogueService := services.NewDialogueService(
		sessionStore,
		store,
		generator,
		services.MarkerEscalationPolicy(services.EscalationPhrasesFromEnv()),
		services.DialogueConfigFromEnv(),
	)
	log.Println("✅ Dialogue controller initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "VoiceDesk Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Handlers and routes
	voiceHandler := handlers.NewVoiceHandler(dialogueService, twilioService)
	customerHandler := handlers.NewCustomerHandler(store)
	healthHandler := handlers.NewHealthHandler("1.0.0", sessionStore)
	routes.SetupRoutes(app, voiceHandler, customerHandler, healthHandler)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping session cleanup...")
		sessionStore.Close()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 VoiceDesk Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("📞 Voice webhook: /webhook/voice")
	log.Printf("🤖 Generator: %s", getGeneratorStatus(geminiService != nil))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getGeneratorStatus(configured bool) string {
	if !configured {
		return "Not configured (apology fallback)"
	}
	return "Gemini"
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agroflow/logicapture/internal/ai"
	"github.com/agroflow/logicapture/internal/chat"
	"github.com/agroflow/logicapture/internal/config"
	"github.com/agroflow/logicapture/internal/database"
	"github.com/agroflow/logicapture/internal/handlers"
	"github.com/agroflow/logicapture/internal/models"
	"github.com/agroflow/logicapture/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema (Critical for Zero-Config)
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.User{},

		// Catalogs
		&models.Driver{},
		&models.Carrier{},
		&models.Vehicle{},

		// Operational records + uniqueness ledger
		&models.Record{},
		&models.UniqueValue{},
		&models.AuditEvent{},

		// Booking reference tables (autocomplete)
		&models.BookingRef{},
		&models.BookingDAM{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Start the scanner relay hub
	hub := websocket.NewHub()
	go hub.Run()
	log.Println("✅ Scanner relay hub started")

	// 5. Chat assistant (generative fallback is optional)
	var responder chat.Responder
	if cfg.GeminiKey != "" {
		gemini, err := ai.NewGeminiClient(context.Background(), cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("⚠️ Gemini unavailable, assistant runs keyword-only: %v", err)
		} else {
			defer gemini.Close()
			responder = gemini
			log.Println("✅ Gemini assistant enabled")
		}
	}
	assistant := chat.NewAssistant(db.DB, responder)

	// 6. Set up HTTP router
	router := handlers.NewRouter(db, cfg, hub, assistant)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 LogiCapture API starting on port %s [%s]\n", cfg.Port, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

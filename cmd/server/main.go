package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kodbank/backend/docs"
	"github.com/kodbank/backend/internal/audit"
	"github.com/kodbank/backend/internal/auth"
	"github.com/kodbank/backend/internal/bank"
	"github.com/kodbank/backend/internal/config"
	"github.com/kodbank/backend/internal/database"
	"github.com/kodbank/backend/internal/handlers"
	"github.com/kodbank/backend/internal/services"
)

// @title Kodbank API
// @version 1.0
// @description Mock banking core: accounts, transfers, sessions and role-gated administration
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	// Ledger archive (optional)
	var archive bank.Archive
	var db *sql.DB
	if cfg.Database.Enabled {
		db, err = database.InitDB(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to initialize ledger archive: %v", err)
		}
		defer db.Close()

		ledgerArchive := database.NewLedgerArchive(db)
		if err := ledgerArchive.Migrate(context.Background()); err != nil {
			log.Fatalf("Failed to migrate ledger archive: %v", err)
		}
		archive = ledgerArchive
	}

	// Session slots: redis when reachable, process memory otherwise
	var slots auth.SlotStore
	var redisClient *redis.Client
	if redisClient = database.InitRedis(cfg.Redis); redisClient != nil {
		defer redisClient.Close()
		slots = auth.NewRedisSlots(redisClient)
	} else {
		log.Println("Using in-memory session slots")
		slots = auth.NewMemorySlots()
	}

	accounts := bank.NewAccountStore()
	ledger := bank.NewLedger(archive)
	tokens := auth.NewTokenRegistry(cfg.JWT.SecretKey, cfg.JWT.TTL())
	hasher := auth.NewHasher(auth.Argon2Params{
		Time:       cfg.Argon2.Time,
		Memory:     cfg.Argon2.Memory,
		Threads:    cfg.Argon2.Threads,
		KeyLength:  cfg.Argon2.KeyLength,
		SaltLength: cfg.Argon2.SaltLength,
	})

	if db != nil {
		archived, err := database.NewLedgerArchive(db).Load(context.Background())
		if err != nil {
			log.Fatalf("Failed to load ledger archive: %v", err)
		}
		if err := ledger.Seed(archived...); err != nil {
			log.Fatalf("Failed to restore ledger archive: %v", err)
		}
		log.Printf("Restored %d archived transactions", len(archived))
	}
	if cfg.Bank.SeedDemo {
		if err := services.SeedDemo(accounts, ledger, tokens, hasher); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	banking := services.NewBankingService(accounts, ledger, tokens, hasher, slots, audit.NewAuditLogger(), services.BankingOptions{
		Policy:    auth.SessionPolicy{RevokeOnLogout: cfg.Session.RevokeOnLogout},
		UnlockTTL: cfg.Session.UnlockTTL,
	})
	qrService := services.NewQRService(redisClient, cfg.QR.TTL)

	router := handlers.NewRouter(handlers.RouterConfig{
		Banking:           banking,
		QR:                qrService,
		MinInitialDeposit: cfg.Bank.MinInitialDeposit,
		RequestTimeout:    cfg.Server.RequestTimeout,
	})

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}

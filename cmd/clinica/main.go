package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ejcalderongt/clinica/internal/database"
	"github.com/ejcalderongt/clinica/internal/logging"
	"github.com/ejcalderongt/clinica/internal/server"
	"github.com/ejcalderongt/clinica/internal/store"
)

func main() {
	port := os.Getenv("CLINICA_PORT")
	if port == "" {
		port = "5001"
	}

	dbPath := os.Getenv("CLINICA_DB_PATH")
	if dbPath == "" {
		dbPath = "clinica.db"
	}

	adminPassword := os.Getenv("CLINICA_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	logger := logging.Setup(os.Getenv("CLINICA_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, logger)

	if err := store.SeedAccounts(srv.NurseStore(), adminPassword, logger.With("component", "seed")); err != nil {
		log.Fatalf("failed to seed accounts: %v", err)
	}

	// Expired sessions pile up otherwise; sweep them hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("session cleanup", "error", err)
			} else if n > 0 {
				logger.Info("session cleanup", "deleted", n)
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("clinica running", "addr", "http://localhost:"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teampulse.io/daily-report/internal/api"
	"teampulse.io/daily-report/internal/config"
	"teampulse.io/daily-report/internal/core"
	"teampulse.io/daily-report/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// The session slot is owned here and handed to the store; it mirrors
	// the persisted current-user record for this data directory.
	session := store.NewSession()

	var (
		dataStore store.Store
		err       error
	)
	switch config.AppConfig.StorageBackend {
	case "sqlite":
		dataStore, err = store.NewSQLiteStore(config.AppConfig.DatabaseURL, session)
	default:
		var kv *store.FileKV
		kv, err = store.NewFileKV(config.AppConfig.DataDir)
		if err == nil {
			dataStore, err = store.NewLocalStore(kv, session)
		}
	}
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", config.AppConfig.StorageBackend, err)
	}
	defer dataStore.Close()

	// Initialize LLM service
	llmService := core.NewLLMService()
	defer llmService.Close()

	// Initialize business services
	reportService := core.NewReportService(dataStore, core.DefaultSubmitPolicy())
	summaryService := core.NewSummaryService(dataStore, llmService)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(reportService, summaryService)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}

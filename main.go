package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VyacheslavBabenko/beejee/config"
	"github.com/VyacheslavBabenko/beejee/database"
	"github.com/VyacheslavBabenko/beejee/handlers"
	"github.com/VyacheslavBabenko/beejee/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer store.Close()

	// Ensure the tasks and admins tables exist.
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate the database: %v", err)
	}

	auth := services.NewAuthService(store, cfg.JWTSecret, cfg.TokenTTL)
	created, err := auth.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to seed the administrator: %v", err)
	}
	if created {
		log.Printf("Created default administrator %q", cfg.AdminUsername)
	}

	h := handlers.NewHandlers(auth, services.NewTaskService(store), store)
	router := handlers.NewRouter(h, handlers.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   os.Stdout,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Graceful shutdown failed: %v", err)
		}
	}()

	// Start the server.
	log.Printf("Server listening on %s (%s)...", server.Addr, cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

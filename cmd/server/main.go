package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/smartatm/backend/internal/bank"
	"github.com/smartatm/backend/internal/config"
	"github.com/smartatm/backend/internal/database"
	mW "github.com/smartatm/backend/internal/middleware"
	"github.com/smartatm/backend/internal/notify"
	"github.com/smartatm/backend/internal/services"
)

func main() {
	config.Load()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	// The account directory lives for the process lifetime only; there
	// is no persistence behind it.
	dir := bank.NewDirectory(bank.CryptoRand(), viper.GetInt("statement.limit"))
	sink := notify.NewService(notify.NewSMTPSink(), notify.NewConsoleSink())
	sessionService := services.NewSessionService(dir, redisClient, bank.SystemClock(), bank.CryptoRand(), sink)

	mW.InitAuthMiddleware(redisClient)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", sessionService.Register)
		r.Post("/auth/login", sessionService.Login)
		r.Post("/auth/otp", sessionService.SubmitOTP)
		r.Post("/auth/reset-pin", sessionService.ResetPIN)
		r.Post("/auth/cancel", sessionService.CancelRecovery)

		// Protected endpoints (session token required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/accounts/balance", sessionService.Balance)
			r.Get("/accounts/statement", sessionService.MiniStatement)
			r.Post("/accounts/change-pin", sessionService.ChangePIN)

			r.Post("/transactions/deposit", sessionService.Deposit)
			r.Post("/transactions/withdraw", sessionService.Withdraw)
			r.Post("/transactions/withdraw/confirm", sessionService.ConfirmWithdraw)
			r.Post("/transactions/withdraw/cancel", sessionService.CancelWithdraw)

			r.Post("/auth/logout", sessionService.Logout)
		})
	})

	port := viper.GetString("server.port")

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

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

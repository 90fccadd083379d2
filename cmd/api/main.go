package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/pavilion-live/pavilion/internal/cache"
	"github.com/pavilion-live/pavilion/internal/config"
	"github.com/pavilion-live/pavilion/internal/handlers"
	"github.com/pavilion-live/pavilion/internal/middleware"
	"github.com/pavilion-live/pavilion/internal/publisher"
	"github.com/pavilion-live/pavilion/internal/scoring"
	"github.com/pavilion-live/pavilion/internal/store"
)

func main() {
	fmt.Println("=== Pavilion Scoring API ===")

	cfg := config.LoadAPI()

	// Connect to Postgres
	dbClient, err := store.New(cfg.DatabaseDSN)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer dbClient.Close()
	fmt.Println("✓ Connected to Postgres")

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		fmt.Printf("❌ Failed to parse Redis URL: %v\n", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Connected to Redis")

	// Wire the scoring pipeline
	cacheWriter := cache.NewRedisWriter(redisClient)
	streamPublisher := publisher.NewStreamPublisher(redisClient)
	scoringService := scoring.NewService(dbClient, streamPublisher, cacheWriter)

	handler := handlers.NewHandler(dbClient, scoringService, cacheWriter)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	r.Get("/health", handler.HealthCheck)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Teams and players
		r.Post("/teams", handler.CreateTeam)
		r.Get("/teams", handler.GetTeams)
		r.Get("/teams/{teamID}", handler.GetTeam)
		r.Post("/teams/{teamID}/players", handler.CreatePlayer)
		r.Get("/teams/{teamID}/players", handler.GetPlayers)

		// Matches
		r.Post("/matches", handler.CreateMatch)
		r.Get("/matches", handler.GetMatches)
		r.Get("/matches/today", handler.GetTodaysMatches)
		r.Get("/matches/{matchID}", handler.GetMatch)
		r.Put("/matches/{matchID}/status", handler.UpdateMatchStatus)

		// Innings and live scoring
		r.Post("/matches/{matchID}/innings", handler.StartInnings)
		r.Get("/matches/{matchID}/innings", handler.GetInningsList)
		r.Post("/matches/{matchID}/deliveries", handler.SubmitDelivery)
		r.Delete("/matches/{matchID}/deliveries/last", handler.UndoLastDelivery)
		r.Get("/matches/{matchID}/deliveries/{deliveryID}", handler.GetDeliveryDetail)
		r.Get("/matches/{matchID}/overs/{overID}/deliveries", handler.GetOverDeliveries)
		r.Post("/matches/{matchID}/bowler", handler.NominateBowler)
		r.Post("/matches/{matchID}/batter", handler.NewBatter)

		// Read side
		r.Get("/matches/{matchID}/live", handler.GetLiveScore)
		r.Get("/matches/{matchID}/summary", handler.GetMatchSummary)
		r.Get("/matches/{matchID}/commentary", handler.GetCommentaryFeed)
		r.Post("/matches/{matchID}/commentary", handler.PostCommentaryNote)
	})

	// Start server
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("✓ Scoring API listening on %s\n", cfg.Server.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		fmt.Printf("❌ Server error: %v\n", err)
		os.Exit(1)

	case sig := <-shutdown:
		fmt.Printf("\n⚠️  Received signal: %v\n", sig)

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("⚠️  Graceful shutdown failed: %v\n", err)
			if err := srv.Close(); err != nil {
				fmt.Printf("❌ Could not stop server: %v\n", err)
			}
		}
	}

	fmt.Println("✓ Shutdown complete")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ironholdgame/server/internal/auth"
	"github.com/ironholdgame/server/internal/bot"
	"github.com/ironholdgame/server/internal/config"
	"github.com/ironholdgame/server/internal/handler"
	"github.com/ironholdgame/server/internal/logger"
	"github.com/ironholdgame/server/internal/middleware"
	"github.com/ironholdgame/server/internal/repository/postgres"
	redisrepo "github.com/ironholdgame/server/internal/repository/redis"
	"github.com/ironholdgame/server/internal/service"
	"github.com/ironholdgame/server/pkg/skirmish"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("databaseURL", cfg.DatabaseURL).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Repos
	userRepo := postgres.NewUserRepo(db)
	gameRepo := postgres.NewGameRepo(db)
	boardRepo := postgres.NewBoardRepo(db)
	turnRepo := postgres.NewTurnRepo(db)
	saveRepo := postgres.NewSaveRepo(db)

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	googleOAuth := auth.NewGoogleOAuth(
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		os.Getenv("GOOGLE_REDIRECT_URL"),
	)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	rules := skirmish.DefaultRules()
	locks := service.NewGameLocks()
	strategy := bot.ForName(os.Getenv("OPPONENT_STRATEGY"))
	gameSvc := service.NewGameService(gameRepo, boardRepo, turnRepo, redisClient, redisClient, rules)
	actionSvc := service.NewActionService(gameRepo, boardRepo, redisClient, redisClient, wsHub, locks, rules)
	saveSvc := service.NewSaveService(gameRepo, boardRepo, saveRepo, redisClient, wsHub, locks, rules)
	turnSvc := service.NewTurnService(gameRepo, boardRepo, redisClient, redisClient, saveSvc, wsHub, locks, strategy, rules)

	// Handlers
	authHandler := handler.NewAuthHandler(googleOAuth, jwtMgr, userRepo)
	userHandler := handler.NewUserHandler(userRepo)
	gameHandler := handler.NewGameHandler(gameSvc)
	actionHandler := handler.NewActionHandler(actionSvc, turnSvc)
	saveHandler := handler.NewSaveHandler(saveSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth (public)
	mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)
	mux.HandleFunc("GET /auth/dev", authHandler.DevLogin)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("GET /users/me", userHandler.GetMe)
	api.HandleFunc("PATCH /users/me", userHandler.UpdateMe)
	api.HandleFunc("GET /users/{id}", userHandler.GetUser)
	api.HandleFunc("POST /games", gameHandler.CreateGame)
	api.HandleFunc("GET /games", gameHandler.ListGames)
	api.HandleFunc("GET /games/{id}", gameHandler.GetGame)
	api.HandleFunc("DELETE /games/{id}", gameHandler.DeleteGame)
	api.HandleFunc("GET /games/{id}/turns", gameHandler.TurnHistory)
	api.HandleFunc("POST /games/{id}/actions/move", actionHandler.Move)
	api.HandleFunc("POST /games/{id}/actions/attack-unit", actionHandler.AttackUnit)
	api.HandleFunc("POST /games/{id}/actions/attack-city", actionHandler.AttackCity)
	api.HandleFunc("POST /games/{id}/actions/spawn", actionHandler.SpawnUnit)
	api.HandleFunc("POST /games/{id}/actions/expand", actionHandler.ExpandTerritory)
	api.HandleFunc("POST /games/{id}/end-turn", actionHandler.EndTurn)
	api.HandleFunc("POST /games/{id}/saves", saveHandler.CreateSave)
	api.HandleFunc("GET /games/{id}/saves", saveHandler.ListSaves)
	api.HandleFunc("POST /games/{id}/saves/{saveId}/load", saveHandler.LoadSave)
	api.HandleFunc("DELETE /games/{id}/saves/{saveId}", saveHandler.DeleteSave)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Rehydrate the Redis board cache from Postgres after a restart.
	if err := gameSvc.RecoverActiveGames(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to recover active games (non-fatal)")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}

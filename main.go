package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pyramid-eleven-server/api"
	"pyramid-eleven-server/config"
	"pyramid-eleven-server/loghandler"
	"pyramid-eleven-server/rooms"
	"pyramid-eleven-server/storage"
	"pyramid-eleven-server/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; using environment variables")
	}

	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo)))

	cfg := config.Load()
	slog.Info("configuration",
		"rows", cfg.PyramidRows, "target", cfg.TargetSum, "points", cfg.MatchPoints,
		"combo", cfg.ComboThreshold, "clock", cfg.GameTimeSec, "port", cfg.WSPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connecting to Postgres", "tag", "storage", "err", err)
		os.Exit(1)
	}
	if store == nil {
		slog.Info("DATABASE_URL not set; match history and leaderboard disabled")
	}
	defer store.Close()

	registry := rooms.NewRegistry(cfg)
	registry.OnMatchEnd = func(matchID, winnerID, winnerName, loserID, loserName string, winnerScore, loserScore int) {
		if err := store.RecordMatch(context.Background(), matchID, winnerID, winnerName, loserID, loserName, winnerScore, loserScore); err != nil {
			slog.Error("recording match", "tag", "storage", "match", matchID, "err", err)
		}
	}

	hub := ws.NewHub(cfg, registry)
	go hub.Run(ctx)

	apiHandler := api.NewHandler(cfg, store)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/api/leaderboard", apiHandler.Leaderboard)
	mux.HandleFunc("/api/history", apiHandler.History)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	addr := fmt.Sprintf(":%d", cfg.WSPort)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		server.Shutdown(context.Background())
	}()

	slog.Info("Pyramid Eleven server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vaultpass/passgen-go/internal/config"
	"github.com/vaultpass/passgen-go/internal/crypto"
	"github.com/vaultpass/passgen-go/internal/handler"
	"github.com/vaultpass/passgen-go/internal/repository"
	"github.com/vaultpass/passgen-go/internal/service"
)

func main() {
	issueToken := flag.String("issue-token", "", "print a history API token for the named client and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if *issueToken != "" {
		token, err := crypto.GenerateToken(*issueToken, cfg.TokenSecret, cfg.TokenExpiry)
		if err != nil {
			slog.Error("issuing token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	routes := handler.RouterConfig{
		TokenSecret:    cfg.TokenSecret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}

	// History is optional: without a reachable database the generator still works.
	var recorder service.Recorder
	if cfg.DatabaseDSN != "" {
		if history, err := openHistory(cfg.DatabaseDSN); err != nil {
			slog.Warn("history disabled", "error", err)
		} else {
			recorder = history
			routes.History = handler.NewHistoryHandler(service.NewHistoryService(history))
		}
	}

	genService := service.NewGeneratorService(crypto.NewGenerator(), cfg.MaxLength, recorder)
	routes.Generator = handler.NewGeneratorHandler(genService)

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(appCtx, routes),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "history", routes.History != nil)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	stopApp()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func openHistory(dsn string) (*repository.HistoryRepository, error) {
	db, err := repository.NewDB(dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	history := repository.NewHistoryRepository(db)
	if err := history.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return history, nil
}

func setupLogger(cfg config.Config) {
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/terenamutolder-oss/pro-node/internal/calls"
	"github.com/terenamutolder-oss/pro-node/internal/config"
	"github.com/terenamutolder-oss/pro-node/internal/handlers"
	"github.com/terenamutolder-oss/pro-node/internal/models"
	"github.com/terenamutolder-oss/pro-node/internal/observability"
	"github.com/terenamutolder-oss/pro-node/internal/rabbitmq"
	"github.com/terenamutolder-oss/pro-node/internal/repositories"
	"github.com/terenamutolder-oss/pro-node/internal/store"
	"github.com/terenamutolder-oss/pro-node/internal/telemetry"
	"github.com/terenamutolder-oss/pro-node/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(cfg.DataDir).WithLogger(nil))
	if err != nil {
		return fmt.Errorf("open badger: %w", err)
	}
	defer db.Close()

	userStore := store.New[models.User](db, "user")
	chatStore := store.New[models.Chat](db, "chat")
	userRepo := repositories.NewUserRepo(userStore)
	chatRepo := repositories.NewChatRepo(chatStore)

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, "audit.pronode", "pro-node", cfg.Environment, log)

	hub := ws.NewHub(log)
	coordinator := calls.NewCoordinator(hub, log)

	authHandler := handlers.NewAuthHandler(userRepo, audit)
	userHandler := handlers.NewUserHandler(userRepo)
	friendHandler := handlers.NewFriendHandler(userRepo, hub, audit)
	chatHandler := handlers.NewChatHandler(chatRepo, hub, audit)
	wsHandler := ws.NewHandler(hub, chatRepo, coordinator, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(observability.HTTPMetricsMiddleware())

	api := router.Group("/api")
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/users/:id", userHandler.GetUser)
	api.POST("/friends/invite", friendHandler.Invite)
	api.POST("/friends/accept", friendHandler.Accept)
	api.GET("/chats", chatHandler.ListChats)
	api.POST("/chats", chatHandler.CreateChat)
	api.PUT("/chats/:id/rename", chatHandler.RenameChat)
	api.DELETE("/chats/:id", chatHandler.DeleteChat)

	router.GET("/ws", wsHandler.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", handlers.Healthz)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(log)
	return log
}

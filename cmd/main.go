package main

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/queue"
	"taskboard/internal/repository"
	"taskboard/internal/routes"
	"taskboard/internal/service"
	"taskboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	loadEnvFile(".env")

	cfg := config.Get()
	logger.SetDefault(logger.New(os.Stdout, cfg.LogLevel))
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		var err error
		if secret, err = auth.RandomSecret(); err != nil {
			logger.Error(ctx, "Reset token secret generation failed", "error", err)
			os.Exit(1)
		}
		logger.Warn(ctx, "JWT_SECRET not set; reset tokens will not survive a restart")
	}

	// Stores live in process memory; everything is lost on restart.
	activity := repository.NewActivity()
	todos := repository.NewTodos(activity, time.Now)

	authSvc, err := service.NewAuthService(service.AuthDeps{
		Users:         repository.NewUsers(),
		Sessions:      repository.NewSessions(),
		Resets:        repository.NewResets(),
		Hasher:        auth.NewBcryptHasher(cfg.BcryptCost),
		ResetTokens:   auth.NewResetTokens(secret, time.Now),
		ResetTokenTTL: cfg.ResetTokenTTL,
	})
	if err != nil {
		logger.Error(ctx, "Auth service init failed", "error", err)
		os.Exit(1)
	}

	// Activity events go to Kafka only when brokers are configured
	queue.EnsureTopic(ctx, cfg)
	publisher := queue.NewPublisher(ctx, cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error(context.Background(), "Kafka writer close failed", "error", err)
		}
	}()

	server := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: routes.Router(routes.Deps{
			Auth:        authSvc,
			Todos:       service.NewTodoService(todos, activity, publisher),
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Server error", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Server stopped")
}

// loadEnvFile reads a .env file and sets env vars (only if not already set).
func loadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = unquote(strings.TrimSpace(val))
		if key != "" && os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}

func unquote(val string) string {
	for _, q := range []string{`"`, "'"} {
		if len(val) >= 2 && strings.HasPrefix(val, q) && strings.HasSuffix(val, q) {
			return val[1 : len(val)-1]
		}
	}
	return val
}

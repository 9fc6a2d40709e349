package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"supportdesk/internal/config"
	"supportdesk/internal/db"
	"supportdesk/internal/logging"
	"supportdesk/internal/redis"
	"supportdesk/internal/server"
	"supportdesk/internal/storage"
	"supportdesk/internal/store"
	"supportdesk/internal/utils"
	"supportdesk/internal/verification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "text", os.Stderr).Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	defer db.Close(gdb)
	st := store.New(gdb)

	mailer := utils.NewSMTPClient(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	if cfg.SMTP.Host == "" {
		log.Warn("SMTP_HOST not set, verification emails will fail")
	}

	opts := []verification.Option{verification.WithTTL(cfg.Codes.TTL())}
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			return err
		}
		defer rdb.Close()
		limiter := redis.NewAttemptLimiter(rdb, cfg.Redis.MaxAttempts, cfg.Redis.AttemptWindow())
		opts = append(opts, verification.WithLimiter(limiter))
		log.Info("verification attempts limited", "max", cfg.Redis.MaxAttempts, "window", cfg.Redis.AttemptWindow())
	}
	codes := verification.NewService(st, mailer, log, opts...)

	photos, err := newPhotoStore(ctx, cfg)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	}
	router := server.NewRouter(server.Deps{
		Store:          st,
		Codes:          codes,
		Photos:         photos,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
		Log:            log,
	})

	go codes.Run(ctx, cfg.Codes.PurgeInterval())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "db", cfg.Database.Driver, "photos", cfg.Uploads.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	codes.Wait()
	return nil
}

func newPhotoStore(ctx context.Context, cfg *config.Config) (storage.PhotoStore, error) {
	if cfg.Uploads.Storage == config.StorageS3 {
		return storage.NewS3(ctx, storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	}
	return storage.NewLocal(cfg.Uploads.Dir)
}

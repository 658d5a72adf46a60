package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/goserg/devconnector/auth/password"
	authservice "github.com/goserg/devconnector/auth/service"
	"github.com/goserg/devconnector/auth/token"
	"github.com/goserg/devconnector/internal/config"
	"github.com/goserg/devconnector/internal/logger"
	"github.com/goserg/devconnector/internal/service"
	"github.com/goserg/devconnector/internal/storage"
	"github.com/goserg/devconnector/internal/storage/mem"
	"github.com/goserg/devconnector/internal/storage/mongo"
	"github.com/goserg/devconnector/internal/storage/postgres"
	"github.com/goserg/devconnector/internal/storage/sqlite"
	"github.com/goserg/devconnector/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", config.DefaultPath, "path to the server config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	l, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, l, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			l.WithError(err).Error("close storage")
		}
	}()

	tokens, err := token.New(token.Config{
		Secret: cfg.Auth.Secret,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return err
	}
	authService := authservice.New(l, store, password.New(cfg.Auth.BcryptCost), tokens)
	profileService := service.NewProfileService(l, store, store)

	server := web.New(l, web.Config{
		TokenHeader: cfg.Auth.TokenHeader,
		Debug:       cfg.Server.Debug,
	}, authService, profileService)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(cfg.Server.Addr())
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	l.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStorage(ctx context.Context, l *logrus.Logger, cfg config.Storage) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return mongo.New(ctx, l, cfg.Mongo)
	case config.DriverSqlite:
		return sqlite.New(l, cfg.Sqlite.File)
	case config.DriverPostgres:
		return postgres.New(ctx, l, cfg.Postgres)
	case config.DriverMem:
		l.Warn("in-memory storage: data is lost on restart")
		return mem.New(), nil
	}
	return nil, errors.New("unknown storage driver")
}

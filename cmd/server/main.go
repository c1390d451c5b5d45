package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gorm.io/gorm"

	"convivio/internal/config"
	"convivio/internal/db"
	"convivio/internal/db/mock"
	applog "convivio/internal/log"
	"convivio/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf("invalid log level: %v", err)
	}

	database, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	srv, err := server.New(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Session.Lifetime,
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.Session.CookieDomain,
			CookieSecure: cfg.Session.CookieSecure,
		},
		Database:  database,
		MediaRoot: cfg.Media.Root,
	})
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	go func() {
		applog.Info(context.Background(), "starting http server", "addr", cfg.Server.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server encountered an error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	applog.Info(context.Background(), "shutting down http server")
	if err := srv.Stop(); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
}

// openDatabase connects to the configured postgres instance, or falls
// back to the seeded in-memory database for local development when no
// URL is configured.
func openDatabase(cfg config.Config) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.Database.URL) == "" {
		applog.Info(context.Background(), "no database URL configured, using seeded in-memory database")
		return mock.New(context.Background())
	}
	return db.Configure(cfg.Database)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/router"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/migrations"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/database"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

func main() {
	// best-effort: without a .env file we run on the real environment
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()

	cfg := database.ConfigFromEnv()

	// `api migrate [up|down]` applies the embedded schema and exits
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		sqlDB, err := database.Connect(cfg)
		if err != nil {
			sugar.Fatalf("db connect: %v", err)
		}
		defer sqlDB.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if len(os.Args) > 2 && os.Args[2] == "down" {
			err = migrations.Down(ctx, sqlDB)
		} else {
			err = migrations.Up(ctx, sqlDB)
		}
		if err != nil {
			sugar.Fatalf("migrate: %v", err)
		}
		sugar.Info("migrations applied")
		return
	}

	sugar.Info("starting smartwaste api")

	// the health endpoint must keep answering while the database is down,
	// so an unreachable database at boot is not fatal
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Warnw("database unreachable at startup", "err", err)
		if sqlDB, err = database.Open(cfg); err != nil {
			sugar.Fatalf("db open: %v", err)
		}
	}
	defer sqlDB.Close()

	sqlxDB := sqlx.NewDb(sqlDB, "postgres")

	sessCfg := session.ConfigFromEnv()
	if len(sessCfg.Secret) == 0 {
		sugar.Warn("JWT_SECRET not set; using a random secret, sessions will not survive a restart")
		sessCfg.Secret = session.RandomSecret()
	}
	sessions, err := session.NewService(sqlxDB, sessCfg)
	if err != nil {
		sugar.Fatalf("session service: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if n, err := sessions.PurgeExpired(ctx); err != nil {
		sugar.Warnw("purge expired refresh sessions failed", "err", err)
	} else if n > 0 {
		sugar.Infow("purged expired refresh sessions", "count", n)
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:3000"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.RegisterRoutes(sugar, sqlxDB, sessions),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running", "addr", addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

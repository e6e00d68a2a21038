package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"sharednotes/internal/auth"
	"sharednotes/internal/config"
	"sharednotes/internal/db"
	"sharednotes/internal/directory"
	httpx "sharednotes/internal/http"
	"sharednotes/internal/jobs"
	"sharednotes/internal/note"
)

func main() {
	cfg, _ := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	var dir directory.Directory
	switch cfg.DirectoryMode {
	case "http":
		dir = directory.NewHTTP(directory.HTTPConfig{
			BaseURL:  cfg.DirectoryURL,
			Realm:    cfg.DirectoryRealm,
			ClientID: cfg.DirectoryClientID,
			Username: cfg.DirectoryUsername,
			Password: cfg.DirectoryPassword,
		})
	default:
		dir = &directory.LocalDirectory{DB: gdb}
	}

	jobsRepo := &jobs.Repo{DB: gdb}

	svc := &note.Service{
		Store:    &note.Repo{DB: gdb},
		Tags:     &note.TagRepo{DB: gdb},
		Dir:      dir,
		Notifier: jobsRepo,
		Log:      log,
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	r := httpx.NewRouter(cfg, gdb, jwtSvc, svc, dir, log)

	// worker
	worker := &jobs.Worker{ID: "worker-1", Repo: jobsRepo, DB: gdb, Dir: dir, Log: log}

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("serve")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

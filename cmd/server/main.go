package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"ytgrab/internal/application/media"
	"ytgrab/internal/config"
	"ytgrab/internal/infrastructure/ffmpeg"
	"ytgrab/internal/infrastructure/filesystem"
	"ytgrab/internal/infrastructure/youtube"
	"ytgrab/internal/log"
	httptransport "ytgrab/internal/transport/http"
)

func main() {
	dotEnvErr := config.LoadDotEnv()
	cfg := config.Load()

	log.Configure(log.Config{Level: cfg.LogLevel})
	logger := log.WithComponent("server")
	if dotEnvErr != nil {
		logger.Warn().Err(dotEnvErr).Msg("ignoring .env file")
	}

	store := filesystem.NewStore(cfg.PublicDir)
	if err := store.EnsureDirs(); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.PublicDir).Msg("storage init failed")
	}

	runner := ffmpeg.NewRunner(cfg.FFmpegPath, cfg.FFmpegKillGrace, log.WithComponent("ffmpeg"))
	if err := runner.Available(); err != nil {
		logger.Warn().Err(err).Str("ffmpeg", cfg.FFmpegPath).Msg("ffmpeg not found; downloads will fail until it is installed")
	}

	source := youtube.NewClient(nil, log.WithComponent("youtube"))
	mediaService := media.NewService(store, source, runner, log.WithComponent("media"))

	handler := httptransport.NewHandler(mediaService, store, log.WithComponent("http"))
	router := httptransport.NewRouter(handler)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Range"},
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logger.Info().Str("addr", cfg.ServerAddr).Str("public_dir", cfg.PublicDir).Msg("server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("server stopped")
}

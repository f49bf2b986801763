package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cinewatch/internal/api"
	"cinewatch/internal/cache"
	"cinewatch/internal/omdb"
	"cinewatch/internal/poster"
	"cinewatch/internal/server"
	"cinewatch/internal/storage"
	"cinewatch/internal/support"
	"cinewatch/internal/tmdb"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func serveRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(cfg.Logging, os.Stdout)

	logger.Info().
		Str("version", api.Version).
		Msg("starting CineWatch server")

	if cfg.TMDB.APIKey == "" {
		logger.Warn().Msg("TMDB_API_KEY is not set - catalogue pages will show fallbacks")
	}

	dsn := cfg.Database.Path
	if cfg.Database.Driver == storage.DriverPostgres {
		dsn = cfg.Database.DSN
	}
	store, err := storage.Open(cfg.Database.Driver, dsn)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to initialize storage")
		return err
	}
	defer store.Close()
	logger.Info().Str("driver", store.Driver()).Msg("storage ready")

	data, err := support.Load(cfg.Data.Dir)
	if err != nil {
		logger.Error().Err(err).Str("dir", cfg.Data.Dir).Msg("failed to load site data")
		return err
	}

	tmdbClient := tmdb.NewClient(tmdb.Options{
		BaseURL:  cfg.TMDB.BaseURL,
		APIKey:   cfg.TMDB.APIKey,
		Language: cfg.TMDB.Language,
		Timeout:  cfg.TMDB.Timeout.Duration,
		Cache:    cache.NewLRUCache(cfg.TMDB.CacheCapacity, cfg.TMDB.CacheMaxSize, cfg.TMDB.CacheTTL.Duration),
	}, logger)

	omdbClient := omdb.NewClient(cfg.OMDB.BaseURL, cfg.OMDB.APIKey, cfg.TMDB.Timeout.Duration, logger)
	if omdbClient.Enabled() {
		logger.Info().Msg("OMDb key set - external ratings enabled")
	} else {
		logger.Warn().Msg("OMDB_API_KEY not set - external ratings disabled")
	}

	deps := server.Deps{
		Store: store,
		TMDB:  tmdbClient,
		OMDB:  omdbClient,
		Data:  data,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Posters.Enabled {
		posters := poster.NewService(
			cfg.TMDB.ImageBaseURL,
			cfg.Posters.OutputDir,
			cfg.Posters.CacheCapacity,
			cfg.Posters.CacheMaxSize,
			cfg.TMDB.Timeout.Duration,
			logger,
		)
		deps.Posters = posters

		// trending posters are on the home page; fetch them ahead of time
		posters.StartWarmup(ctx, "w500", func(ctx context.Context) []string {
			return trendingPosters(ctx, tmdbClient)
		}, 200*time.Millisecond)
	}

	srv, err := server.New(cfg, logger, deps)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create server")
		return err
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info().Msg("received shutdown signal")
		cancel()

		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

// trendingPosters lists the poster files of today's trending titles.
func trendingPosters(ctx context.Context, client *tmdb.Client) []string {
	page := client.Trending(ctx, "all", "day")
	if page == nil {
		return nil
	}
	var files []string
	for _, it := range page.Results {
		if it.PosterPath != "" {
			files = append(files, it.PosterPath)
		}
	}
	return files
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cinewatch/internal/config"
)

var (
	flagConfig string
	flagDebug  bool
	flagPort   int
)

// cfg is loaded before any subcommand runs: defaults < file < env < flags.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cinewatch",
	Short: "Movie and TV discovery site with playlists, cinema tickets and support chat",
	Long: `CineWatch serves a browsable catalogue of movies, shows and people backed by
The Movie Database, with per-visitor playlists, cinema ticket booking and a
support chatbot. Run "cinewatch serve" to start the web server.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "config.yaml", "Path to a YAML or TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging")
	rootCmd.PersistentFlags().IntVarP(&flagPort, "port", "p", 0, "Listen port (overrides the config file)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagPort != 0 {
		cfg.Server.Port = flagPort
	}
	if flagDebug {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Logger()
}

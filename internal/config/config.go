package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	TMDB     TMDBConfig     `yaml:"tmdb" toml:"tmdb"`
	OMDB     OMDBConfig     `yaml:"omdb" toml:"omdb"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Posters  PostersConfig  `yaml:"posters" toml:"posters"`
	Sessions SessionsConfig `yaml:"sessions" toml:"sessions"`
	Data     DataConfig     `yaml:"data" toml:"data"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

type ServerConfig struct {
	Host         string   `yaml:"host" toml:"host"`
	Port         int      `yaml:"port" toml:"port"`
	ReadTimeout  Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout" toml:"write_timeout"`
}

type TMDBConfig struct {
	BaseURL       string   `yaml:"base_url" toml:"base_url"`
	ImageBaseURL  string   `yaml:"image_base_url" toml:"image_base_url"`
	APIKey        string   `yaml:"api_key" toml:"api_key"`
	Language      string   `yaml:"language" toml:"language"`
	Timeout       Duration `yaml:"timeout" toml:"timeout"`
	CacheCapacity int      `yaml:"cache_capacity" toml:"cache_capacity"`
	CacheMaxSize  int64    `yaml:"cache_max_size" toml:"cache_max_size"` // bytes
	CacheTTL      Duration `yaml:"cache_ttl" toml:"cache_ttl"`
}

type OMDBConfig struct {
	BaseURL string `yaml:"base_url" toml:"base_url"`
	APIKey  string `yaml:"api_key" toml:"api_key"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // sqlite | postgres
	Path   string `yaml:"path" toml:"path"`
	DSN    string `yaml:"dsn" toml:"dsn"`
}

type PostersConfig struct {
	Enabled       bool   `yaml:"enabled" toml:"enabled"`
	OutputDir     string `yaml:"output_dir" toml:"output_dir"`
	CacheCapacity int    `yaml:"cache_capacity" toml:"cache_capacity"`
	CacheMaxSize  int64  `yaml:"cache_max_size" toml:"cache_max_size"` // bytes
}

type SessionsConfig struct {
	Capacity int      `yaml:"capacity" toml:"capacity"`
	TTL      Duration `yaml:"ttl" toml:"ttl"`
}

type DataConfig struct {
	Dir string `yaml:"dir" toml:"dir"` // empty = embedded fixtures
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Pretty bool   `yaml:"pretty" toml:"pretty"`
}

// Duration accepts "15s" style strings in both YAML and TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
		},
		TMDB: TMDBConfig{
			BaseURL:       "https://api.themoviedb.org/3",
			ImageBaseURL:  "https://image.tmdb.org/t/p",
			Language:      "en-US",
			Timeout:       Duration{15 * time.Second},
			CacheCapacity: 2000,
			CacheMaxSize:  64 * 1024 * 1024, // 64 MB
			CacheTTL:      Duration{10 * time.Minute},
		},
		OMDB: OMDBConfig{
			BaseURL: "https://www.omdbapi.com/",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "data/cinewatch.db",
		},
		Posters: PostersConfig{
			Enabled:       false,
			OutputDir:     "data/posters",
			CacheCapacity: 1000,
			CacheMaxSize:  256 * 1024 * 1024, // 256 MB
		},
		Sessions: SessionsConfig{
			Capacity: 10000,
			TTL:      Duration{time.Hour},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads defaults, then the config file (YAML or TOML by extension),
// then environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		c.TMDB.APIKey = v
	}
	if v := os.Getenv("OMDB_API_KEY"); v != "" {
		c.OMDB.APIKey = v
	}
	if v := os.Getenv("CINEWATCH_DATABASE_URL"); v != "" {
		c.Database.Driver = "postgres"
		c.Database.DSN = v
	}
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q (valid: sqlite, postgres)", c.Database.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}

	if c.TMDB.BaseURL == "" {
		return fmt.Errorf("tmdb base URL cannot be empty")
	}
	if c.TMDB.ImageBaseURL == "" {
		return fmt.Errorf("tmdb image base URL cannot be empty")
	}

	if c.Sessions.Capacity <= 0 {
		return fmt.Errorf("sessions capacity must be positive")
	}

	return nil
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

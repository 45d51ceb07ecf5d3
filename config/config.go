package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	API struct {
		BaseURL  string
		Resource string
		Timeout  time.Duration
	}

	DB struct {
		Driver string
		DSN    string
	}

	CORSAllowedOrigins []string

	NotificationTTL       time.Duration
	RateLimitPerSecond    int
	MutationRatePerMinute int

	ActivityRetention     time.Duration
	ActivityPruneInterval time.Duration

	ScreenIdleTTL       time.Duration
	ScreenSweepInterval time.Duration
}

// Load -> .env (optional), configs/config.yaml (optional), then environment variables
func Load() (*Config, error) {
	// .env boleh tidak ada
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("API_BASE_URL", "https://103.153.68.148")
	v.SetDefault("API_RESOURCE", "Ban")
	v.SetDefault("API_TIMEOUT", "30s")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "file::memory:?cache=shared")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://127.0.0.1:5500")
	v.SetDefault("NOTIFICATION_TTL", "6s")
	v.SetDefault("RATE_LIMIT_PER_SECOND", 50)
	v.SetDefault("MUTATION_RATE_PER_MINUTE", 30)
	v.SetDefault("ACTIVITY_RETENTION", "168h")
	v.SetDefault("ACTIVITY_PRUNE_INTERVAL", "1h")
	v.SetDefault("SCREEN_IDLE_TTL", "30m")
	v.SetDefault("SCREEN_SWEEP_INTERVAL", "1m")

	// File config opsional; SetConfigFile melaporkan file hilang sebagai error os
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		GinMode:               v.GetString("GIN_MODE"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		NotificationTTL:       v.GetDuration("NOTIFICATION_TTL"),
		RateLimitPerSecond:    v.GetInt("RATE_LIMIT_PER_SECOND"),
		MutationRatePerMinute: v.GetInt("MUTATION_RATE_PER_MINUTE"),
		ActivityRetention:     v.GetDuration("ACTIVITY_RETENTION"),
		ActivityPruneInterval: v.GetDuration("ACTIVITY_PRUNE_INTERVAL"),
		ScreenIdleTTL:         v.GetDuration("SCREEN_IDLE_TTL"),
		ScreenSweepInterval:   v.GetDuration("SCREEN_SWEEP_INTERVAL"),
	}
	cfg.API.BaseURL = strings.TrimRight(v.GetString("API_BASE_URL"), "/")
	cfg.API.Resource = v.GetString("API_RESOURCE")
	cfg.API.Timeout = v.GetDuration("API_TIMEOUT")
	cfg.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	cfg.DB.DSN = v.GetString("DB_DSN")
	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API_BASE_URL is not set")
	}
	if c.API.Resource == "" {
		return errors.New("API_RESOURCE is not set")
	}
	if c.API.Timeout < 0 {
		return errors.New("API_TIMEOUT must not be negative")
	}
	if c.DB.Driver != "sqlite" && c.DB.Driver != "mysql" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.RateLimitPerSecond <= 0 || c.MutationRatePerMinute <= 0 {
		return errors.New("rate limits must be positive")
	}
	if c.ActivityRetention > 0 && c.ActivityPruneInterval <= 0 {
		return errors.New("ACTIVITY_PRUNE_INTERVAL must be positive when retention is enabled")
	}
	if c.ScreenIdleTTL > 0 && c.ScreenSweepInterval <= 0 {
		return errors.New("SCREEN_SWEEP_INTERVAL must be positive when SCREEN_IDLE_TTL is set")
	}
	return nil
}

// InitDB -> opens the activity log database
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DB.DSN)
	default:
		dialector = sqlite.Open(cfg.DB.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
	}
	return db, nil
}

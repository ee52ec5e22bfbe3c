package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Engine    EngineConfig
	Scheduler SchedulerConfig
	Sheets    SheetsConfig
	Alerts    AlertsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// EngineConfig tunes the consumption execution engine.
type EngineConfig struct {
	// LookbackDays bounds how far back an auto run replays outstanding days.
	LookbackDays int
}

// SchedulerConfig holds cron-related settings.
type SchedulerConfig struct {
	CatchUpCron string
	ExportCron  string
	Timezone    string
}

// SheetsConfig contains configuration for the consumption ledger export.
// Export is disabled when either field is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// AlertsConfig configures the shortage alert webhook. Alerts are disabled when
// the URL is empty.
type AlertsConfig struct {
	WebhookURL string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	lookback, err := getenvInt("ENGINE_LOOKBACK_DAYS", 30)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017/?retryWrites=true&w=majority"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "feedengine"),
		},
		Engine: EngineConfig{
			LookbackDays: lookback,
		},
		Scheduler: SchedulerConfig{
			CatchUpCron: getenvWithDefault("CATCHUP_CRON_SCHEDULE", "30 0 * * *"),
			ExportCron:  getenvWithDefault("EXPORT_CRON_SCHEDULE", "0 6 * * 1"),
			Timezone:    getenvWithDefault("TIMEZONE", "UTC"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
		Alerts: AlertsConfig{
			WebhookURL: os.Getenv("SHORTAGE_ALERT_WEBHOOK_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Engine.LookbackDays <= 0 {
		return errors.New("ENGINE_LOOKBACK_DAYS must be positive")
	}

	if c.Scheduler.CatchUpCron == "" {
		return errors.New("CATCHUP_CRON_SCHEDULE must be provided")
	}

	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	// Sheets export and shortage alerts are optional features, but a partially
	// configured export is a mistake worth failing on.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_EXPORT_ID must be set together")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

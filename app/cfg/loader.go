package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"podcast_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"podcast_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"podcast_hub" description:"Database name"`

	// Application configuration
	Environment   string `long:"environment" env:"ENVIRONMENT" default:"development" choice:"development" choice:"production" description:"Runtime environment"`
	Port          string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl       string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://podcasts.example.com)"`
	AllowedOrigin string `long:"allowed-origin" env:"ALLOWED_ORIGIN" description:"CORS allowed origin (defaults to * in development)"`
	CatalogFile   string `long:"catalog-file" env:"CATALOG_FILE" description:"Missing-episode metadata file (.json or .yml) imported at startup"`

	// Authentication
	JWTSecret string `long:"jwt-secret" env:"JWT_SECRET" description:"Secret used to sign access tokens (required)" required:"true"`
	TokenTTL  int    `long:"token-ttl" env:"TOKEN_TTL" default:"72" description:"Access token lifetime in hours"`

	// Background maintenance
	WorkerCount         int `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for catalog tasks"`
	MaintenanceInterval int `long:"maintenance-interval" env:"MAINTENANCE_INTERVAL" default:"3600" description:"Catalog maintenance interval in seconds (0 disables)"`

	// Feed fetching
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"Podcast Hub/1.0" description:"User agent string for HTTP requests"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/Sao_Paulo)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:              raw.DBHost,
		DBPort:              raw.DBPort,
		DBUser:              raw.DBUser,
		DBPassword:          raw.DBPassword,
		DBName:              raw.DBName,
		Environment:         raw.Environment,
		Port:                raw.Port,
		BaseUrl:             raw.BaseUrl,
		AllowedOrigin:       raw.AllowedOrigin,
		CatalogFile:         raw.CatalogFile,
		JWTSecret:           raw.JWTSecret,
		TokenTTL:            raw.TokenTTL,
		WorkerCount:         raw.WorkerCount,
		MaintenanceInterval: raw.MaintenanceInterval,
		FetchTimeout:        raw.FetchTimeout,
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// RefreshInterval is how often every voter's session controller
	// re-checks for an active session.
	RefreshInterval time.Duration

	// SubmittedHold is how long a controller stays in the submitted
	// phase before dropping back to waiting.
	SubmittedHold time.Duration
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("liveballot", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Session lifecycle timing
	fs.DurationVar(&cfg.RefreshInterval, "refresh", 0, "Periodic session refresh interval")
	fs.DurationVar(&cfg.SubmittedHold, "hold", 0, "How long the submitted phase is displayed")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("DATABASE_TYPE must be sqlite or postgres")
	}

	if cfg.RefreshInterval == 0 {
		if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, errors.New("invalid REFRESH_INTERVAL env variable")
			}
			cfg.RefreshInterval = d
		} else {
			cfg.RefreshInterval = 15 * time.Second
		}
	}
	if cfg.RefreshInterval < 0 {
		return Config{}, errors.New("refresh interval must be positive")
	}

	if cfg.SubmittedHold == 0 {
		if v := os.Getenv("SUBMITTED_HOLD"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, errors.New("invalid SUBMITTED_HOLD env variable")
			}
			cfg.SubmittedHold = d
		} else {
			cfg.SubmittedHold = 5 * time.Second
		}
	}
	if cfg.SubmittedHold < 0 {
		return Config{}, errors.New("submitted hold must be positive")
	}

	return cfg, nil
}

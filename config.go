package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Horse-MA00/portfolio/internal/rotation"
)

// Config is read from the environment. A .env file in the working
// directory is loaded automatically; --env-file loads another one.
type Config struct {
	Port           string
	DBPath         string
	ContentFile    string
	AdminUsername  string
	AdminPassword  string
	Retention      time.Duration
	RotationPeriod time.Duration
	RotationDelay  time.Duration
}

// loadEnvFile merges path into the environment without overriding values
// that are already set.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads the environment and applies development defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:           os.Getenv("PORT"),
		DBPath:         os.Getenv("DB_PATH"),
		ContentFile:    os.Getenv("CONTENT_FILE"),
		AdminUsername:  os.Getenv("ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		Retention:      365 * 24 * time.Hour,
		RotationPeriod: rotation.DefaultPeriod,
		RotationDelay:  rotation.DefaultDelay,
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return Config{}, fmt.Errorf("RETENTION_DAYS must be a positive integer, got %q", v)
		}
		cfg.Retention = time.Duration(days) * 24 * time.Hour
	}

	var err error
	if cfg.RotationPeriod, err = durationEnv("ROTATION_PERIOD", cfg.RotationPeriod); err != nil {
		return Config{}, err
	}
	if cfg.RotationDelay, err = durationEnv("ROTATION_DELAY", cfg.RotationDelay); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// adminCredentials falls back to development credentials when unset.
// The bool reports whether a default was used.
func (c Config) adminCredentials() (string, string, bool) {
	user, pass, defaulted := c.AdminUsername, c.AdminPassword, false
	if user == "" {
		user = "admin"
		defaulted = true
	}
	if pass == "" {
		pass = "admin123"
		defaulted = true
	}
	return user, pass, defaulted
}

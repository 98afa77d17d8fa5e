package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration read from the environment
type Config struct {
	TelegramToken string
	AdminIDs      []int64

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	DatabaseDriver string
	DatabaseURL    string

	Port           string
	Location       *time.Location
	RequestTimeout time.Duration

	SchedulerEnabled bool
	ReminderHour     int

	LogMode string
}

// LoadEnvFiles loads variables from envFiles (".env" when none are given)
// without overriding ones already set. Missing files are skipped.
func LoadEnvFiles(envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// A missing .env is normal in production
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads optional env files and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    Getenv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  strings.TrimRight(Getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
		DatabaseDriver: Getenv("DATABASE_DRIVER", "sqlite3"),
		DatabaseURL:    Getenv("DATABASE_URL", "data/toeicbot.db"),
		Port:           Getenv("PORT", "3000"),
		LogMode:        Getenv("LOG_MODE", "development"),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	switch cfg.DatabaseDriver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("DATABASE_DRIVER: unsupported driver %q", cfg.DatabaseDriver)
	}

	loc, err := time.LoadLocation(Getenv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.RequestTimeout, err = time.ParseDuration(Getenv("REQUEST_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}

	cfg.SchedulerEnabled = os.Getenv("ENABLE_SCHEDULER") != "false"

	cfg.ReminderHour, err = strconv.Atoi(Getenv("REMINDER_HOUR", "20"))
	if err != nil || cfg.ReminderHour < 0 || cfg.ReminderHour > 23 {
		return nil, fmt.Errorf("REMINDER_HOUR: must be an hour between 0 and 23")
	}

	if ids := os.Getenv("ADMIN_USER_IDS"); ids != "" {
		for _, idStr := range strings.Split(ids, ",") {
			idStr = strings.TrimSpace(idStr)
			if idStr == "" {
				continue
			}
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("ADMIN_USER_IDS: invalid admin user ID %q", idStr)
			}
			cfg.AdminIDs = append(cfg.AdminIDs, id)
		}
	}

	return cfg, nil
}

// Getenv returns the trimmed value of key, or defaultVal when it is unset or blank
func Getenv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val)
	}
	return defaultVal
}

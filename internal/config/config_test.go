package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, "data/toeicbot.db", cfg.DatabaseURL)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 20, cfg.ReminderHour)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Empty(t, cfg.AdminIDs)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://bot@localhost/bot")
	t.Setenv("ADMIN_USER_IDS", "1, 2,,3")
	t.Setenv("ENABLE_SCHEDULER", "false")
	t.Setenv("REMINDER_HOUR", "7")
	t.Setenv("REQUEST_TIMEOUT", "15s")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1/")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, []int64{1, 2, 3}, cfg.AdminIDs)
	assert.False(t, cfg.SchedulerEnabled)
	assert.Equal(t, 7, cfg.ReminderHour)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "http://localhost:8080/v1", cfg.OpenAIBaseURL)
}

func TestLoadReadsEnvFile(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TELEGRAM_BOT_TOKEN=from-file\nOPENAI_API_KEY=key-file\n"), 0o600))
	// godotenv does not override variables that are already set, even to empty
	require.NoError(t, os.Unsetenv("TELEGRAM_BOT_TOKEN"))
	require.NoError(t, os.Unsetenv("OPENAI_API_KEY"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.TelegramToken)
	assert.Equal(t, "key-file", cfg.OpenAIKey)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"missing token": {"TELEGRAM_BOT_TOKEN", ""},
		"driver":        {"DATABASE_DRIVER", "mysql"},
		"hour":          {"REMINDER_HOUR", "24"},
		"timeout":       {"REQUEST_TIMEOUT", "soon"},
		"admin":         {"ADMIN_USER_IDS", "1,x"},
		"timezone":      {"TIMEZONE", "Mars/Olympus"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load(noEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("TOEICBOT_TEST_VALUE", "  padded  ")
	assert.Equal(t, "padded", Getenv("TOEICBOT_TEST_VALUE", "x"))

	t.Setenv("TOEICBOT_TEST_VALUE", "   ")
	assert.Equal(t, "x", Getenv("TOEICBOT_TEST_VALUE", "x"))
}

func TestLoadEnvFilesSkipsMissing(t *testing.T) {
	assert.NoError(t, LoadEnvFiles(noEnvFile(t)))
}

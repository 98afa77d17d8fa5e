package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Telegram user IDs allowed to import vocabulary
	AdminUserIDs []int64
	// Time budget for handling one update
	RequestTimeout time.Duration
	// Long polling timeout in seconds
	UpdateTimeout int
	// Largest vocabulary file accepted for import
	MaxImportSize int64
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		RequestTimeout: 60 * time.Second,
		UpdateTimeout:  60,
		MaxImportSize:  5 * 1024 * 1024,
	}
}

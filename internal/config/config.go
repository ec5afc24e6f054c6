package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mailsweep/")
	v.AddConfigPath("$HOME/.mailsweep")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("MAILSWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Store defaults
	v.SetDefault("store.type", "imap")

	// IMAP defaults
	v.SetDefault("imap.host", "")
	v.SetDefault("imap.port", "993")
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.password", "")
	v.SetDefault("imap.tls", true)
	v.SetDefault("imap.root_folder", "INBOX")
	v.SetDefault("imap.holding_folder", "Trash")
	v.SetDefault("imap.dial_retries", 3)

	// Cleanup defaults
	v.SetDefault("cleanup.include_root", false)
	v.SetDefault("cleanup.keep_category_regex", "Keep")
	v.SetDefault("cleanup.start_date", "")
	v.SetDefault("cleanup.older_than", "")
	v.SetDefault("cleanup.mark_read", true)
	v.SetDefault("cleanup.dry_run", false)
	v.SetDefault("cleanup.move_retries", 3)

	// Retrieval defaults
	v.SetDefault("retrieval.strategy", "exhaustive")

	// Journal defaults
	v.SetDefault("journal.type", "none")
	v.SetDefault("journal.sqlite_path", "/data/mailsweep_journal.db")
	v.SetDefault("journal.mysql_dsn", "user:password@tcp(localhost:3306)/mailsweep")
	v.SetDefault("journal.retention", "2160h")
	v.SetDefault("journal.prune_frequency", "24h")

	// Progress defaults
	v.SetDefault("progress.type", "console")
	v.SetDefault("progress.width", 40)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}

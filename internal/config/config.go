package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Dedup backends
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Dedup identity policies
const (
	IdentityDelivery = "delivery"
	IdentitySemantic = "semantic"
)

// Config represents the complete configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Lark      LarkConfig      `mapstructure:"lark"`
	Dedup     DedupConfig     `mapstructure:"dedup"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LarkConfig contains Lark Open API settings
type LarkConfig struct {
	AppID             string        `mapstructure:"app_id"`
	AppSecret         string        `mapstructure:"app_secret"`
	BaseURL           string        `mapstructure:"base_url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	DepartmentTimeout time.Duration `mapstructure:"department_timeout"`
	DirectoryTimeout  time.Duration `mapstructure:"directory_timeout"`
}

// ReplyBudget is the longest a delivery can spend in the Open API before it
// is acknowledged: the token, the whole directory, one department lookup and
// the reply, each at its limit. Extra distinct departments among homonyms
// add a department timeout each.
func (l LarkConfig) ReplyBudget() time.Duration {
	return l.RequestTimeout + l.DirectoryTimeout + l.DepartmentTimeout + l.RequestTimeout
}

// DedupConfig controls webhook redelivery suppression
type DedupConfig struct {
	Backend       string        `mapstructure:"backend"`
	Identity      string        `mapstructure:"identity"`
	Window        time.Duration `mapstructure:"window"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
	FailOpen      bool          `mapstructure:"fail_open"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DirectoryConfig controls department name resolution
type DirectoryConfig struct {
	DepartmentsFile string `mapstructure:"departments_file"`
	RemoteFallback  bool   `mapstructure:"remote_fallback"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/lark-dept-bot/")

	// Environment variable settings
	v.SetEnvPrefix("LARK_DEPT_BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind environment variables
	v.BindEnv("lark.app_id", "LARK_DEPT_BOT_LARK_APP_ID", "LARK_APP_ID")
	v.BindEnv("lark.app_secret", "LARK_DEPT_BOT_LARK_APP_SECRET", "LARK_APP_SECRET")
	v.BindEnv("lark.base_url")
	v.BindEnv("server.port")
	v.BindEnv("server.write_timeout")
	v.BindEnv("lark.directory_timeout")
	v.BindEnv("dedup.backend")
	v.BindEnv("dedup.identity")
	v.BindEnv("dedup.window")
	v.BindEnv("dedup.purge_interval")
	v.BindEnv("dedup.fail_open")
	v.BindEnv("database.path")
	v.BindEnv("directory.departments_file")
	v.BindEnv("directory.remote_fallback")
	v.BindEnv("logging.level")
	v.BindEnv("logging.format")
	v.BindEnv("logging.output")

	setDefaultsWithViper(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaultsWithViper sets default values with a specific viper instance
func setDefaultsWithViper(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")

	// Lark defaults
	v.SetDefault("lark.base_url", "https://open.larksuite.com")
	v.SetDefault("lark.request_timeout", "10s")
	v.SetDefault("lark.department_timeout", "5s")
	v.SetDefault("lark.directory_timeout", "20s")

	// Dedup defaults
	v.SetDefault("dedup.backend", BackendSQLite)
	v.SetDefault("dedup.identity", IdentityDelivery)
	v.SetDefault("dedup.window", "5m")
	v.SetDefault("dedup.purge_interval", "1m")
	v.SetDefault("dedup.fail_open", true)

	// Database defaults
	v.SetDefault("database.path", "./data/lark-dept-bot.db")

	// Directory defaults
	v.SetDefault("directory.departments_file", "")
	v.SetDefault("directory.remote_fallback", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Lark.AppID == "" {
		return fmt.Errorf("lark.app_id is required")
	}
	if c.Lark.AppSecret == "" {
		return fmt.Errorf("lark.app_secret is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}

	if c.Lark.RequestTimeout <= 0 {
		return fmt.Errorf("lark.request_timeout must be positive")
	}
	if c.Lark.DepartmentTimeout <= 0 {
		return fmt.Errorf("lark.department_timeout must be positive")
	}
	if c.Lark.DirectoryTimeout <= 0 {
		return fmt.Errorf("lark.directory_timeout must be positive")
	}

	// The reply is sent before the webhook is acknowledged; a write timeout
	// shorter than the pipeline loses the ack and triggers a redelivery.
	if budget := c.Lark.ReplyBudget(); c.Server.WriteTimeout <= budget {
		return fmt.Errorf("server.write_timeout (%s) must exceed the reply budget of %s", c.Server.WriteTimeout, budget)
	}

	switch c.Dedup.Backend {
	case BackendSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite dedup backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown dedup.backend: %s", c.Dedup.Backend)
	}

	switch c.Dedup.Identity {
	case IdentityDelivery, IdentitySemantic:
	default:
		return fmt.Errorf("unknown dedup.identity: %s", c.Dedup.Identity)
	}

	if c.Dedup.Window <= 0 {
		return fmt.Errorf("dedup.window must be positive")
	}
	if c.Dedup.PurgeInterval <= 0 {
		return fmt.Errorf("dedup.purge_interval must be positive")
	}

	return nil
}

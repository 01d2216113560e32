package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Worker   WorkerConfig   `mapstructure:"worker"`
	Database DatabaseConfig `mapstructure:"database"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	MCP      MCPConfig      `mapstructure:"mcp"`
	Log      LogConfig      `mapstructure:"log"`
}

// WorkerConfig holds worker configuration.
type WorkerConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	QueueGroup  string        `mapstructure:"queue_group"`
	JobTimeout  time.Duration `mapstructure:"job_timeout"`
	MaxMemoryMB int           `mapstructure:"max_memory_mb"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections"`
}

// DSN returns the database connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

// AnalysisConfig holds defaults for source analysis.
type AnalysisConfig struct {
	MinVisibility        string   `mapstructure:"min_visibility"`
	IncludeDocumentation bool     `mapstructure:"include_documentation"`
	ContextLines         int      `mapstructure:"context_lines"`
	Concurrency          int      `mapstructure:"concurrency"`
	MaxFileSizeBytes     int64    `mapstructure:"max_file_size_bytes"`
	IncludeGlobs         []string `mapstructure:"include_globs"`
	ExcludeGlobs         []string `mapstructure:"exclude_globs"`
	RespectGitignore     bool     `mapstructure:"respect_gitignore"`
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	ServerName    string        `mapstructure:"server_name"`
	MaxOpenTrees  int           `mapstructure:"max_open_trees"`
	HandleTimeout time.Duration `mapstructure:"handle_timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New creates a new Config instance from Viper.
func New(v *viper.Viper) *Config {
	var config Config

	// Unmarshal configuration
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("unable to decode config: %w", err))
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}

	return &config
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Worker.Concurrency < 1 {
		return errors.New("worker.concurrency must be at least 1")
	}

	if c.Database.Port != 0 && (c.Database.Port < 1 || c.Database.Port > 65535) {
		return errors.New("database.port must be between 1 and 65535")
	}

	if c.Analysis.ContextLines < 0 {
		return errors.New("analysis.context_lines cannot be negative")
	}

	if c.Analysis.MaxFileSizeBytes < 0 {
		return errors.New("analysis.max_file_size_bytes cannot be negative")
	}

	switch c.Analysis.MinVisibility {
	case "", "open", "public", "package", "internal", "fileprivate", "private":
	default:
		return fmt.Errorf("analysis.min_visibility %q is not a Swift access level", c.Analysis.MinVisibility)
	}

	return nil
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	"swiftscope/internal/application/common/logging"
	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swiftscope",
	Short: "Swift source analysis and structured editing",
	Long: `SwiftScope parses Swift source files into syntax trees and works on them
without ever losing a byte of the original text.

The system supports:
- Declaration outlines with visibility filtering and structured doc comments
- Token-addressed edits: replace, delete, doc comment rewrites, reindentation
- Syntax diagnostics with source context and fix-it hints
- Project indexing with per-file analysis jobs on NATS JetStream
- Outline storage in PostgreSQL for whole-project queries
- An MCP server exposing the analysis tools over stdio`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format (json, text)")

	// Bind flags to viper
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
	}
	if err := viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-format flag: %v\n", err)
	}
}

func initConfig() {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Set config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix("SWIFTSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
		// Config file not found; use defaults and environment
	}

	// Load configuration
	cfg = config.New(v)
}

func setDefaults(v *viper.Viper) {
	// Worker defaults
	v.SetDefault("worker.concurrency", 5)
	v.SetDefault("worker.queue_group", "analysis-workers")
	v.SetDefault("worker.job_timeout", "5m")
	v.SetDefault("worker.max_memory_mb", 0)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "swiftscope")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_connections", 5)

	// NATS defaults
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.max_reconnects", 5)
	v.SetDefault("nats.reconnect_wait", "2s")

	// Analysis defaults
	v.SetDefault("analysis.min_visibility", "private")
	v.SetDefault("analysis.include_documentation", true)
	v.SetDefault("analysis.context_lines", 0)
	v.SetDefault("analysis.concurrency", 0)
	v.SetDefault("analysis.respect_gitignore", true)

	// MCP defaults
	v.SetDefault("mcp.server_name", "swiftscope-mcp-server")

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// configureLogging points the global logger at the given output stream.
// Commands that print payloads on stdout log to stderr so their output
// stays machine readable.
func configureLogging(output string) {
	c := GetConfig()
	logger, err := logging.NewApplicationLogger(logging.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %v\n", err)
		return
	}
	slogger.SetGlobalLogger(logger)
}

package common

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/material-list/constants"
)

// Config holds all application configuration
type Config struct {
	RulesFile string
	Output    OutputConfig
	Archive   ArchiveConfig
	History   HistoryConfig
	Stock     StockConfig
	Watch     WatchConfig
	Server    ServerConfig
	Log       LogConfig
}

// OutputConfig holds settings for the generated documents
type OutputConfig struct {
	DocumentName string
	ExportXLSX   bool
	Thickness    int // mm; 0 lists every thickness
}

// ArchiveConfig holds archive extraction settings
type ArchiveConfig struct {
	ScratchRoot string   // parent of per-job scratch dirs; empty -> os.TempDir()
	UnrarPaths  []string // tried before the built-in locations
	ToolTimeout time.Duration
}

// HistoryConfig holds job-ledger settings; an empty DSN disables the ledger
type HistoryConfig struct {
	DSN         string
	DialTimeout time.Duration
}

// StockConfig locates the CHP/RET stock tables
type StockConfig struct {
	Dir string
}

// WatchConfig holds inbox-watcher settings for the daemon
type WatchConfig struct {
	Dir         string
	Debounce    time.Duration
	InitialScan bool
	QueueSize   int
	JobTimeout  time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string // "text" | "json"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		RulesFile: getEnv("MATERIALS_RULES_FILE", ""),
		Output: OutputConfig{
			DocumentName: getEnv("OUTPUT_NAME", constants.DefaultDocumentName),
			ExportXLSX:   getEnvAsBool("EXPORT_XLSX", false),
			Thickness:    getEnvAsInt("OUTPUT_THICKNESS", 0),
		},
		Archive: ArchiveConfig{
			ScratchRoot: getEnv("SCRATCH_DIR", ""),
			UnrarPaths:  getEnvAsList("UNRAR_PATHS"),
			ToolTimeout: getEnvAsDuration("UNRAR_TIMEOUT", 2*time.Minute),
		},
		History: HistoryConfig{
			DSN:         getEnv("HISTORY_DSN", ""),
			DialTimeout: getEnvAsDuration("HISTORY_DIAL_TIMEOUT", 3*time.Second),
		},
		Stock: StockConfig{
			Dir: getEnv("STOCK_DIR", ""),
		},
		Watch: WatchConfig{
			Dir:         getEnv("WATCH_DIR", ""),
			Debounce:    getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
			InitialScan: getEnvAsBool("WATCH_INITIAL_SCAN", true),
			QueueSize:   getEnvAsInt("QUEUE_SIZE", 64),
			JobTimeout:  getEnvAsDuration("JOB_TIMEOUT", 10*time.Minute),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits on the OS path-list separator (":" or ";").
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, p := range filepath.SplitList(value) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the settings shared by the CLI and the daemon
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Output.DocumentName, `/\`) {
		return NewAppError(CodeConfig, "OUTPUT_NAME must be a file name, not a path", ErrInvalidInput)
	}
	if c.Output.Thickness < 0 {
		return NewAppError(CodeConfig, "OUTPUT_THICKNESS must not be negative", ErrInvalidInput)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return NewAppError(CodeConfig, "LOG_FORMAT must be text or json", ErrInvalidInput)
	}
	return nil
}

// ValidateWatch validates the daemon-only settings
func (c *Config) ValidateWatch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Watch.Dir == "" {
		return NewAppError(CodeConfig, "WATCH_DIR is required", ErrInvalidInput)
	}
	if c.Watch.QueueSize <= 0 {
		return NewAppError(CodeConfig, "QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError(CodeConfig, "GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}

package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Extract  ExtractConfig
	Report   ReportConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // "sqlite" | "postgres"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr  string
	RateLimit float64 // requests per second, 0 disables limiting
	RateBurst int
}

// ExtractConfig holds invoice extraction settings
type ExtractConfig struct {
	Page            int
	Pdftotext       string
	DisableFallback bool
	CatalogPath     string
	QtyPath         string
	Workers         int
	WatchDir        string
	QueueSize       int
	ProcessTimeout  time.Duration
}

// ReportConfig holds export destinations
type ReportConfig struct {
	CSVPath  string
	XLSXPath string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string // "text" | "json"
	Plain  bool   // drop time and level attributes
}

// ConfigFileEnv names the variable pointing at an optional YAML/JSON/TOML config file.
const ConfigFileEnv = "INVOICES_CONFIG"

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_URL", "file:invoices.db?_pragma=foreign_keys(1)")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	v.SetDefault("DB_MAX_CONN_IDLE_TIME", 5*time.Minute)
	v.SetDefault("DB_DIAL_TIMEOUT", 3*time.Second)
	v.SetDefault("DB_STATEMENT_TIMEOUT", time.Duration(0))

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("GRPC_RATE_LIMIT", 50.0)
	v.SetDefault("GRPC_RATE_BURST", 100)

	v.SetDefault("INVOICE_PAGE", 2)
	v.SetDefault("PDFTOTEXT_BIN", "pdftotext")
	v.SetDefault("PDFTOTEXT_DISABLED", false)
	v.SetDefault("CATALOG_PATH", "")
	v.SetDefault("QTY_PATH", "")
	v.SetDefault("EXTRACT_WORKERS", 4)
	v.SetDefault("WATCH_DIR", "")
	v.SetDefault("QUEUE_SIZE", 64)
	v.SetDefault("PROCESS_TIMEOUT", time.Minute)

	v.SetDefault("OUT_CSV", "")
	v.SetDefault("OUT_XLSX", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_PLAIN", false)
}

// LoadConfig loads configuration from defaults, the optional config file and environment
// variables, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("read %s", path), err)
			}
		}
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:              v.GetString("DB_URL"),
			MaxConns:         v.GetInt32("DB_MAX_CONNS"),
			MinConns:         v.GetInt32("DB_MIN_CONNS"),
			MaxConnLifetime:  v.GetDuration("DB_MAX_CONN_LIFETIME"),
			MaxConnIdleTime:  v.GetDuration("DB_MAX_CONN_IDLE_TIME"),
			DialTimeout:      v.GetDuration("DB_DIAL_TIMEOUT"),
			StatementTimeout: v.GetDuration("DB_STATEMENT_TIMEOUT"),
		},
		Server: ServerConfig{
			GRPCAddr:  v.GetString("GRPC_ADDR"),
			RateLimit: v.GetFloat64("GRPC_RATE_LIMIT"),
			RateBurst: v.GetInt("GRPC_RATE_BURST"),
		},
		Extract: ExtractConfig{
			Page:            v.GetInt("INVOICE_PAGE"),
			Pdftotext:       v.GetString("PDFTOTEXT_BIN"),
			DisableFallback: v.GetBool("PDFTOTEXT_DISABLED"),
			CatalogPath:     v.GetString("CATALOG_PATH"),
			QtyPath:         v.GetString("QTY_PATH"),
			Workers:         v.GetInt("EXTRACT_WORKERS"),
			WatchDir:        v.GetString("WATCH_DIR"),
			QueueSize:       v.GetInt("QUEUE_SIZE"),
			ProcessTimeout:  v.GetDuration("PROCESS_TIMEOUT"),
		},
		Report: ReportConfig{
			CSVPath:  v.GetString("OUT_CSV"),
			XLSXPath: v.GetString("OUT_XLSX"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Plain:  v.GetBool("LOG_PLAIN"),
		},
	}, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("DB_DRIVER", c.Database.Driver, Required, OneOf("sqlite", "postgres")).
		Field("DB_URL", c.Database.DSN, Required).
		Field("GRPC_ADDR", c.Server.GRPCAddr, Required).
		Field("INVOICE_PAGE", c.Extract.Page, Positive).
		Field("EXTRACT_WORKERS", c.Extract.Workers, Positive).
		Field("QUEUE_SIZE", c.Extract.QueueSize, Positive).
		Field("LOG_FORMAT", c.Log.Format, OneOf("text", "json"))
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

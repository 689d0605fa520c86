package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"radiology/internal/adapters/out/worklist"
	"radiology/internal/core/application/usecases/commands"
	"radiology/internal/jobs"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	TransportHTTP      = "http"
	TransportDirectory = "directory"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	Store      string

	WorklistTransport  string
	WorklistGatewayURL string
	WorklistTimeout    time.Duration
	WorklistDir        string

	ProcedureStepDir          string
	ProcedureStepPollSchedule string
	DeviceAddress             string
	DeviceListenerEnabled     bool

	StudyUIDRoot     string
	OrderLockTimeout time.Duration
	JWTSecret        string

	LogLevel  string
	LogFormat string

	OtelEndpoint    string
	OtelServiceName string
}

// LoadConfig reads the configuration through getenv, applying defaults for
// unset keys. Malformed values and inconsistent combinations are reported
// together.
func LoadConfig(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	var errs []error
	duration := func(key string, fallback time.Duration) time.Duration {
		raw := get(key, "")
		if raw == "" {
			return fallback
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: %q is not a positive duration", key, raw))
			return fallback
		}
		return d
	}
	boolean := func(key string, fallback bool) bool {
		raw := get(key, "")
		if raw == "" {
			return fallback
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a boolean", key, raw))
			return fallback
		}
		return b
	}

	cfg := Config{
		HTTPPort:   get("HTTP_PORT", "8080"),
		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", ""),
		DBPassword: getenv("DB_PASSWORD"),
		DBName:     get("DB_NAME", "radiology"),
		DBSslMode:  get("DB_SSLMODE", "disable"),
		Store:      strings.ToLower(get("STORE", StorePostgres)),

		WorklistTransport:  strings.ToLower(get("WORKLIST_TRANSPORT", TransportHTTP)),
		WorklistGatewayURL: get("WORKLIST_GATEWAY_URL", ""),
		WorklistTimeout:    duration("WORKLIST_TIMEOUT", worklist.DefaultTimeout),
		WorklistDir:        get("WORKLIST_DIR", "data/worklist"),

		ProcedureStepDir:          get("PROCEDURE_STEP_DIR", "data/mpps"),
		ProcedureStepPollSchedule: get("PROCEDURE_STEP_POLL_SCHEDULE", jobs.DefaultProcedureStepPollSchedule),
		DeviceAddress:             get("DEVICE_ADDRESS", "0.0.0.0:11112"),
		DeviceListenerEnabled:     boolean("DEVICE_LISTENER_ENABLED", true),

		StudyUIDRoot:     get("STUDY_UID_ROOT", ""),
		OrderLockTimeout: duration("ORDER_LOCK_TIMEOUT", commands.DefaultLockTimeout),
		JWTSecret:        getenv("JWT_SECRET"),

		LogLevel:  strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(get("LOG_FORMAT", "text")),

		OtelEndpoint:    get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelServiceName: get("OTEL_SERVICE_NAME", "radiology"),
	}

	switch cfg.Store {
	case StorePostgres:
		if cfg.DBUser == "" {
			errs = append(errs, errors.New("DB_USER is required when STORE=postgres"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE: %q is not one of postgres, memory", cfg.Store))
	}

	switch cfg.WorklistTransport {
	case TransportHTTP:
		if cfg.WorklistGatewayURL == "" {
			errs = append(errs, errors.New("WORKLIST_GATEWAY_URL is required when WORKLIST_TRANSPORT=http"))
		}
	case TransportDirectory:
	default:
		errs = append(errs, fmt.Errorf("WORKLIST_TRANSPORT: %q is not one of http, directory", cfg.WorklistTransport))
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT: %q is not one of text, json", cfg.LogFormat))
	}

	return cfg, errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %q is not a log level", s)
	}
	return level, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Database     DatabaseConfig
	App          AppConfig
	JWT          JWTConfig
	Leave        LeaveConfig
	Attendance   AttendanceConfig
	Notification NotificationConfig
	AWS          AWSConfig
	Telemetry    TelemetryConfig
}

type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	Location    *time.Location
	CORSOrigins []string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

type LeaveConfig struct {
	AllowPastStart bool
}

type AttendanceConfig struct {
	DefaultShiftID string
	// SweepInterval is how often stale open records are auto-closed.
	// Zero disables the sweep.
	SweepInterval time.Duration
}

type NotificationConfig struct {
	Workers       int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

// AWSConfig points the notification publisher at SQS. An empty queue URL
// disables it.
type AWSConfig struct {
	Region               string
	Endpoint             string
	NotificationQueueURL string
}

type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	var errs []error
	config := &Config{}

	config.Database = DatabaseConfig{
		Driver:      strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        getEnvInt("DB_PORT", 5432, &errs),
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "hrm_core"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    getEnvInt("DB_MAX_CONNS", 25, &errs),
		MinConns:    getEnvInt("DB_MIN_CONNS", 5, &errs),
		AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false, &errs),
	}

	config.App = AppConfig{
		Port:        getEnvInt("APP_PORT", 8080, &errs),
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	loc, err := time.LoadLocation(config.App.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE: %w", err))
		loc = time.UTC
	}
	config.App.Location = loc

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Leave = LeaveConfig{
		AllowPastStart: getEnvBool("LEAVE_ALLOW_PAST_START", false, &errs),
	}

	config.Attendance = AttendanceConfig{
		DefaultShiftID: getEnv("ATTENDANCE_DEFAULT_SHIFT_ID", ""),
		SweepInterval:  getEnvDuration("ATTENDANCE_SWEEP_INTERVAL", time.Hour, &errs),
	}

	config.Notification = NotificationConfig{
		Workers:       getEnvInt("NOTIFICATION_WORKERS", 2, &errs),
		QueueSize:     getEnvInt("NOTIFICATION_QUEUE_SIZE", 1000, &errs),
		BatchSize:     getEnvInt("NOTIFICATION_BATCH_SIZE", 100, &errs),
		FlushInterval: getEnvDuration("NOTIFICATION_FLUSH_INTERVAL", time.Second, &errs),
	}

	config.AWS = AWSConfig{
		Region:               getEnv("AWS_REGION", "ap-southeast-1"),
		Endpoint:             getEnv("AWS_ENDPOINT", ""),
		NotificationQueueURL: getEnv("SQS_NOTIFICATION_QUEUE_URL", ""),
	}

	config.Telemetry = TelemetryConfig{
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "hrm-core"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case StoreDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

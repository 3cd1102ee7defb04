package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Server    ServerConfig
	Dashboard DashboardConfig
	Exports   ExportsConfig
	Documents DocumentsConfig
	Classes   ClassConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ServerConfig controls HTTP request handling limits.
type ServerConfig struct {
	RequestTimeout time.Duration
}

// DashboardConfig tunes derived-view composition.
type DashboardConfig struct {
	CacheTTL            time.Duration
	AttendanceWindow    time.Duration
	GradeWindow         time.Duration
	RecentGradeEvents   int
	RecentAbsenceEvents int
	ActivityFeedLimit   int
	ClassOverviewLimit  int
}

// ExportsConfig configures asynchronous report exports.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// DocumentsConfig configures student document storage. Documents live in
// their own directory so the export cleanup sweep never touches them.
type DocumentsConfig struct {
	StorageDir string
}

// ClassConfig holds the capacity indicator thresholds. These are deliberately
// separate from the grading thresholds so the two scales stay independently
// tunable.
type ClassConfig struct {
	CapacityDangerPct  float64
	CapacityWarningPct float64
}

// Load reads configuration from the environment, optionally seeded by a .env
// file in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "classtrack")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "classtrack")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("SERVER_REQUEST_TIMEOUT", "15s")

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_ATTENDANCE_WINDOW", "168h")
	v.SetDefault("DASHBOARD_GRADE_WINDOW", "720h")
	v.SetDefault("DASHBOARD_RECENT_GRADE_EVENTS", 3)
	v.SetDefault("DASHBOARD_RECENT_ABSENCE_EVENTS", 2)
	v.SetDefault("DASHBOARD_ACTIVITY_FEED_LIMIT", 5)
	v.SetDefault("DASHBOARD_CLASS_OVERVIEW_LIMIT", 5)

	v.SetDefault("EXPORTS_ENABLED", true)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 2)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)

	v.SetDefault("DOCUMENTS_STORAGE_DIR", "./documents")

	v.SetDefault("CLASS_CAPACITY_DANGER_PCT", 90)
	v.SetDefault("CLASS_CAPACITY_WARNING_PCT", 75)

	cfg := &Config{
		Env:       v.GetString("ENV"),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Server: ServerConfig{
			RequestTimeout: v.GetDuration("SERVER_REQUEST_TIMEOUT"),
		},
		Dashboard: DashboardConfig{
			CacheTTL:            v.GetDuration("DASHBOARD_CACHE_TTL"),
			AttendanceWindow:    v.GetDuration("DASHBOARD_ATTENDANCE_WINDOW"),
			GradeWindow:         v.GetDuration("DASHBOARD_GRADE_WINDOW"),
			RecentGradeEvents:   v.GetInt("DASHBOARD_RECENT_GRADE_EVENTS"),
			RecentAbsenceEvents: v.GetInt("DASHBOARD_RECENT_ABSENCE_EVENTS"),
			ActivityFeedLimit:   v.GetInt("DASHBOARD_ACTIVITY_FEED_LIMIT"),
			ClassOverviewLimit:  v.GetInt("DASHBOARD_CLASS_OVERVIEW_LIMIT"),
		},
		Exports: ExportsConfig{
			Enabled:           v.GetBool("EXPORTS_ENABLED"),
			StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
			SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
			SignedURLTTL:      v.GetDuration("EXPORTS_SIGNED_URL_TTL"),
			CleanupInterval:   v.GetDuration("EXPORTS_CLEANUP_INTERVAL"),
			WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
			WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
		},
		Documents: DocumentsConfig{
			StorageDir: v.GetString("DOCUMENTS_STORAGE_DIR"),
		},
		Classes: ClassConfig{
			CapacityDangerPct:  v.GetFloat64("CLASS_CAPACITY_DANGER_PCT"),
			CapacityWarningPct: v.GetFloat64("CLASS_CAPACITY_WARNING_PCT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return errors.New("ENV must be development or production")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("PORT must be a valid TCP port")
	}
	if c.Exports.Enabled && c.Env == EnvProduction && c.Exports.SignedURLSecret == "" {
		return errors.New("EXPORTS_SIGNED_URL_SECRET is required in production")
	}
	return nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

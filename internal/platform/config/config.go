package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr                 string
	Environment          string
	LogLevel             string
	DatabaseURL          string
	RedisURL             string
	JWTSecret            string
	TokenTTL             time.Duration
	DataEncryptionKey    string
	MediaDir             string
	MaxBodyBytes         int64
	MaxUploadBytes       int64
	RateLimitPerMinute   int
	SeedAdminEmail       string
	SeedAdminPassword    string
	RunMigrations        bool
	RunSeed              bool
	EmailFrom            string
	EmailEnabled         bool
	EmailQueueSize       int
	SMTPHost             string
	SMTPPort             int
	SMTPUser             string
	SMTPPassword         string
	SMTPUseTLS           bool
	AutoClockOutInterval time.Duration
	Attendance           Attendance
}

// Attendance holds the clock-in policy. Times are HH:MM in Timezone.
type Attendance struct {
	Timezone         string `yaml:"timezone"`
	ZoneLabel        string `yaml:"zone_label"`
	EarliestEmployee string `yaml:"earliest_employee"`
	EarliestDefault  string `yaml:"earliest_default"`
	OnTime           string `yaml:"on_time"`
	Late             string `yaml:"late"`
	HalfDay          string `yaml:"half_day"`
	LeaveCutoff      string `yaml:"leave_cutoff"`
}

type fileConfig struct {
	Attendance Attendance `yaml:"attendance"`
}

func Load() Config {
	return Config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		Environment:          getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		TokenTTL:             getEnvDuration("TOKEN_TTL", 8*time.Hour),
		DataEncryptionKey:    getEnv("DATA_ENCRYPTION_KEY", ""),
		MediaDir:             getEnv("MEDIA_DIR", "storage/media"),
		MaxBodyBytes:         int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		MaxUploadBytes:       int64(getEnvInt("MAX_UPLOAD_BYTES", 4*1048576)),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		SeedAdminEmail:       getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:    getEnv("SEED_ADMIN_PASSWORD", ""),
		RunMigrations:        getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:              getEnvBool("RUN_SEED", true),
		EmailFrom:            getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:         getEnvBool("EMAIL_ENABLED", false),
		EmailQueueSize:       getEnvInt("EMAIL_QUEUE_SIZE", 128),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             getEnvInt("SMTP_PORT", 587),
		SMTPUser:             getEnv("SMTP_USER", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:           getEnvBool("SMTP_USE_TLS", true),
		AutoClockOutInterval: getEnvDuration("AUTO_CLOCK_OUT_INTERVAL", time.Hour),
		Attendance: Attendance{
			Timezone:         getEnv("ATTENDANCE_TIMEZONE", "Asia/Kolkata"),
			ZoneLabel:        getEnv("ATTENDANCE_ZONE_LABEL", "IST"),
			EarliestEmployee: "08:45",
			EarliestDefault:  "08:30",
			OnTime:           "09:00",
			Late:             "09:30",
			HalfDay:          "13:00",
			LeaveCutoff:      "13:00",
		},
	}
}

// LoadFile loads the environment and then overlays the YAML file named by
// CONFIG_FILE, if any. Only non-empty file values replace defaults.
func LoadFile() (Config, error) {
	cfg := Load()
	path := getEnv("CONFIG_FILE", "")
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := cfg.overlay(raw); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) overlay(raw []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	a := &c.Attendance
	setIf(&a.Timezone, fc.Attendance.Timezone)
	setIf(&a.ZoneLabel, fc.Attendance.ZoneLabel)
	setIf(&a.EarliestEmployee, fc.Attendance.EarliestEmployee)
	setIf(&a.EarliestDefault, fc.Attendance.EarliestDefault)
	setIf(&a.OnTime, fc.Attendance.OnTime)
	setIf(&a.Late, fc.Attendance.Late)
	setIf(&a.HalfDay, fc.Attendance.HalfDay)
	setIf(&a.LeaveCutoff, fc.Attendance.LeaveCutoff)
	return nil
}

func setIf(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for aadhar/pan encryption")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("ATTENDANCE_TIMEZONE: %w", err)
	}
	return nil
}

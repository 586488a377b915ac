package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Mail      MailConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	OTP       OTPConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins []string
}

// IsProduction reports whether the server runs with production settings.
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL. An explicit DATABASE_URL wins.
func (c DatabaseConfig) URL() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// SecurityConfig holds secrets used outside token signing
type SecurityConfig struct {
	SessionEncryptionKey string
	AdminSecretKey       string
	AllowUserIDHeader    bool
}

// MailConfig holds outbound mail transports, tried in ProviderOrder.
type MailConfig struct {
	ProviderOrder []string
	SMTP          SMTPConfig
	Resend        ResendConfig
}

// SMTPConfig holds SMTP relay settings
type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromName  string
	FromEmail string
	// TLSMode is one of starttls, tls or none.
	TLSMode string
	Timeout time.Duration
}

// ResendConfig holds Resend HTTP API settings
type ResendConfig struct {
	APIKey  string
	BaseURL string
	From    string
	Timeout time.Duration
}

// AIConfig holds the hosted language model settings
type AIConfig struct {
	APIKey     string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
	// Timeout bounds one reply, retries included.
	Timeout time.Duration
}

// RateLimitConfig holds fixed-window limits
type RateLimitConfig struct {
	APIWindow  time.Duration
	APIMax     int
	ChatWindow time.Duration
	ChatMax    int
}

// OTPConfig holds verification code settings
type OTPConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	// ExposeCode returns the code in the signup response. Never enabled in production.
	ExposeCode bool
}

// Load loads configuration from environment variables
func Load() *Config {
	env := getEnv("NODE_ENV", getEnv("SERVER_ENV", "development"))

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", getEnv("SERVER_PORT", "5000")),
			Env:         env,
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "mechamind"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default-secret-change-this"),
			Expiry: getEnvAsDuration("JWT_EXPIRES_IN", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"),
			AdminSecretKey:       getEnv("ADMIN_SECRET_KEY", ""),
			AllowUserIDHeader:    getEnvAsBool("ALLOW_USER_ID_HEADER", false),
		},
		Mail: MailConfig{
			ProviderOrder: getEnvAsList("MAIL_PROVIDERS", []string{"smtp", "resend"}),
			SMTP: SMTPConfig{
				Host:      getEnv("SMTP_HOST", "smtp.gmail.com"),
				Port:      getEnvAsInt("SMTP_PORT", 587),
				User:      getEnv("SMTP_USER", ""),
				Password:  getEnv("SMTP_PASS", ""),
				FromName:  getEnv("SMTP_FROM_NAME", "MechaMind"),
				FromEmail: getEnv("SMTP_FROM_EMAIL", ""),
				TLSMode:   getEnv("SMTP_TLS_MODE", "starttls"),
				Timeout:   getEnvAsDuration("SMTP_TIMEOUT", 15*time.Second),
			},
			Resend: ResendConfig{
				APIKey:  getEnv("RESEND_API_KEY", ""),
				BaseURL: getEnv("RESEND_BASE_URL", "https://api.resend.com"),
				From:    getEnv("RESEND_FROM", "MechaMind <onboarding@resend.dev>"),
				Timeout: getEnvAsDuration("RESEND_TIMEOUT", 10*time.Second),
			},
		},
		AI: AIConfig{
			APIKey:     getEnv("GOOGLE_GENERATIVE_AI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
			MaxRetries: getEnvAsInt("GEMINI_MAX_RETRIES", 5),
			RetryDelay: getEnvAsDuration("GEMINI_RETRY_DELAY", 500*time.Millisecond),
			Timeout:    getEnvAsDuration("GEMINI_TIMEOUT", 2*time.Minute),
		},
		RateLimit: RateLimitConfig{
			APIWindow:  getEnvAsMillis("RATE_LIMIT_WINDOW_MS", 15*time.Minute),
			APIMax:     getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 100),
			ChatWindow: getEnvAsMillis("CHAT_RATE_LIMIT_WINDOW_MS", time.Minute),
			ChatMax:    getEnvAsInt("CHAT_RATE_LIMIT_MAX_REQUESTS", 10),
		},
		OTP: OTPConfig{
			TTL:             getEnvAsDuration("OTP_TTL", 10*time.Minute),
			CleanupInterval: getEnvAsDuration("OTP_CLEANUP_INTERVAL", 5*time.Minute),
			ExposeCode:      env == "development" && getEnvAsBool("OTP_EXPOSE_CODE", false),
		},
	}
}

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

// getEnvAsDuration accepts Go durations and the "7d" day shorthand.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if strings.HasSuffix(value, "d") {
		if days, err := strconv.Atoi(strings.TrimSuffix(value, "d")); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

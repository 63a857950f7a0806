package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ledger   LedgerConfig
	Sync     SyncConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LedgerConfig carries the engine knobs
type LedgerConfig struct {
	DefaultCurrency  string
	NotifierDebounce time.Duration
	SeedOnStart      bool
	RateLimitPerSec  int
	RateLimitBurst   int
}

// SyncConfig configures device pairing for cross-device sync clients
type SyncConfig struct {
	PairingSecret string
	SigningKey    string
	TokenTTL      time.Duration
	Issuer        string
}

func Load() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			Environment:  getEnv("APP_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "ledger_user"),
			Password:        getEnv("DB_PASSWORD", "ledger_password"),
			Name:            getEnv("DB_NAME", "ledger_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Ledger: LedgerConfig{
			DefaultCurrency:  getEnv("LEDGER_DEFAULT_CURRENCY", "UAH"),
			NotifierDebounce: getDurationEnv("LEDGER_NOTIFIER_DEBOUNCE", 250*time.Millisecond),
			SeedOnStart:      getBoolEnv("LEDGER_SEED_ON_START", false),
			RateLimitPerSec:  getIntEnv("RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:   getIntEnv("RATE_LIMIT_BURST", 20),
		},
		Sync: SyncConfig{
			PairingSecret: os.Getenv("SYNC_PAIRING_SECRET"),
			SigningKey:    os.Getenv("SYNC_SIGNING_KEY"),
			TokenTTL:      getDurationEnv("SYNC_TOKEN_TTL", 30*24*time.Hour),
			Issuer:        getEnv("SYNC_TOKEN_ISSUER", "expensetracker-ledger"),
		},
	}

	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins()

	if err := config.loadSyncSecrets(); err != nil {
		log.Fatal("Failed to load sync secrets:", err)
	}

	return config
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// loadSyncSecrets resolves the device-pairing secret and token signing key.
// Priority order:
// 1. If SYNC_PAIRING_SECRET and SYNC_SIGNING_KEY env vars are set, use them.
// 2. If production and either is missing, fail (production requires explicit secrets).
// 3. If development/testing, generate throwaway values (dev convenience).
func (c *Config) loadSyncSecrets() error {
	if c.Sync.PairingSecret != "" && c.Sync.SigningKey != "" {
		return nil
	}

	if c.IsProduction() {
		return fmt.Errorf("SYNC_PAIRING_SECRET and SYNC_SIGNING_KEY environment variables must be set in production environments")
	}

	if c.Sync.PairingSecret == "" {
		secret, err := generateRandomSecret(16)
		if err != nil {
			return err
		}
		c.Sync.PairingSecret = secret
		log.Printf("Development environment: generated pairing secret %q (set SYNC_PAIRING_SECRET to persist across restarts)", secret)
	}

	if c.Sync.SigningKey == "" {
		key, err := generateRandomSecret(32)
		if err != nil {
			return err
		}
		c.Sync.SigningKey = key
		log.Println("Development environment: generated device token signing key (set SYNC_SIGNING_KEY to persist across restarts)")
	}

	return nil
}

// loadCORSAllowOrigins retrieves CORS allowed origins from environment or returns default
func (c *Config) loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ALLOW_ORIGINS")

	if corsOrigins == "" {
		if c.IsProduction() {
			log.Println("WARNING: CORS_ALLOW_ORIGINS not set in production environment, defaulting to '*' (all origins). Consider setting specific origins for security.")
		}
		return []string{"*"}
	}

	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	return origins
}

func generateRandomSecret(byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the service reads at startup. Policy flags
// and query limits are passed down to the pipeline and query layers at
// construction time instead of being read from the environment at call time.
type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string

	// Ingestion policy
	RequireAuthentication bool
	AllowTrackerCreation  bool

	// Query limits
	DefaultMaxResults int
	AllowedMaxResults int

	// Real-time distribution
	RealtimeEnabled bool

	ServerAddr string
	JWTSecret  string
	JWTTTL     time.Duration
	LogFile    string
}

// Load reads configuration from environment variables and .env (if present).
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "tracker"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBTimezone: getEnv("DB_TIMEZONE", "UTC"),

		RequireAuthentication: getEnvBool("REQUIRE_AUTHENTICATION", true),
		AllowTrackerCreation:  getEnvBool("ALLOW_TRACKER_CREATION", false),

		DefaultMaxResults: getEnvInt("QUERY_DEFAULT_MAX_RESULTS", 100),
		AllowedMaxResults: getEnvInt("QUERY_ALLOWED_MAX_RESULTS", 1000),

		RealtimeEnabled: getEnvBool("REALTIME_ENABLED", true),

		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0:8080"),
		JWTSecret:  getEnv("JWT_SECRET", "supersecret"),
		JWTTTL:     72 * time.Hour,
		LogFile:    getEnv("LOG_FILE", "./logs/app.log"),
	}
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Session tokens
	JWTSecret string
	JWTTTL    time.Duration

	// Redis cache (optional, lookups degrade to uncached when absent)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Email
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	// AWS (document storage, SES)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	DocumentsBucket     string

	// ICD-11 terminology service (OAuth2 client credentials).
	// All four must be set, otherwise search runs in simulated mode.
	ICDClientID     string
	ICDClientSecret string
	ICDTokenURL     string
	ICDSearchURL    string
	ICDTimeout      time.Duration

	// Public directories (simulated datasets when unset)
	DoctorDirectoryURL     string
	MedicationDirectoryURL string
	DirectoryTimeout       time.Duration

	// Realtime outbox delivery
	OutboxInterval  time.Duration
	OutboxBatchSize int

	// CORS
	CORSAllowedOrigins string

	// Public search endpoints rate limit (requests/sec per IP)
	SearchRateLimit float64
	SearchRateBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvAsDuration("JWT_TTL", 24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Somnolink"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Somnolink"),

		AWSRegion:           getEnv("AWS_REGION", "eu-west-3"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		DocumentsBucket:     getEnv("DOCUMENTS_BUCKET", ""),

		ICDClientID:     getEnv("ICD_API_CLIENT_ID", ""),
		ICDClientSecret: getEnv("ICD_API_CLIENT_SECRET", ""),
		ICDTokenURL:     getEnv("ICD_API_TOKEN_URL", ""),
		ICDSearchURL:    getEnv("ICD_API_SEARCH_URL", ""),
		ICDTimeout:      getEnvAsDuration("ICD_API_TIMEOUT", 10*time.Second),

		DoctorDirectoryURL:     getEnv("DOCTOR_DIRECTORY_URL", ""),
		MedicationDirectoryURL: getEnv("MEDICATION_DIRECTORY_URL", ""),
		DirectoryTimeout:       getEnvAsDuration("DIRECTORY_TIMEOUT", 10*time.Second),

		OutboxInterval:  getEnvAsDuration("OUTBOX_INTERVAL", 2*time.Second),
		OutboxBatchSize: getEnvAsInt("OUTBOX_BATCH_SIZE", 25),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),

		SearchRateLimit: getEnvAsFloat("SEARCH_RATE_LIMIT", 5),
		SearchRateBurst: getEnvAsInt("SEARCH_RATE_BURST", 10),
	}
}

// ICDConfigured reports whether all ICD-11 credentials are present.
func (c *Config) ICDConfigured() bool {
	return c.ICDClientID != "" && c.ICDClientSecret != "" && c.ICDTokenURL != "" && c.ICDSearchURL != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

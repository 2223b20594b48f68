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
	DatabasePath  string

	// Property branding used in replies and confirmation emails
	PropertyName       string
	PropertyAddress    string
	LeasingOfficePhone string

	// OpenAI response generation
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIMaxTokens   int
	OpenAITemperature float64

	// Email delivery
	EmailProvider    string // "sendgrid", "ses", or "" for stub
	SendGridAPIKey   string
	EmailFromAddress string
	EmailFromName    string
	EmailRetryMax    int
	EmailRetryDelay  time.Duration

	// AWS (SES sender)
	AWSRegion           string
	AWSEndpointOverride string

	// Redis history cache (optional)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Simulated inventory behavior
	UnavailabilityRate float64

	AdminJWTSecret     string
	CORSAllowedOrigins string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabasePath:  getEnv("DATABASE_PATH", "sessions.db"),

		PropertyName:       getEnv("PROPERTY_NAME", "Luxury Apartments at Main Street"),
		PropertyAddress:    getEnv("PROPERTY_ADDRESS", "123 Main St, Anytown, ST 12345"),
		LeasingOfficePhone: getEnv("LEASING_OFFICE_PHONE", "(555) 123-4567"),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIMaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 300),
		OpenAITemperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),

		EmailProvider:     getEnv("EMAIL_PROVIDER", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress:  getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "Leasing Team"),
		EmailRetryMax:     getEnvAsInt("EMAIL_RETRY_MAX_ATTEMPTS", 3),
		EmailRetryDelay:   getEnvAsDuration("EMAIL_RETRY_BASE_DELAY", 2*time.Second),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		UnavailabilityRate: getEnvAsFloat("UNAVAILABILITY_RATE", 0.15),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
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

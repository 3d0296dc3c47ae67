package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Server
	ApiPort string

	// Admin auth
	JwtSecret         string
	JwtTTL            time.Duration
	AdminUsername     string
	AdminPasswordHash string // bcrypt

	// AWS S3 (tombstone archive)
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ArchivePrefix      string

	// Notifications
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string
	// When set, the worker emails a copy of each notification to
	// <recipientPhone>@<domain> (SMS-over-email gateway).
	SmsGatewayDomain string

	// View analytics
	MostViewedDefaultWindowDays int
	MostViewedLimit             int

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		if value, exists := os.LookupEnv(key); exists && value != "" {
			return value, nil
		}
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}

	getEnvInt := func(key string, defaultValue int) int {
		if value, exists := os.LookupEnv(key); exists {
			if n, err := strconv.Atoi(value); err == nil {
				return n
			}
		}
		return defaultValue
	}

	var err error
	if cfg.MongoURI, err = getRequiredEnv("MONGO_URI"); err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "pondy")

	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)

	cfg.ApiPort = getEnv("API_PORT", "8080")

	cfg.JwtSecret = getEnv("JWT_SECRET", "")
	if cfg.RunMode != "bg" && cfg.JwtSecret == "" {
		return nil, fmt.Errorf("required environment variable JWT_SECRET is not set")
	}
	jwtTTLHours := getEnvInt("JWT_TTL_HOURS", 24)
	cfg.JwtTTL = time.Duration(jwtTTLHours) * time.Hour
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", "admin")
	cfg.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", "")

	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "ap-south-1")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ArchivePrefix = getEnv("ARCHIVE_PREFIX", "tombstones")

	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpPort = getEnvInt("SMTP_PORT", 587)
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@pondy.local")
	cfg.SmsGatewayDomain = getEnv("SMS_GATEWAY_DOMAIN", "")

	cfg.MostViewedDefaultWindowDays = getEnvInt("MOST_VIEWED_WINDOW_DAYS", 30)
	cfg.MostViewedLimit = getEnvInt("MOST_VIEWED_LIMIT", 50)

	cfg.RateLimitBucketSize = getEnvInt("RATE_LIMIT_BUCKET_SIZE", 60)
	cfg.RateLimitRefillRate = getEnvInt("RATE_LIMIT_REFILL_RATE", 20)

	return cfg, nil
}

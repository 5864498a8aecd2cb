package config

import (
	"os"      // For environment variables
	"strconv" // For string to number conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort         string  // Application port
	DBUser          string  // Database user
	DBPassword      string  // Database password
	DBHost          string  // Database host
	DBPort          string  // Database port
	DBName          string  // Database name
	JWTSecret       string  // JWT secret key
	JWTExpireHours  int     // JWT token lifetime in hours
	RedisAddr       string  // Redis server address
	RedisPass       string  // Redis password
	RedisDB         int     // Redis database number
	SMTPHost        string  // SMTP server host
	SMTPPort        string  // SMTP server port
	SMTPUser        string  // SMTP username (empty disables email)
	SMTPPass        string  // SMTP password
	EmailFrom       string  // Sender address for outgoing mail
	EmailFromName   string  // Sender display name
	KYCUploadDir    string  // Directory for uploaded KYC documents
	GoldBasePrice   float64 // Base price per gram for gold quotes
	SilverBasePrice float64 // Base price per gram for silver quotes
	IsProd          bool    // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:         os.Getenv("APP_PORT"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBHost:          os.Getenv("DB_HOST"),
		DBPort:          os.Getenv("DB_PORT"),
		DBName:          os.Getenv("DB_NAME"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTExpireHours:  envInt("JWT_EXPIRE_HOURS", 168), // 7 days by default
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPass:       os.Getenv("REDIS_PASS"),
		RedisDB:         redisDB,
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        envDefault("SMTP_PORT", "587"),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPass:        os.Getenv("SMTP_PASS"),
		EmailFrom:       envDefault("EMAIL_FROM", "noreply@metals.local"),
		EmailFromName:   envDefault("EMAIL_FROM_NAME", "Metals Trading Platform"),
		KYCUploadDir:    envDefault("KYC_UPLOAD_DIR", "./uploads/kyc"),
		GoldBasePrice:   envFloat("GOLD_BASE_PRICE", 6420.50),
		SilverBasePrice: envFloat("SILVER_BASE_PRICE", 85.40),
		IsProd:          os.Getenv("IS_PROD") == "true",
	}
}

// envDefault returns the environment value or a fallback when unset
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt parses an integer environment value with a fallback
func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// envFloat parses a float environment value with a fallback
func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v > 0 {
		return v
	}
	return fallback
}

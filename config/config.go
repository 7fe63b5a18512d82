package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	EmailSender   string
	Password      string // SMTP App Password
	SendGridKey   string // If set, SendGrid is used instead of SMTP
	FrontendURL   string // Base URL embedded in password-setup links
	EmailAttempts int    // Attempts per send before the failure is recorded
	EmailMaxRetry int    // Ceiling passed to the failed-email sweep

	PaymentApiURL string // Optional payment gateway lookup for transaction refs
	PaymentApiKey string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		EmailSender:   getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:      getEnv("PASSWORD", "defaultSecret"),
		SendGridKey:   getEnv("SENDGRID_API_KEY", ""),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3001"),
		EmailAttempts: getEnvInt("EMAIL_SEND_ATTEMPTS", 3),
		EmailMaxRetry: getEnvInt("EMAIL_MAX_RETRIES", 5),

		PaymentApiURL: getEnv("PAYMENT_API_URL", ""),
		PaymentApiKey: getEnv("PAYMENT_API_KEY", ""),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.EmailSender == "defaultSecret" {
		log.Println("Warning: EMAIL_SENDER is not configured. Outgoing mail will fail.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

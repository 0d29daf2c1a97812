// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	JWTSecretKey string
	Environment  string

	// Generation service (OpenAI-compatible endpoint).
	LLMAPIKey    string
	LLMBaseURL   string
	PrimaryModel string
	BackupModel  string

	// Conversation context. Strategy is "windowed" or "stateless".
	HistoryWindow   int
	ContextStrategy string

	// Comma-separated override for the crisis keyword set. Empty means
	// the built-in default set.
	CrisisKeywords string

	// Emergency SMS provider. Optional: when unset the notifier is a
	// logging no-op.
	SMSAccessKey  string
	SMSTemplateID string
	SMSAPIURL     string

	// Optional read cache for chat listings/history.
	RedisAddr     string
	RedisPassword string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		JWTSecretKey:    getEnv("JWT_SECRET_KEY", ""),
		Environment:     env,
		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		LLMBaseURL:      getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		PrimaryModel:    getEnv("PRIMARY_MODEL", "gemini-2.5-flash-lite"),
		BackupModel:     getEnv("BACKUP_MODEL", "gemini-2.0-flash"),
		HistoryWindow:   getEnvAsInt("HISTORY_WINDOW", 3),
		ContextStrategy: getEnv("CONTEXT_STRATEGY", "windowed"),
		CrisisKeywords:  getEnv("CRISIS_KEYWORDS", ""),
		SMSAccessKey:    getEnv("SMS_ACCESS_KEY", ""),
		SMSTemplateID:   getEnv("SMS_TEMPLATE_ID", ""),
		SMSAPIURL:       getEnv("SMS_API_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

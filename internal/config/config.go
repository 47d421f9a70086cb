package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey   string
	StorageBackend string // "local" or "sqlite"
	DataDir        string
	DatabaseURL    string
	HTTPPort       string
	LogLevel       string
	JWTSecret      string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		DataDir:        getEnv("DATA_DIR", filepath.Join(xdg.DataHome, "daily-report")),
		DatabaseURL:    getEnv("DATABASE_URL", "daily_report.db"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
	}

	if AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	if AppConfig.StorageBackend != "local" && AppConfig.StorageBackend != "sqlite" {
		log.Fatalf("STORAGE_BACKEND must be \"local\" or \"sqlite\", got %q", AppConfig.StorageBackend)
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

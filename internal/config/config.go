package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	DBPath     string
	UploadDir  string
	LogFile    string

	AlegraAPIBaseURL string
	AlegraEmail      string
	AlegraToken      string
	AlegraRateLimit  int
	AlegraTimeoutMs  int
	MaxRowsPerUpload int

	SecretKey  string
	AdminEmail string
	AdminToken string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":3000"),
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		UploadDir:  getEnv("UPLOAD_DIR", filepath.Join(cwd, "data", "uploads")),
		LogFile:    getEnv("LOG_FILE", filepath.Join(cwd, "data", "server.log")),

		AlegraAPIBaseURL: getEnv("ALEGRA_API_BASE_URL", "https://api.alegra.com/api/v1"),
		AlegraEmail:      getEnv("ALEGRA_EMAIL", ""),
		AlegraToken:      getEnv("ALEGRA_TOKEN", ""),
		AlegraRateLimit:  getEnvInt("ALEGRA_RATE_LIMIT_RPS", 5),
		AlegraTimeoutMs:  getEnvInt("ALEGRA_TIMEOUT_MS", 30000),
		MaxRowsPerUpload: getEnvInt("MAX_ROWS_PER_UPLOAD", 100),

		SecretKey:  getEnv("SECRET_KEY", ""),
		AdminEmail: getEnv("ADMIN_EMAIL", ""),
		AdminToken: getEnv("ADMIN_TOKEN", ""),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// Redis Configuration
	REDIS_URL string
	// Gemini Configuration
	GEMINI_API_KEYS []string
	GEMINI_BASE_URL string
	// Extraction pipeline tuning
	EXTRACTION_TIME_BUDGET_SECONDS int
	EXTRACTION_MAX_CONCURRENT      int
	SCRATCH_DIR                    string
	// DigitalOcean Spaces Configuration
	DO_SPACES_KEY      string
	DO_SPACES_SECRET   string
	DO_SPACES_BUCKET   string
	DO_SPACES_REGION   string
	DO_SPACES_ENDPOINT string
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	timeBudget, err := strconv.Atoi(os.Getenv("EXTRACTION_TIME_BUDGET_SECONDS"))
	if err != nil || timeBudget <= 0 {
		timeBudget = 45
	}

	maxConcurrent, err := strconv.Atoi(os.Getenv("EXTRACTION_MAX_CONCURRENT"))
	if err != nil || maxConcurrent <= 0 {
		maxConcurrent = 6
	}

	scratchDir := os.Getenv("SCRATCH_DIR")
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		PORT:         port,
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Gemini
		GEMINI_API_KEYS: splitKeys(os.Getenv("GEMINI_API_KEYS")),
		GEMINI_BASE_URL: os.Getenv("GEMINI_BASE_URL"),
		// Extraction
		EXTRACTION_TIME_BUDGET_SECONDS: timeBudget,
		EXTRACTION_MAX_CONCURRENT:      maxConcurrent,
		SCRATCH_DIR:                    scratchDir,
		// DigitalOcean Spaces
		DO_SPACES_KEY:      os.Getenv("DO_SPACES_KEY"),
		DO_SPACES_SECRET:   os.Getenv("DO_SPACES_SECRET"),
		DO_SPACES_BUCKET:   os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:   os.Getenv("DO_SPACES_REGION"),
		DO_SPACES_ENDPOINT: os.Getenv("DO_SPACES_ENDPOINT"),
	}

	return envVariables, nil
}

// splitKeys parses the comma-separated GEMINI_API_KEYS value
func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

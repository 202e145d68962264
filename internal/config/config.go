package config

import (
	"fmt"
	"os"
	"strconv"

	"inboxledger/internal/logger"
)

type Config struct {
	// OpenAI Configuration
	OpenAIAPIKey  string
	OpenAIModel   string
	OracleEnabled bool

	// Google Cloud Configuration
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Gmail Configuration
	GmailConfigDir string
	DaysToSearch   int

	// Google Sheets Configuration
	GoogleSheetURL  string
	LedgerWorksheet string
	VendorWorksheet string
	MasterWorksheet string

	// Google Drive Configuration
	DriveUploadEnabled bool

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OracleEnabled:         getEnv("ENABLE_ORACLE_EXTRACTION", "true") == "true",
		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		GmailConfigDir:        getEnv("GMAIL_CONFIG_DIR", defaultGmailConfigDir()),
		DaysToSearch:          getEnvInt("DAYS_TO_SEARCH", 7),
		GoogleSheetURL:        getEnv("GOOGLE_SHEET_URL", ""),
		LedgerWorksheet:       getEnv("LEDGER_WORKSHEET", "Invoice Data"),
		VendorWorksheet:       getEnv("VENDOR_WORKSHEET", "Vendors"),
		MasterWorksheet:       getEnv("MASTER_WORKSHEET", "Master Bookings"),
		DriveUploadEnabled:    getEnv("ENABLE_DRIVE_UPLOAD", "true") == "true",
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validate only hard-fails on settings every command needs. A missing
// OpenAI key or Drive credentials downgrades functionality at the point
// of use instead of blocking the run.
func (c *Config) validate() error {
	if c.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL is required")
	}
	if c.DaysToSearch <= 0 {
		return fmt.Errorf("DAYS_TO_SEARCH must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func defaultGmailConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".inboxledger"
	}
	return home + "/.config/inboxledger"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

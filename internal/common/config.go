package common

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	RecordStore RecordStoreConfig
	Defaults    DefaultsConfig
	OCR         OCRConfig
	History     HistoryConfig
	Server      ServerConfig
	S3          S3Config
	Inbox       InboxConfig
	Log         LogConfig
}

// RecordStoreConfig holds the FileMaker Data API connection settings
type RecordStoreConfig struct {
	BaseURL  string
	Database string
	Layout   string
	Username string
	Password string
	Timeout  time.Duration
}

// DefaultsConfig holds the environment-configurable job defaults
type DefaultsConfig struct {
	PeopleRequired int
	LocationLoad   string
	ClientCode     string
	MarketID       string
	MaxFileSizeMB  int
	EnableOCR      bool
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftoppm            string
	Tesseract           string
	TesseractLang       string
	DPI                 int
	MaxPages            int
	TessdataDir         string
	EnableTSVConfidence bool
	MinTextWords        int
}

// HistoryConfig holds the extraction history store settings
type HistoryConfig struct {
	DSN string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
	HTTPAddr string
}

// S3Config holds settings for reading documents from s3:// URIs
type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// InboxConfig holds the daemon's watched-directory settings
type InboxConfig struct {
	Dir            string
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
	Debounce       time.Duration
	InitialScan    bool
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables, reading a .env file first when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}
	return &Config{
		RecordStore: RecordStoreConfig{
			BaseURL:  getEnv("FM_BASE_URL", "http://localhost/fmi/data/vLatest"),
			Database: getEnv("FM_DATABASE", "PEP2_1"),
			Layout:   getEnv("FM_LAYOUT", "2.5-JOB_DETAIL"),
			Username: getEnv("FM_USERNAME", ""),
			Password: getEnv("FM_PASSWORD", ""),
			Timeout:  getEnvAsDuration("FM_TIMEOUT", 30*time.Second),
		},
		Defaults: DefaultsConfig{
			PeopleRequired: getEnvAsInt("DEFAULT_PEOPLE_REQUIRED", 2),
			LocationLoad:   getEnv("DEFAULT_LOCATION_LOAD", "PEP"),
			ClientCode:     getEnv("DEFAULT_CLIENT_CODE", "TTR-u"),
			MarketID:       getEnv("DEFAULT_MARKET_ID", "Utah"),
			MaxFileSizeMB:  getEnvAsInt("MAX_FILE_SIZE_MB", 10),
			EnableOCR:      getEnvAsBool("ENABLE_OCR", true),
		},
		OCR: OCRConfig{
			Pdftoppm:            getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:           getEnv("TESSERACT", "tesseract"),
			TesseractLang:       getEnv("TESSERACT_LANG", "eng"),
			DPI:                 getEnvAsInt("OCR_DPI", 300),
			MaxPages:            getEnvAsInt("OCR_MAX_PAGES", 0),
			TessdataDir:         getEnv("TESSDATA_PREFIX", ""),
			EnableTSVConfidence: getEnvAsBool("OCR_TSV_CONFIDENCE", true),
			MinTextWords:        getEnvAsInt("OCR_MIN_TEXT_WORDS", 50),
		},
		History: HistoryConfig{
			DSN: getEnv("HISTORY_DSN", "sqlite://bol-intake.db"),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
			HTTPAddr: getEnv("HTTP_ADDR", ":9090"),
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnvAsBool("S3_USE_PATH_STYLE", false),
		},
		Inbox: InboxConfig{
			Dir:            getEnv("INBOX_DIR", ""),
			Workers:        getEnvAsInt("INBOX_WORKERS", 4),
			QueueSize:      getEnvAsInt("INBOX_QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 3*time.Minute),
			Debounce:       getEnvAsDuration("INBOX_DEBOUNCE", 500*time.Millisecond),
			InitialScan:    getEnvAsBool("INBOX_INITIAL_SCAN", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Defaults.PeopleRequired <= 0 {
		return NewAppError(CodeConfig, "DEFAULT_PEOPLE_REQUIRED must be positive", ErrInvalidInput)
	}
	if c.Defaults.MaxFileSizeMB <= 0 {
		return NewAppError(CodeConfig, "MAX_FILE_SIZE_MB must be positive", ErrInvalidInput)
	}
	if c.Inbox.Workers <= 0 {
		return NewAppError(CodeConfig, "INBOX_WORKERS must be positive", ErrInvalidInput)
	}
	if c.OCR.MinTextWords < 0 {
		return NewAppError(CodeConfig, "OCR_MIN_TEXT_WORDS must not be negative", ErrInvalidInput)
	}
	return nil
}

// ValidateRecordStore checks the settings needed to submit records.
func (c *Config) ValidateRecordStore() error {
	if c.RecordStore.BaseURL == "" {
		return NewAppError(CodeConfig, "FM_BASE_URL is required", ErrInvalidInput)
	}
	if c.RecordStore.Username == "" || c.RecordStore.Password == "" {
		return NewAppError(CodeConfig, "FM_USERNAME and FM_PASSWORD are required", ErrInvalidInput)
	}
	if c.RecordStore.Database == "" || c.RecordStore.Layout == "" {
		return NewAppError(CodeConfig, "FM_DATABASE and FM_LAYOUT are required", ErrInvalidInput)
	}
	return nil
}

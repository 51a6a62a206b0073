package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

const (
	ErrorDetailVerbose = "verbose"
	ErrorDetailGeneric = "generic"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Environment string `validate:"required"`
	Port        string `validate:"required,numeric"`
	LogLevel    string
	ErrorDetail string `validate:"oneof=verbose generic"`
	Inference   InferenceConfig
	Storage     StorageConfig
	Limits      LimitsConfig
}

type InferenceConfig struct {
	Provider string `validate:"oneof=gemini openai"`
	APIKey   string `validate:"required"`
	Model    string `validate:"required"`
}

type StorageConfig struct {
	UploadDir  string `validate:"required"`
	ReportsDir string `validate:"required"`
	PublicDir  string
}

type LimitsConfig struct {
	MaxUploadBytes int64 `validate:"gt=0"`
	MaxJSONBytes   int64 `validate:"gt=0"`
}

func Load() *Config {
	environment := getEnv("ENV", "development")

	defaultDetail := ErrorDetailVerbose
	if environment == "production" {
		defaultDetail = ErrorDetailGeneric
	}

	provider := getEnv("INFERENCE_PROVIDER", ProviderGemini)
	inference := InferenceConfig{Provider: provider}
	switch provider {
	case ProviderOpenAI:
		inference.APIKey = getEnv("OPENAI_API_KEY", "")
		inference.Model = getEnv("OPENAI_MODEL_IMAGE", "gpt-4o-mini")
	default:
		inference.APIKey = getEnv("GEMINI_API_KEY", "")
		inference.Model = getEnv("GEMINI_MODEL", "gemini-1.5-flash")
	}

	return &Config{
		Environment: environment,
		Port:        getEnv("PORT", "5000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ErrorDetail: getEnv("ERROR_DETAIL", defaultDetail),
		Inference:   inference,
		Storage: StorageConfig{
			UploadDir:  getEnv("UPLOAD_DIR", "upload"),
			ReportsDir: getEnv("REPORTS_DIR", "reports"),
			PublicDir:  getEnv("PUBLIC_DIR", "public"),
		},
		Limits: LimitsConfig{
			MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
			MaxJSONBytes:   getEnvInt64("MAX_JSON_BYTES", 10*1024*1024),
		},
	}
}

// Validate checks the loaded values once at startup.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// VerboseErrors reports whether handlers may expose underlying error text.
func (c *Config) VerboseErrors() bool {
	return c.ErrorDetail == ErrorDetailVerbose
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

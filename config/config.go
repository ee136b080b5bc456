package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	BusinessContext   string `mapstructure:"BUSINESS_CONTEXT"`

	// Pipeline thresholds and retry budgets.
	DetectionThreshold      float64 `mapstructure:"DETECTION_THRESHOLD"`
	ExtractionMinConfidence float64 `mapstructure:"EXTRACTION_MIN_CONFIDENCE"`
	ComposerQualityMin      float64 `mapstructure:"COMPOSER_QUALITY_MIN"`
	ComposerMaxRetries      int     `mapstructure:"COMPOSER_MAX_RETRIES"`
	ClosingConfidenceMin    float64 `mapstructure:"CLOSING_CONFIDENCE_MIN"`
	ClosingMaxRetries       int     `mapstructure:"CLOSING_MAX_RETRIES"`
	TurnDeadlineSeconds     int     `mapstructure:"TURN_DEADLINE_SECONDS"`
	RandomSeed              int64   `mapstructure:"RANDOM_SEED"`
	TemplatesFile           string  `mapstructure:"TEMPLATES_FILE"`

	// Capability backends.
	GenerationProvider       string `mapstructure:"GENERATION_PROVIDER"` // "local", "gemini" or "anthropic"
	GeminiAPIKey             string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel              string `mapstructure:"GEMINI_MODEL"`
	AnthropicAPIKey          string `mapstructure:"ANTHROPIC_API_KEY"`
	AnthropicModel           string `mapstructure:"ANTHROPIC_MODEL"`
	ModelServerURL           string `mapstructure:"MODEL_SERVER_URL"` // empty: lexicon detection/extraction
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// Redis configuration (context store + notice queue).
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisContextDB     int    `mapstructure:"REDIS_CONTEXT_DB"`
	RedisQueueDB       int    `mapstructure:"REDIS_QUEUE_DB"`
	ContextStore       string `mapstructure:"CONTEXT_STORE"` // "memory" or "redis"
	ContextTTLMinutes  int    `mapstructure:"CONTEXT_TTL_MINUTES"`
	NoticesEnabled     bool   `mapstructure:"NOTICES_ENABLED"`
	ReminderDelayHours int    `mapstructure:"REMINDER_DELAY_HOURS"`

	// Notifications and reporting.
	SlackToken      string `mapstructure:"SLACK_TOKEN"`
	SlackChannel    string `mapstructure:"SLACK_CHANNEL"`
	SummarySchedule string `mapstructure:"SUMMARY_SCHEDULE"` // 5-field cron expression, empty disables
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("BUSINESS_CONTEXT", "Hair salon appointment")
	viper.SetDefault("DETECTION_THRESHOLD", 0.5)
	viper.SetDefault("EXTRACTION_MIN_CONFIDENCE", 0.5)
	viper.SetDefault("COMPOSER_QUALITY_MIN", 0.7)
	viper.SetDefault("COMPOSER_MAX_RETRIES", 2)
	viper.SetDefault("CLOSING_CONFIDENCE_MIN", 0.8)
	viper.SetDefault("CLOSING_MAX_RETRIES", 2)
	viper.SetDefault("TURN_DEADLINE_SECONDS", 0)
	viper.SetDefault("RANDOM_SEED", 0)
	viper.SetDefault("TEMPLATES_FILE", "")
	viper.SetDefault("GENERATION_PROVIDER", "local")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("ANTHROPIC_API_KEY", "")
	viper.SetDefault("ANTHROPIC_MODEL", "claude-3-5-haiku-latest")
	viper.SetDefault("MODEL_SERVER_URL", "")
	viper.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CONTEXT_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("CONTEXT_STORE", "memory")
	viper.SetDefault("CONTEXT_TTL_MINUTES", 30)
	viper.SetDefault("NOTICES_ENABLED", false)
	viper.SetDefault("REMINDER_DELAY_HOURS", 0)
	viper.SetDefault("SLACK_TOKEN", "")
	viper.SetDefault("SLACK_CHANNEL", "")
	viper.SetDefault("SUMMARY_SCHEDULE", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

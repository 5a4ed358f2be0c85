package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageJSON     = "json"
	StoragePostgres = "postgres"

	// DefaultCompletionSticker is sent when a session finishes
	DefaultCompletionSticker = "CAACAgUAAxkBAAEDi75lVweBe-4jXMIo9EjO3HITt2NeEgACDgADVp29VYKwsmV_t0jzNAQ"
)

// Config holds all application configuration
type Config struct {
	BotToken     string
	AllowedUsers []int64
	Storage      string
	UsersPath    string
	Database     DatabaseConfig
	Server       ServerConfig
	Training     TrainingConfig
	Content      ContentConfig
	Audio        AudioConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// ServerConfig holds webhook and health endpoint settings
type ServerConfig struct {
	BotURL string
	Port   string
}

// TrainingConfig holds session tuning
type TrainingConfig struct {
	DailyWordCount    int
	DailySendTime     string
	RetryLimit        int
	CompletionSticker string
}

// ContentConfig holds external content API settings. Empty URLs select the public endpoints.
type ContentConfig struct {
	TargetLang     string
	TranslateURL   string
	RandomWordsURL string
	WordsAPIURL    string
	WordsAPIKey    string
}

// AudioConfig holds pronunciation cache settings
type AudioConfig struct {
	Dir    string
	TTSURL string
	MaxAge time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	allowed, err := parseUserIDs(os.Getenv("ALLOWED_USERS"))
	if err != nil {
		return nil, fmt.Errorf("ALLOWED_USERS is invalid: %w", err)
	}

	cfg := &Config{
		BotToken:     os.Getenv("BOT_TOKEN"),
		AllowedUsers: allowed,
		Storage:      strings.ToLower(getEnv("STORAGE_DRIVER", StorageJSON)),
		UsersPath:    getEnv("USERS_PATH", "users.json"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "wordtrainer"),
			User:     getEnv("DB_USER", "wordtrainer"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		Server: ServerConfig{
			BotURL: strings.TrimRight(os.Getenv("BOT_URL"), "/"),
			Port:   getEnv("PORT", "3000"),
		},
		Training: TrainingConfig{
			DailyWordCount:    getEnvInt("DAILY_WORD_COUNT", 20),
			DailySendTime:     getEnv("DAILY_SEND_TIME", "09:00"),
			RetryLimit:        getEnvInt("RETRY_LIMIT", 3),
			CompletionSticker: getEnv("COMPLETION_STICKER", DefaultCompletionSticker),
		},
		Content: ContentConfig{
			TargetLang:     getEnv("TARGET_LANG", "he"),
			TranslateURL:   os.Getenv("TRANSLATE_URL"),
			RandomWordsURL: os.Getenv("RANDOM_WORDS_URL"),
			WordsAPIURL:    os.Getenv("WORDS_API_URL"),
			WordsAPIKey:    os.Getenv("WORDS_API_KEY"),
		},
		Audio: AudioConfig{
			Dir:    getEnv("AUDIO_DIR", "/tmp/audio"),
			TTSURL: os.Getenv("TTS_URL"),
			MaxAge: time.Duration(getEnvInt("AUDIO_MAX_AGE_MINUTES", 10)) * time.Minute,
		},
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if len(cfg.AllowedUsers) == 0 {
		return nil, fmt.Errorf("ALLOWED_USERS is required")
	}
	switch cfg.Storage {
	case StorageJSON:
	case StoragePostgres:
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage)
	}
	if _, err := time.Parse("15:04", cfg.Training.DailySendTime); err != nil {
		return nil, fmt.Errorf("DAILY_SEND_TIME must be HH:MM: %w", err)
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// UseWebhook reports whether updates arrive through a webhook
func (c *Config) UseWebhook() bool {
	return c.Server.BotURL != ""
}

// WebhookPath is the route Telegram posts updates to
func (c *Config) WebhookPath() string {
	return "/bot" + c.BotToken
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func parseUserIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

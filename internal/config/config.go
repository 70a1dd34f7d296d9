package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port   string
	AppEnv string

	DB          DBConfig
	RedisAddr   string
	KafkaBroker string
	JWTSecret   string

	Mail       MailConfig
	LLM        LLMConfig
	Webhook    WebhookConfig
	Credential CredentialConfig
	Reminder   ReminderConfig
	RateLimit  RateLimitConfig

	// SurfaceWebhookErrors adds a notification summary to approve/reject
	// responses. Off by default: webhook failures stay silent.
	SurfaceWebhookErrors bool
}

type DBConfig struct {
	Driver      string // postgres or sqlite
	Host        string
	User        string
	Password    string
	Name        string
	Port        string
	SSLMode     string
	SQLitePath  string
	AutoMigrate bool
}

type MailConfig struct {
	Driver       string // smtp or resend
	Host         string
	Port         int
	Username     string
	Password     string
	FromName     string
	ResendAPIKey string
	HRContact    string
	Timeout      time.Duration
}

type LLMConfig struct {
	Provider    string // openai or ollama
	OpenAIKey   string
	OpenAIURL   string
	OpenAIModel string
	OllamaURL   string
	OllamaModel string
	Timeout     time.Duration
}

type WebhookConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type CredentialConfig struct {
	Store    string // file or redis
	FilePath string
}

type ReminderConfig struct {
	CronSpec string
	LeadDays int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads the environment. Callers load .env first with godotenv.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		AppEnv:      strings.ToLower(getEnv("APP_ENV", "development")),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		DB: DBConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       os.Getenv("DB_HOST"),
			User:       os.Getenv("DB_USER"),
			Password:   os.Getenv("DB_PASSWORD"),
			Name:       os.Getenv("DB_NAME"),
			Port:       getEnv("DB_PORT", "5432"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "leaveease.db"),
		},
		Mail: MailConfig{
			Driver:       strings.ToLower(getEnv("MAIL_DRIVER", "smtp")),
			Host:         getEnv("MAIL_HOST", "smtp.gmail.com"),
			Username:     os.Getenv("MAIL_USERNAME"),
			Password:     os.Getenv("MAIL_PASSWORD"),
			FromName:     getEnv("MAIL_FROM_NAME", "LeaveEase"),
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			HRContact:    getEnv("HR_CONTACT", "hr@company.com or ext. 1234"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
			OpenAIURL:   getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
			OpenAIModel: getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			OllamaURL:   getEnv("OLLAMA_URL", "http://localhost:11434/api/generate"),
			OllamaModel: getEnv("OLLAMA_MODEL", "llama2"),
		},
		Webhook: WebhookConfig{
			URL:    getEnv("N8N_WEBHOOK_URL", "http://localhost:5678/webhook/leave-notification"),
			APIKey: os.Getenv("N8N_API_KEY"),
		},
		Credential: CredentialConfig{
			Store:    strings.ToLower(getEnv("CREDENTIAL_STORE", "file")),
			FilePath: getEnv("CREDENTIAL_FILE", "email-configs.properties"),
		},
		Reminder: ReminderConfig{
			CronSpec: getEnv("REMINDER_CRON", "0 8 * * *"),
		},
	}

	var err error
	if cfg.DB.AutoMigrate, err = getBool("DB_AUTO_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.SurfaceWebhookErrors, err = getBool("NOTIFY_SURFACE_WEBHOOK_ERRORS", false); err != nil {
		return nil, err
	}
	if cfg.Mail.Port, err = getInt("MAIL_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.Mail.Timeout, err = getDuration("MAIL_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.LLM.Timeout, err = getDuration("LLM_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.Webhook.Timeout, err = getDuration("N8N_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Reminder.LeadDays, err = getInt("REMINDER_LEAD_DAYS", 1); err != nil {
		return nil, err
	}
	if cfg.RateLimit.RPS, err = getFloat("RATE_LIMIT_RPS", 1); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = getInt("RATE_LIMIT_BURST", 5); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	switch c.Mail.Driver {
	case "smtp", "resend":
	default:
		return fmt.Errorf("unsupported MAIL_DRIVER %q", c.Mail.Driver)
	}
	switch c.LLM.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}
	switch c.Credential.Store {
	case "file", "redis":
	default:
		return fmt.Errorf("unsupported CREDENTIAL_STORE %q", c.Credential.Store)
	}
	if c.Credential.Store == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("CREDENTIAL_STORE=redis requires REDIS_ADDR")
	}
	if c.Reminder.LeadDays < 1 {
		return fmt.Errorf("REMINDER_LEAD_DAYS must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

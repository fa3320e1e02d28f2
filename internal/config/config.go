package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string    `mapstructure:"env"` // current application environment (local, dev, production etc)
	TelegramAPIToken string    `mapstructure:"-"`   // Telegram API token loaded from environment
	DB               DB        `mapstructure:"database"`
	Gemini           Gemini    `mapstructure:"gemini"`
	TTS              TTS       `mapstructure:"tts"`
	Lesson           Lesson    `mapstructure:"lesson"`
	Reminders        Reminders `mapstructure:"reminders"`
	HTTP             HTTP      `mapstructure:"http"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Gemini configures the generative model used for lesson content.
type Gemini struct {
	APIKey  string        `mapstructure:"-"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TTS configures Cloud Text-to-Speech.
type TTS struct {
	Enabled      bool   `mapstructure:"enabled"`
	LanguageCode string `mapstructure:"language_code"`
	Voice        string `mapstructure:"voice"`
}

// Lesson holds lesson reward and history parameters.
type Lesson struct {
	XPAward      int `mapstructure:"xp_award"`
	HistoryLimit int `mapstructure:"history_limit"`
}

// Reminders configures the daily nudge job.
type Reminders struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"` // cron spec, UTC
}

// HTTP configures the metrics and health listener.
type HTTP struct {
	Addr string `mapstructure:"addr"`
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// RequireBot checks the values only the bot process needs.
func (c *Config) RequireBot() error {
	var missing []string
	if c.TelegramAPIToken == "" {
		missing = append(missing, "TELEGRAM_API_TOKEN")
	}
	if c.Gemini.APIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingEnvironmentVariables, strings.Join(missing, ", "))
	}
	return nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Sensitive values only come from the environment.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.Gemini.APIKey = v.GetString("gemini_api_key")

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	if cfg.Lesson.HistoryLimit <= 0 {
		cfg.Lesson.HistoryLimit = 50
	}
	if cfg.Lesson.XPAward < 0 {
		cfg.Lesson.XPAward = 0
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", "90s")
	v.SetDefault("tts.enabled", true)
	v.SetDefault("tts.language_code", "en-US")
	v.SetDefault("tts.voice", "en-US-Standard-F")
	v.SetDefault("lesson.xp_award", 150)
	v.SetDefault("lesson.history_limit", 50)
	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.schedule", "0 18 * * *")
	v.SetDefault("http.addr", ":9090")
}

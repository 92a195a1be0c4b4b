package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Calendar sharing specifics
	Telegram TelegramConfig
	Google   GoogleConfig
	SQLite   SQLiteConfig
	Gateway  GatewayConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string

	// Requests per minute allowed per source IP on the OAuth callback.
	CallbackRateLimitPerMin int
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type TelegramConfig struct {
	BotToken   string
	WebhookURL string
}

// GoogleConfig carries the OAuth2 client and grant lifecycle settings.
// AuthURL, TokenURL and CalendarEndpoint default to Google's production
// endpoints and exist so tests and staging can point elsewhere.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL          string
	TokenURL         string
	CalendarEndpoint string

	PendingGrantTTL  time.Duration
	TokenRefreshSkew time.Duration
	ExchangeTimeout  time.Duration
}

type SQLiteConfig struct {
	Path string
}

type GatewayConfig struct {
	RetryAttempts int
	RetryDelay    time.Duration
}

// Load loads configuration using Viper.
// Config file name: config.yaml — searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.HTTPServer.CallbackRateLimitPerMin = viper.GetInt("http_server.callback_rate_limit_per_min")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// Telegram
	cfg.Telegram.BotToken = viper.GetString("telegram.bot_token")
	cfg.Telegram.WebhookURL = viper.GetString("telegram.webhook_url")
	if tgToken := viper.GetString("telegram_bot_token"); tgToken != "" {
		cfg.Telegram.BotToken = tgToken
	}

	// Google OAuth2 client
	cfg.Google.ClientID = viper.GetString("google.client_id")
	cfg.Google.ClientSecret = viper.GetString("google.client_secret")
	cfg.Google.RedirectURL = viper.GetString("google.redirect_url")
	cfg.Google.AuthURL = viper.GetString("google.auth_url")
	cfg.Google.TokenURL = viper.GetString("google.token_url")
	cfg.Google.CalendarEndpoint = viper.GetString("google.calendar_endpoint")
	cfg.Google.PendingGrantTTL = viper.GetDuration("google.pending_grant_ttl")
	cfg.Google.TokenRefreshSkew = viper.GetDuration("google.token_refresh_skew")
	cfg.Google.ExchangeTimeout = viper.GetDuration("google.exchange_timeout")
	if clientID := viper.GetString("google_client_id"); clientID != "" {
		cfg.Google.ClientID = clientID
	}
	if clientSecret := viper.GetString("google_client_secret"); clientSecret != "" {
		cfg.Google.ClientSecret = clientSecret
	}

	// Storage
	cfg.SQLite.Path = viper.GetString("sqlite.path")

	// ACL gateway
	cfg.Gateway.RetryAttempts = viper.GetInt("gateway.retry_attempts")
	cfg.Gateway.RetryDelay = viper.GetDuration("gateway.retry_delay")

	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram.bot_token is required")
	}
	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
		return nil, fmt.Errorf("google.client_id and google.client_secret are required")
	}
	if cfg.Google.RedirectURL == "" {
		return nil, fmt.Errorf("google.redirect_url is required")
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("http_server.callback_rate_limit_per_min", 60)
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)

	viper.SetDefault("google.pending_grant_ttl", "10m")
	viper.SetDefault("google.token_refresh_skew", "60s")
	viper.SetDefault("google.exchange_timeout", "10s")

	viper.SetDefault("sqlite.path", "./data/calendar-share-bot.db")

	viper.SetDefault("gateway.retry_attempts", 3)
	viper.SetDefault("gateway.retry_delay", "500ms")
}

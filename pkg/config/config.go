package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string `validate:"required,oneof=dev test staging prod"`
	HTTPAddr       string `validate:"required"`
	MigrationsPath string

	LogLevel  string `validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `validate:"required,oneof=json console"`

	// PublicBaseURL is where BigCommerce reaches this app, e.g. https://app.example.com.
	// Webhooks are registered on install only when it is set.
	PublicBaseURL string `validate:"omitempty,url"`

	// AllowedOrigins may call the storefront cart routes from a browser.
	AllowedOrigins []string

	// DATABASE_URL is the runtime connection, DIRECT_URL bypasses poolers for migrations.
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	BigCommerce BigCommerceConfig
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type BigCommerceConfig struct {
	// Host is the API host, e.g. api.bigcommerce.com. A scheme may be included
	// (http://127.0.0.1:8090) to point the client at a local fake store.
	Host        string `validate:"required"`
	StoreHash   string
	AccessToken string

	// App credentials, used for OAuth install, signed payloads and customer login tokens.
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// WebhookSecret is sent as a custom header on every webhook delivery.
	WebhookSecret string

	ChannelID     int64 `validate:"gte=0"`
	StorefrontURL string

	// RateLimit is requests per second; zero disables client-side throttling.
	RateLimit float64       `validate:"gte=0"`
	Timeout   time.Duration `validate:"gte=0"`
}

// HasStoreCredentials reports whether a store can be called directly without the registry.
func (c BigCommerceConfig) HasStoreCredentials() bool {
	return strings.TrimSpace(c.StoreHash) != "" && strings.TrimSpace(c.AccessToken) != ""
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var keys = []string{
	"APP_ENV", "HTTP_ADDR", "PORT", "MIGRATIONS_PATH", "LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS", "PUBLIC_BASE_URL",
	"DATABASE_URL", "DIRECT_URL",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_SSLMODE",
	"BIGCOMMERCE_HOST", "BIGCOMMERCE_STORE_HASH", "BIGCOMMERCE_ACCESS_TOKEN",
	"BIGCOMMERCE_CLIENT_ID", "BIGCOMMERCE_CLIENT_SECRET", "BIGCOMMERCE_REDIRECT_URL", "BIGCOMMERCE_WEBHOOK_SECRET",
	"BIGCOMMERCE_CHANNEL_ID", "BIGCOMMERCE_STOREFRONT_URL",
	"BIGCOMMERCE_RATE_LIMIT", "BIGCOMMERCE_TIMEOUT",
}

// Load reads configuration from the environment (and .env when present),
// applies defaults and validates the result.
func Load() (Config, error) {
	// Convenience for local dev. In production, rely on real environment variables.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "bigcommerce")
	v.SetDefault("DB_USER", "bigcommerce")
	v.SetDefault("DB_PASSWORD", "bigcommerce")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("BIGCOMMERCE_HOST", "api.bigcommerce.com")
	v.SetDefault("BIGCOMMERCE_CHANNEL_ID", 1)
	v.SetDefault("BIGCOMMERCE_RATE_LIMIT", 0)
	v.SetDefault("BIGCOMMERCE_TIMEOUT", "0s")
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := v.GetString("HTTP_ADDR")
	if httpAddr == "" {
		if port := v.GetString("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	timeout, err := time.ParseDuration(v.GetString("BIGCOMMERCE_TIMEOUT"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid BIGCOMMERCE_TIMEOUT: %w", err)
	}

	c := Config{
		AppEnv:         v.GetString("APP_ENV"),
		HTTPAddr:       httpAddr,
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		LogLevel:       strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:      strings.ToLower(v.GetString("LOG_FORMAT")),
		PublicBaseURL:  strings.TrimRight(strings.TrimSpace(v.GetString("PUBLIC_BASE_URL")), "/"),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		DirectURL:      v.GetString("DIRECT_URL"),
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		BigCommerce: BigCommerceConfig{
			Host:          v.GetString("BIGCOMMERCE_HOST"),
			StoreHash:     strings.TrimSpace(v.GetString("BIGCOMMERCE_STORE_HASH")),
			AccessToken:   strings.TrimSpace(v.GetString("BIGCOMMERCE_ACCESS_TOKEN")),
			ClientID:      v.GetString("BIGCOMMERCE_CLIENT_ID"),
			ClientSecret:  v.GetString("BIGCOMMERCE_CLIENT_SECRET"),
			RedirectURL:   v.GetString("BIGCOMMERCE_REDIRECT_URL"),
			WebhookSecret: v.GetString("BIGCOMMERCE_WEBHOOK_SECRET"),
			ChannelID:     v.GetInt64("BIGCOMMERCE_CHANNEL_ID"),
			StorefrontURL: v.GetString("BIGCOMMERCE_STOREFRONT_URL"),
			RateLimit:     v.GetFloat64("BIGCOMMERCE_RATE_LIMIT"),
			Timeout:       timeout,
		},
	}

	if err := validate.Struct(&c); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

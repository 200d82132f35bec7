package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("BIGCOMMERCE_STORE_HASH", " abc123 ")
	t.Setenv("BIGCOMMERCE_ACCESS_TOKEN", "token")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", c.HTTPAddr)
	require.Equal(t, "api.bigcommerce.com", c.BigCommerce.Host)
	require.Equal(t, "abc123", c.BigCommerce.StoreHash)
	require.Equal(t, int64(1), c.BigCommerce.ChannelID)
	require.Zero(t, c.BigCommerce.Timeout)
	require.True(t, c.BigCommerce.HasStoreCredentials())
}

func TestLoad_ParsesTimeoutAndRateLimit(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("BIGCOMMERCE_TIMEOUT", "15s")
	t.Setenv("BIGCOMMERCE_RATE_LIMIT", "2.5")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, c.BigCommerce.Timeout)
	require.InDelta(t, 2.5, c.BigCommerce.RateLimit, 0.0001)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsBadTimeout(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("BIGCOMMERCE_TIMEOUT", "soon")

	_, err := Load()
	require.ErrorContains(t, err, "BIGCOMMERCE_TIMEOUT")
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://shop.example.com, ,http://localhost:3000")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"https://shop.example.com", "http://localhost:3000"}, c.AllowedOrigins)
}

func TestLoad_PublicBaseURL(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PUBLIC_BASE_URL", "https://app.example.com/")
	t.Setenv("BIGCOMMERCE_WEBHOOK_SECRET", "s3cret")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com", c.PublicBaseURL)
	require.Equal(t, "s3cret", c.BigCommerce.WebhookSecret)

	t.Setenv("PUBLIC_BASE_URL", "not a url")
	_, err = Load()
	require.Error(t, err)
}

package smoke

import (
	"errors"
	"time"

	"bigcommerce-sdk/pkg/bigcommerce"
	"bigcommerce-sdk/pkg/config"
)

// LoginURL builds a storefront login link for customerID on the configured
// channel. redirectTo may be empty.
func LoginURL(cfg config.BigCommerceConfig, customerID int64, redirectTo string, now time.Time) (string, error) {
	if cfg.StorefrontURL == "" {
		return "", errors.New("BIGCOMMERCE_STOREFRONT_URL is not set")
	}
	token, err := bigcommerce.CustomerLoginToken(cfg.ClientID, cfg.ClientSecret, cfg.StoreHash, customerID, redirectTo, cfg.ChannelID, now)
	if err != nil {
		return "", err
	}
	return bigcommerce.CustomerLoginURL(cfg.StorefrontURL, token), nil
}

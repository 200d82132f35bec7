package bigcommerce

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type CustomerLoginClaims struct {
	jwt.RegisteredClaims

	Operation  string `json:"operation"`
	StoreHash  string `json:"store_hash"`
	CustomerID int64  `json:"customer_id"`
	ChannelID  int64  `json:"channel_id,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// CustomerLoginToken signs a single-use storefront login token for a customer.
// The token is valid for a short window after now; BigCommerce rejects reuse of jti.
func CustomerLoginToken(clientID, clientSecret, storeHash string, customerID int64, redirectTo string, channelID int64, now time.Time) (string, error) {
	if clientID == "" || clientSecret == "" {
		return "", errors.New("missing client id or secret")
	}
	if storeHash == "" {
		return "", errors.New("missing store hash")
	}
	if customerID <= 0 {
		return "", errors.New("customer id must be positive")
	}

	claims := CustomerLoginClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   clientID,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
		Operation:  "customer_login",
		StoreHash:  storeHash,
		CustomerID: customerID,
		ChannelID:  channelID,
		RedirectTo: redirectTo,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(clientSecret))
}

func CustomerLoginURL(storefrontURL, token string) string {
	return strings.TrimSuffix(storefrontURL, "/") + "/login/token/" + token
}

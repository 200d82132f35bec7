package bigcommerce

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignedPayloadClaims are the claims of the signed_payload_jwt sent to the
// load, uninstall and remove-user callbacks.
type SignedPayloadClaims struct {
	jwt.RegisteredClaims

	User      PayloadUser `json:"user"`
	Owner     PayloadUser `json:"owner"`
	URL       string      `json:"url,omitempty"`
	ChannelID *int64      `json:"channel_id,omitempty"`
}

type PayloadUser struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Locale string `json:"locale,omitempty"`
}

type VerifiedPayload struct {
	StoreHash string
	User      PayloadUser
	Owner     PayloadUser
	URL       string
	ExpiresAt time.Time
}

// VerifySignedPayload verifies a signed_payload_jwt (HS256, signed with the app
// client secret) and returns the store it was issued for.
func VerifySignedPayload(tokenString, clientID, clientSecret string, now time.Time) (*VerifiedPayload, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("missing client secret")
	}
	if clientID == "" {
		return nil, fmt.Errorf("missing client id")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	claims := &SignedPayloadClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(clientSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if !slices.Contains([]string(claims.Audience), clientID) {
		return nil, fmt.Errorf("audience mismatch")
	}

	if !strings.HasPrefix(claims.Subject, "stores/") {
		return nil, fmt.Errorf("unexpected subject %q", claims.Subject)
	}
	hash := storeHashFromContext(claims.Subject)
	if hash == "" {
		return nil, fmt.Errorf("missing store in token")
	}

	return &VerifiedPayload{
		StoreHash: hash,
		User:      claims.User,
		Owner:     claims.Owner,
		URL:       claims.URL,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

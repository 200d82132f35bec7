package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"bigcommerce-sdk/pkg/bigcommerce"
)

var ErrInvalidSignature = errors.New("invalid signed payload signature")

type legacyPayload struct {
	User      bigcommerce.PayloadUser `json:"user"`
	Owner     bigcommerce.PayloadUser `json:"owner"`
	Context   string                  `json:"context"`
	StoreHash string                  `json:"store_hash"`
}

// VerifyLegacyPayload checks the pre-JWT signed_payload parameter:
// base64(json) "." base64(hex(hmac_sha256(json, client secret))).
func VerifyLegacyPayload(signed, clientSecret string) (*bigcommerce.VerifiedPayload, error) {
	if signed == "" || clientSecret == "" {
		return nil, ErrInvalidSignature
	}
	encData, encSig, ok := strings.Cut(signed, ".")
	if !ok {
		return nil, ErrInvalidSignature
	}
	data, err := base64.StdEncoding.DecodeString(encData)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	given, err := base64.StdEncoding.DecodeString(encSig)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(clientSecret))
	_, _ = mac.Write(data)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), given) {
		return nil, ErrInvalidSignature
	}

	var p legacyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	hash := p.StoreHash
	if hash == "" {
		hash = strings.TrimPrefix(p.Context, "stores/")
	}
	if hash == "" {
		return nil, errors.New("missing store in payload")
	}
	return &bigcommerce.VerifiedPayload{StoreHash: hash, User: p.User, Owner: p.Owner}, nil
}

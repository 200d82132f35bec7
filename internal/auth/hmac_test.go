package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacySign(data, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(data))
	sig := hex.EncodeToString(mac.Sum(nil))
	return base64.StdEncoding.EncodeToString([]byte(data)) + "." + base64.StdEncoding.EncodeToString([]byte(sig))
}

func TestVerifyLegacyPayload(t *testing.T) {
	data := `{"user":{"id":7,"email":"owner@example.com"},"owner":{"id":7,"email":"owner@example.com"},"context":"stores/abc123","store_hash":"abc123","timestamp":1700000000.1}`

	p, err := VerifyLegacyPayload(legacySign(data, "secret"), "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc123", p.StoreHash)
	assert.Equal(t, int64(7), p.User.ID)

	t.Run("context only", func(t *testing.T) {
		p, err := VerifyLegacyPayload(legacySign(`{"context":"stores/xyz"}`, "secret"), "secret")
		require.NoError(t, err)
		assert.Equal(t, "xyz", p.StoreHash)
	})

	t.Run("rejected", func(t *testing.T) {
		for name, signed := range map[string]string{
			"wrong secret":  legacySign(data, "other"),
			"no separator":  base64.StdEncoding.EncodeToString([]byte(data)),
			"bad base64":    "!!!." + "???",
			"empty":         "",
			"no store hash": legacySign(`{"user":{"id":1}}`, "secret"),
		} {
			_, err := VerifyLegacyPayload(signed, "secret")
			assert.Error(t, err, name)
		}
		_, err := VerifyLegacyPayload(legacySign(data, ""), "")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

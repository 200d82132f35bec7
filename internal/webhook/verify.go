package webhook

import (
	"crypto/subtle"
	"net/http"
)

// HeaderSecret is registered as a custom header on every hook the app creates.
const HeaderSecret = "X-Webhook-Secret"

// VerifyHeaders reports whether the delivery carries the shared secret.
func VerifyHeaders(h http.Header, secret string) bool {
	given := h.Get(HeaderSecret)
	if given == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(secret)) == 1
}

package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bigcommerce-sdk/pkg/bigcommerce"
	"bigcommerce-sdk/pkg/config"
)

// simcallback signs a signed_payload_jwt the way BigCommerce does and calls
// the local load or uninstall callback with it.
func main() {
	var (
		base   = flag.String("base-url", "", "api base url (defaults to http://localhost<HTTP_ADDR>)")
		action = flag.String("action", "load", "callback to call: load or uninstall")
		hash   = flag.String("store", "", "store hash (defaults to BIGCOMMERCE_STORE_HASH)")
		email  = flag.String("email", "owner@example.com", "user email in the payload")
		ttl    = flag.Duration("ttl", 5*time.Minute, "token lifetime")
	)
	flag.Parse()

	cfg := config.MustLoad()
	if *hash == "" {
		*hash = cfg.BigCommerce.StoreHash
	}
	if *hash == "" || cfg.BigCommerce.ClientSecret == "" {
		fmt.Fprintln(os.Stderr, "missing -store or BIGCOMMERCE_CLIENT_SECRET")
		os.Exit(2)
	}
	if *action != "load" && *action != "uninstall" {
		fmt.Fprintf(os.Stderr, "unknown -action %q\n", *action)
		os.Exit(2)
	}
	if *base == "" {
		*base = localURL(cfg.HTTPAddr)
	}

	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, bigcommerce.SignedPayloadClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "bc",
			Subject:   "stores/" + *hash,
			Audience:  []string{cfg.BigCommerce.ClientID},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
		User:  bigcommerce.PayloadUser{ID: 1, Email: *email},
		Owner: bigcommerce.PayloadUser{ID: 1, Email: *email},
		URL:   "/",
	}).SignedString([]byte(cfg.BigCommerce.ClientSecret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign payload: %v\n", err)
		os.Exit(1)
	}

	u := strings.TrimRight(*base, "/") + "/v1/auth/" + *action + "?signed_payload_jwt=" + url.QueryEscape(token)
	resp, err := (&http.Client{Timeout: 10 * time.Second}).Get(u)
	if err != nil {
		fmt.Fprintf(os.Stderr, "call %s: %v\n", *action, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d\n%s\n", resp.StatusCode, string(body))
}

// localURL turns a bind address (":8081", "0.0.0.0:8081") into a dialable url.
func localURL(httpAddr string) string {
	addr := strings.TrimSpace(httpAddr)
	if addr == "" {
		addr = ":8081"
	}
	addr = strings.TrimPrefix(addr, "0.0.0.0")
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

package bigcommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultTokenURL = "https://login.bigcommerce.com/oauth2/token"

type OAuthExchanger struct {
	HTTPClient   *http.Client
	TokenURL     string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type OAuthUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Installation is the outcome of a successful app install.
type Installation struct {
	AccessToken string    `json:"access_token"`
	Scope       string    `json:"scope"`
	Context     string    `json:"context"`
	AccountUUID string    `json:"account_uuid"`
	User        OAuthUser `json:"user"`
}

// StoreHash extracts {hash} from the "stores/{hash}" context.
func (i Installation) StoreHash() string {
	return storeHashFromContext(i.Context)
}

func storeHashFromContext(ctx string) string {
	return strings.TrimPrefix(strings.TrimSpace(ctx), "stores/")
}

// ExchangeCode trades the auth callback's code for a permanent store token.
func (o OAuthExchanger) ExchangeCode(ctx context.Context, code, scope, storeContext string) (Installation, error) {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	tokenURL := o.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	body, _ := json.Marshal(map[string]string{
		"client_id":     o.ClientID,
		"client_secret": o.ClientSecret,
		"code":          code,
		"scope":         scope,
		"context":       storeContext,
		"grant_type":    "authorization_code",
		"redirect_uri":  o.RedirectURL,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(body))
	if err != nil {
		return Installation{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return Installation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Installation{}, fmt.Errorf("bigcommerce token exchange failed: status=%d body=%s", resp.StatusCode, string(b))
	}

	var inst Installation
	if err := json.NewDecoder(resp.Body).Decode(&inst); err != nil {
		return Installation{}, err
	}
	if inst.AccessToken == "" {
		return Installation{}, fmt.Errorf("bigcommerce token exchange returned empty access_token")
	}
	if inst.StoreHash() == "" {
		return Installation{}, fmt.Errorf("bigcommerce token exchange returned no store context")
	}
	return inst, nil
}

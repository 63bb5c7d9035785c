package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lumen-cli/lumen/constant"
	"github.com/lumen-cli/lumen/network"
)

// Login exchanges credentials for a session token. The identity endpoint
// speaks OAuth2 password flow, so the body is form-encoded rather than JSON.
func Login(ctx context.Context, baseURL, username, password string) (string, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/auth/login"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := network.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", fmt.Errorf("login: invalid credentials")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &statusError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("login: decode response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("login: server returned an empty token")
	}
	return token.AccessToken, nil
}

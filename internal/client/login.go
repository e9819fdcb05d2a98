package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrLoginFailed is returned when the server rejects the credentials.
var ErrLoginFailed = errors.New("login failed")

// Login posts the credentials to baseURL/login and returns the session
// cookies formatted for a Cookie header.
func Login(ctx context.Context, hc *http.Client, baseURL, username, password string) (string, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	form := url.Values{
		"username": {username},
		"password": {password},
		"version":  {"bot"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("post login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: %s: %s", ErrLoginFailed, resp.Status, strings.TrimSpace(string(body)))
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return "", fmt.Errorf("%w: no session cookie in response", ErrLoginFailed)
	}
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; "), nil
}

// Package netutil holds small network plumbing helpers.
package netutil

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

const checkURL = "https://checkip.amazonaws.com"

// PublicIP returns the caller's public IPv4 address. Best effort: any
// failure yields ok=false so callers can degrade instead of aborting.
func PublicIP(ctx context.Context) (string, bool) {
	return fetchIP(ctx, checkURL)
}

func fetchIP(ctx context.Context, url string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", false
	}

	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return "", false
	}
	return ip, true
}

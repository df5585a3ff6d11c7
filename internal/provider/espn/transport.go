package espn

import (
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"
	defaultHTTPTimeout = 15 * time.Second
	providerName       = "espn"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func resolveHTTPClient(client *http.Client, timeout time.Duration) httpDoer {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

func normalizeBaseURL(raw string) string {
	if raw == "" {
		raw = defaultBaseURL
	}
	return strings.TrimSuffix(raw, "/")
}

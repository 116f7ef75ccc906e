package publicurl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type tunnelList struct {
	Tunnels []struct {
		Proto     string `json:"proto"`
		PublicURL string `json:"public_url"`
	} `json:"tunnels"`
}

// Resolver decides the base URL put in front of artifact links.
// Priority: configured URL, then the detected tunnel, then the request host.
type Resolver struct {
	configured string
	ngrokAPI   string
	httpClient *http.Client
	logger     *zap.Logger

	mu       sync.RWMutex
	detected string
}

// NewResolver creates a resolver. Either argument may be empty.
func NewResolver(configured, ngrokAPI string, httpClient *http.Client, logger *zap.Logger) *Resolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Resolver{
		configured: strings.TrimRight(configured, "/"),
		ngrokAPI:   ngrokAPI,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Detect asks the local ngrok agent for its https tunnel. Failure only means
// links fall back to the request host.
func (r *Resolver) Detect(ctx context.Context) string {
	if r.configured != "" || r.ngrokAPI == "" {
		return ""
	}

	url, err := r.queryTunnels(ctx)
	if err != nil || url == "" {
		r.logger.Info("ngrok URL not detected, falling back to request host", zap.Error(err))
		return ""
	}

	r.mu.Lock()
	r.detected = strings.TrimRight(url, "/")
	r.mu.Unlock()
	r.logger.Info("Detected ngrok URL", zap.String("url", url))
	return url
}

func (r *Resolver) queryTunnels(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.ngrokAPI, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ngrok api returned status %d", resp.StatusCode)
	}

	var list tunnelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("failed to decode tunnel list: %w", err)
	}
	for _, tunnel := range list.Tunnels {
		if tunnel.Proto == "https" {
			return tunnel.PublicURL, nil
		}
	}
	return "", nil
}

// BaseURL returns the base URL for links handed to the client of req
func (r *Resolver) BaseURL(req *http.Request) string {
	if r.configured != "" {
		return r.configured
	}

	r.mu.RLock()
	detected := r.detected
	r.mu.RUnlock()
	if detected != "" {
		return detected
	}

	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + req.Host
}

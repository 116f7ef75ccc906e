package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

type remoteRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
}

type remoteResponse struct {
	Logits []float64 `json:"logits"`
}

// RemoteClassifier asks an inference server for the intent logits
type RemoteClassifier struct {
	url        string
	maxTokens  int
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

var _ repositories.IntentClassifier = (*RemoteClassifier)(nil)

// NewRemoteClassifier creates a client for the inference endpoint at url
func NewRemoteClassifier(url string, maxTokens int, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) *RemoteClassifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteClassifier{
		url:        url,
		maxTokens:  maxTokens,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Classify posts the truncated text and maps the argmax logit to an intent
func (c *RemoteClassifier) Classify(ctx context.Context, text string) (entities.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(remoteRequest{
		Text:      Truncate(text, c.maxTokens),
		MaxLength: c.maxTokens,
	})
	if err != nil {
		return entities.IntentUnknown, fmt.Errorf("marshal classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return entities.IntentUnknown, fmt.Errorf("build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entities.IntentUnknown, apperrors.NewTransportError("classifier request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("Classifier returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(msg)))
		return entities.IntentUnknown, apperrors.NewModelError(fmt.Sprintf("classifier returned status %d", resp.StatusCode), nil)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return entities.IntentUnknown, apperrors.NewModelError("malformed classifier response", err)
	}
	if len(out.Logits) != len(labelMap) {
		return entities.IntentUnknown, apperrors.NewModelError(fmt.Sprintf("classifier returned %d logits, want %d", len(out.Logits), len(labelMap)), nil)
	}

	return labelMap[argmax(out.Logits)], nil
}

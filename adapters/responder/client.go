package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain"
	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

// Path is the responder endpoint served by internal/api
const Path = "/send_to_openai"

// RemoteResponder calls a responder service over HTTP
type RemoteResponder struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

var _ repositories.Responder = (*RemoteResponder)(nil)

// NewRemoteResponder targets baseURL + /send_to_openai
func NewRemoteResponder(baseURL string, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) *RemoteResponder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RemoteResponder{
		endpoint:   strings.TrimRight(baseURL, "/") + Path,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Answer posts the utterance and intent and maps the reply onto ModelReply
func (r *RemoteResponder) Answer(ctx context.Context, text string, intent entities.Intent) (entities.ModelReply, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := json.Marshal(domain.ResponderRequest{Text: text, Intent: intent.String()})
	if err != nil {
		return entities.ModelReply{}, fmt.Errorf("marshal responder request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return entities.ModelReply{}, fmt.Errorf("build responder request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return entities.ModelReply{}, apperrors.NewTransportError("responder request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return entities.ModelReply{}, apperrors.NewTransportError("read responder reply", err)
	}

	if resp.StatusCode != http.StatusOK {
		var failure domain.ResponderError
		_ = json.Unmarshal(data, &failure)
		r.logger.Warn("Responder returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("error", failure.Error))
		if failure.Error == "" {
			failure.Error = fmt.Sprintf("responder returned status %d", resp.StatusCode)
		}
		return entities.ModelReply{}, apperrors.NewModelError(failure.Error, nil)
	}

	var reply domain.ResponderResponse
	if err := json.Unmarshal(data, &reply); err != nil {
		return entities.ModelReply{}, apperrors.NewModelError("malformed responder reply", err)
	}
	if strings.TrimSpace(reply.Response) == "" {
		return entities.ModelReply{}, apperrors.NewModelError("responder reply is empty", nil)
	}

	return entities.ModelReply{Text: reply.Response, ImageProcessed: reply.ImageProcessed}, nil
}

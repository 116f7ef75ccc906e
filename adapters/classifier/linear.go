package classifier

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

//go:embed weights.json
var defaultWeights []byte

// Weights is the serialized form of the linear intent model.
// Every vector is indexed by label: 0 object detection, 1 chatting.
type Weights struct {
	Bias     []float64            `json:"bias"`
	Features map[string][]float64 `json:"features"`
}

// Validate checks that every vector has one entry per label
func (w *Weights) Validate() error {
	if len(w.Bias) != len(labelMap) {
		return fmt.Errorf("bias has %d entries, want %d", len(w.Bias), len(labelMap))
	}
	for feature, vector := range w.Features {
		if len(vector) != len(labelMap) {
			return fmt.Errorf("feature %q has %d entries, want %d", feature, len(vector), len(labelMap))
		}
	}
	return nil
}

// LinearClassifier scores unigram and bigram features against fixed weights.
// It is read-only after construction and safe for concurrent use.
type LinearClassifier struct {
	weights   Weights
	maxTokens int
	logger    *zap.Logger
}

var _ repositories.IntentClassifier = (*LinearClassifier)(nil)

// LoadLinearClassifier reads weights from path, or the built-in weights when path is empty
func LoadLinearClassifier(path string, maxTokens int, logger *zap.Logger) (*LinearClassifier, error) {
	data := defaultWeights
	source := "embedded"
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read classifier weights: %w", err)
		}
		source = path
	}

	var weights Weights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("decode classifier weights: %w", err)
	}

	classifier, err := NewLinearClassifier(weights, maxTokens, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded intent classifier",
		zap.String("source", source),
		zap.Int("features", len(weights.Features)),
		zap.Int("maxTokens", classifier.maxTokens))
	return classifier, nil
}

// NewLinearClassifier builds a classifier from in-memory weights
func NewLinearClassifier(weights Weights, maxTokens int, logger *zap.Logger) (*LinearClassifier, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classifier weights: %w", err)
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &LinearClassifier{weights: weights, maxTokens: maxTokens, logger: logger}, nil
}

// Classify returns the highest scoring intent for text
func (c *LinearClassifier) Classify(ctx context.Context, text string) (entities.Intent, error) {
	if err := ctx.Err(); err != nil {
		return entities.IntentUnknown, apperrors.NewTransportError("classification cancelled", err)
	}

	scores := c.Scores(text)
	intent := labelMap[argmax(scores)]

	c.logger.Debug("Classified utterance",
		zap.String("intent", intent.String()),
		zap.Float64s("scores", scores))

	return intent, nil
}

// Scores returns the raw per-label scores for text
func (c *LinearClassifier) Scores(text string) []float64 {
	scores := append([]float64(nil), c.weights.Bias...)

	tokens := Tokenize(text, c.maxTokens)
	add := func(feature string) {
		if vector, ok := c.weights.Features[feature]; ok {
			for i, w := range vector {
				scores[i] += w
			}
		}
	}

	for i, token := range tokens {
		add(token)
		if i > 0 {
			add(tokens[i-1] + " " + token)
		}
	}
	return scores
}

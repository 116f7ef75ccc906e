package repositories

import (
	"context"

	"github.com/SalinCodes/VoxVision/domain/entities"
)

// IntentClassifier maps an utterance to one of the trained intents.
// Implementations never return IntentUnknown on success.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (entities.Intent, error)
}

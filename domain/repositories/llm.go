package repositories

import (
	"context"

	"github.com/SalinCodes/VoxVision/domain/entities"
)

// VisionModel abstracts any chat/vision LLM provider
type VisionModel interface {
	// Generate sends a single-turn prompt and returns the model's reply text
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Prompt is one user turn, optionally grounded on an image
type Prompt struct {
	Text  string
	Image *ImagePart
}

// ImagePart is an image attached inline to a prompt
type ImagePart struct {
	Data     []byte
	MIMEType string
}

// Responder produces the assistant reply for a cleaned utterance.
// Implementations capture a camera frame themselves when the intent needs one.
type Responder interface {
	Answer(ctx context.Context, text string, intent entities.Intent) (entities.ModelReply, error)
}

package llm

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/repositories"
)

// MockVision is a placeholder implementation for the vision model.
// It records the prompts it was given.
type MockVision struct {
	logger *zap.Logger

	mu      sync.Mutex
	prompts []repositories.Prompt
}

// NewMockVision creates a new mock vision model
func NewMockVision(logger *zap.Logger) *MockVision {
	return &MockVision{logger: logger}
}

// Generate implements repositories.VisionModel
func (m *MockVision) Generate(ctx context.Context, prompt repositories.Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	m.logger.Info("Mock vision generate", zap.Bool("withImage", prompt.Image != nil))

	if prompt.Image != nil {
		return fmt.Sprintf("I can see an image of %d bytes in front of you.", len(prompt.Image.Data)), nil
	}
	return "Why did the scarecrow win an award? Because he was outstanding in his field.", nil
}

// Prompts returns a copy of every prompt received so far
func (m *MockVision) Prompts() []repositories.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repositories.Prompt(nil), m.prompts...)
}

package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
)

type fakeSTT struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
	audio [][]byte
}

func (f *fakeSTT) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.audio = append(f.audio, audioData)
	return f.text, f.err
}

type fakeClassifier struct {
	intent entities.Intent
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (entities.Intent, error) {
	f.calls++
	return f.intent, f.err
}

type fakeResponder struct {
	reply entities.ModelReply
	err   error
	calls int
}

func (f *fakeResponder) Answer(ctx context.Context, text string, intent entities.Intent) (entities.ModelReply, error) {
	f.calls++
	return f.reply, f.err
}

type fakeTTS struct {
	mu    sync.Mutex
	data  []byte
	err   error
	texts []string
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func (f *fakeTTS) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

type fakeStrategy struct {
	name  string
	img   *entities.CapturedImage
	err   error
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Capture(ctx context.Context) (*entities.CapturedImage, error) {
	f.calls++
	return f.img, f.err
}

type fakeModel struct {
	reply   string
	err     error
	prompts []repositories.Prompt
}

func (f *fakeModel) Generate(ctx context.Context, prompt repositories.Prompt) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

type fakeArchive struct {
	requestIDs []string
	err        error
}

func (f *fakeArchive) Archive(ctx context.Context, requestID string, image *entities.CapturedImage) error {
	f.requestIDs = append(f.requestIDs, requestID)
	return f.err
}

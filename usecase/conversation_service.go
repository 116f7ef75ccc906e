package usecase

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain"
	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

// Replies that keep the conversation going when a stage could not produce an answer
const (
	NoSpeechApology  = "Sorry, I didn't catch that. Could you please say it again?"
	ResponderApology = "Sorry, I'm having trouble coming up with an answer right now. Could you please ask me again?"
)

// User-facing texts of error events
const (
	ErrTextNoAudio       = "No audio data received"
	ErrTextTranscription = "Sorry, I couldn't understand the audio. Please try again."
	ErrTextSynthesis     = "Sorry, I couldn't generate the spoken response. Please try again."
)

// ConversationConfig holds the per-stage budgets of the pipeline
type ConversationConfig struct {
	Language             string
	ControlPhrases       []string
	TranscriptionTimeout time.Duration
	ClassifierTimeout    time.Duration
	ResponderTimeout     time.Duration
	SpeechTimeout        time.Duration
	PipelineTimeout      time.Duration
}

// ConversationService orchestrates the conversation flow
type ConversationService struct {
	speechToText repositories.SpeechToText
	classifier   repositories.IntentClassifier
	responder    repositories.Responder
	speech       *SpeechService
	cleaner      *TranscriptCleaner
	config       ConversationConfig
	logger       *zap.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(
	stt repositories.SpeechToText,
	classifier repositories.IntentClassifier,
	responder repositories.Responder,
	speech *SpeechService,
	config ConversationConfig,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		speechToText: stt,
		classifier:   classifier,
		responder:    responder,
		speech:       speech,
		cleaner:      NewTranscriptCleaner(config.ControlPhrases),
		config:       config,
		logger:       logger,
	}
}

// ProcessAudio runs one utterance through the pipeline and returns exactly one terminal event
func (s *ConversationService) ProcessAudio(ctx context.Context, msg *domain.ProcessAudioMessage, baseURL string) domain.TerminalEvent {
	_, event := s.Process(ctx, msg, baseURL)
	return event
}

// Process is ProcessAudio that also returns the request with its stage ledger
func (s *ConversationService) Process(ctx context.Context, msg *domain.ProcessAudioMessage, baseURL string) (*entities.Request, domain.TerminalEvent) {
	req := entities.NewRequest()
	logger := s.logger.With(zap.String("requestID", req.ID))

	ctx, cancelPipeline := withBudget(ctx, s.config.PipelineTimeout)
	defer cancelPipeline()
	ctx = WithRequest(ctx, req)

	fail := func(stage entities.Stage, err error, userText string) domain.TerminalEvent {
		req.EndStage(stage, entities.StageStateFailed, err)
		req.Fail()
		logger.Error("Request failed",
			zap.String("stage", string(stage)),
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err),
			zap.Any("stages", req.Stages))
		return domain.TerminalEvent{Error: &domain.ErrorMessage{
			Type:      domain.EventError,
			RequestID: req.ID,
			Error:     userText,
		}}
	}

	// Step 0: decode
	req.BeginStage(entities.StageDecode)
	audio, err := decodeAudio(msg)
	if err != nil {
		return req, fail(entities.StageDecode, err, ErrTextNoAudio)
	}
	req.Audio = audio
	req.EndStage(entities.StageDecode, entities.StageStateCompleted, nil)

	// Step 1: speech to text
	req.BeginStage(entities.StageTranscribe)
	stageCtx, cancel := withBudget(ctx, s.config.TranscriptionTimeout)
	transcript, err := s.speechToText.TranscribeAudio(stageCtx, audio, repositories.AudioConfig{
		Encoding: msg.Encoding,
		Language: s.config.Language,
	})
	cancel()
	if err != nil {
		return req, fail(entities.StageTranscribe, apperrors.FromCall("transcription failed", err, apperrors.KindModel), ErrTextTranscription)
	}
	req.Transcript = transcript
	req.Text = s.cleaner.Clean(transcript)
	req.EndStage(entities.StageTranscribe, entities.StageStateCompleted, nil)

	logger.Info("Transcription completed",
		zap.String("transcript", transcript),
		zap.String("text", req.Text))

	if req.Text == "" {
		// Nothing left to answer once control phrases are gone
		req.Response = NoSpeechApology
	} else {
		// Step 2: intent
		req.Intent = s.classify(ctx, req, logger)

		// Step 3: reply, with a frame when the intent needs one
		req.BeginStage(entities.StageRespond)
		stageCtx, cancel = withBudget(ctx, s.config.ResponderTimeout)
		reply, err := s.responder.Answer(stageCtx, req.Text, req.Intent)
		cancel()
		if err != nil {
			logger.Error("Responder failed, answering with apology",
				zap.String("kind", string(apperrors.KindOf(err))),
				zap.Error(err))
			req.EndStage(entities.StageRespond, entities.StageStateDegraded, err)
			reply = entities.ModelReply{Text: ResponderApology}
		} else {
			req.EndStage(entities.StageRespond, entities.StageStateCompleted, nil)
		}
		req.Response = reply.Text
		req.ImageProcessed = reply.ImageProcessed
	}

	// Step 4: text to speech
	req.BeginStage(entities.StageSynthesize)
	stageCtx, cancel = withBudget(ctx, s.config.SpeechTimeout)
	artifact, err := s.speech.Synthesize(stageCtx, req.Response, baseURL)
	cancel()
	if err != nil {
		return req, fail(entities.StageSynthesize, err, ErrTextSynthesis)
	}
	req.Speech = artifact
	req.EndStage(entities.StageSynthesize, entities.StageStateCompleted, nil)
	req.Succeed()

	logger.Info("Request completed",
		zap.String("intent", req.Intent.String()),
		zap.Bool("imageProcessed", req.ImageProcessed),
		zap.String("audioURL", artifact.URL),
		zap.Duration("elapsed", time.Since(req.CreatedAt)))

	return req, domain.TerminalEvent{AudioProcessed: &domain.AudioProcessedMessage{
		Type:           domain.EventAudioProcessed,
		RequestID:      req.ID,
		Text:           req.Response,
		AudioURL:       artifact.URL,
		Intent:         req.Intent.String(),
		ImageProcessed: req.ImageProcessed,
	}}
}

// classify never fails the request: errors degrade to Chatting
func (s *ConversationService) classify(ctx context.Context, req *entities.Request, logger *zap.Logger) entities.Intent {
	req.BeginStage(entities.StageClassify)
	ctx, cancel := withBudget(ctx, s.config.ClassifierTimeout)
	defer cancel()

	intent, err := s.classifier.Classify(ctx, req.Text)
	if err != nil {
		logger.Warn("Intent classification failed, defaulting to chatting", zap.Error(err))
		req.EndStage(entities.StageClassify, entities.StageStateDegraded, err)
		return entities.IntentChatting
	}

	req.EndStage(entities.StageClassify, entities.StageStateCompleted, nil)
	logger.Info("Intent classified", zap.String("intent", intent.String()))
	return intent
}

func decodeAudio(msg *domain.ProcessAudioMessage) ([]byte, error) {
	if msg == nil || strings.TrimSpace(msg.AudioData) == "" {
		return nil, apperrors.NewValidationError("audio payload is empty", nil)
	}
	audio, err := base64.StdEncoding.DecodeString(msg.AudioData)
	if err != nil {
		return nil, apperrors.NewValidationError("audio payload is not valid base64", err)
	}
	if len(audio) == 0 {
		return nil, apperrors.NewValidationError("audio payload is empty", nil)
	}
	return audio, nil
}

// withBudget bounds ctx by d; a zero budget leaves ctx unbounded
func withBudget(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

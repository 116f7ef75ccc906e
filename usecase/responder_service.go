package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

// Fixed replies used when the conversation can continue without an answer
const (
	CameraApology = "I tried to look at what you're asking about, but I'm having trouble with the camera. " +
		"Could you please try again or ask me something else?"
	ImageApology = "I tried to analyze what's in front of you, but I'm having trouble processing the image. " +
		"Could you please try again?"
	CurrencyRefusal = "I'm sorry, I can only help with nepali currency."
)

// ObjectDetectionPrompt grounds the model on the attached frame
func ObjectDetectionPrompt(text string) string {
	return fmt.Sprintf("The user asked: '%s'. Analyze the image I'm sending and describe what you see in detail. "+
		"Focus on identifying objects, people, text, or anything else visible in the image. "+
		"Respond directly to the user's question about what they're looking at.", text)
}

// ChatPrompt asks for a detailed, persona-consistent text answer
func ChatPrompt(text string) string {
	return fmt.Sprintf("%s, answer in detail. Don't give any direct signs that you are an AI model, "+
		"and don't mention OpenAI. Just act like a human and answer the question. "+
		"If the question is about currency, only answer the question about nepali currency. "+
		"If the question is about other currency, you can say \"%s\"", text, CurrencyRefusal)
}

// ResponderService produces replies in-process: it captures a frame when
// the intent needs one and then asks the vision model.
type ResponderService struct {
	model   repositories.VisionModel
	capture *CaptureService
	logger  *zap.Logger
}

var _ repositories.Responder = (*ResponderService)(nil)

// NewResponderService creates a new responder service
func NewResponderService(model repositories.VisionModel, capture *CaptureService, logger *zap.Logger) *ResponderService {
	return &ResponderService{
		model:   model,
		capture: capture,
		logger:  logger,
	}
}

// Answer captures a frame for object detection and responds. A capture
// failure is answered with CameraApology without calling the model.
func (s *ResponderService) Answer(ctx context.Context, text string, intent entities.Intent) (entities.ModelReply, error) {
	if intent != entities.IntentObjectDetection {
		return s.Respond(ctx, text, intent, nil)
	}

	req := RequestFrom(ctx)
	requestID := uuid.NewString()
	if req != nil {
		requestID = req.ID
		req.BeginStage(entities.StageCapture)
	}

	img, err := s.capture.Capture(ctx)
	if err != nil {
		s.logger.Warn("Camera unavailable, answering with apology",
			zap.String("requestID", requestID),
			zap.Error(err))
		if req != nil {
			req.EndStage(entities.StageCapture, entities.StageStateDegraded, err)
		}
		return entities.ModelReply{Text: CameraApology}, nil
	}
	defer s.capture.Release(ctx, requestID, img)

	if req != nil {
		req.Image = img
		req.EndStage(entities.StageCapture, entities.StageStateCompleted, nil)
	}

	return s.Respond(ctx, text, intent, img)
}

// Respond builds the prompt for the intent and calls the model.
// ImageProcessed is set only when img was attached to the call.
func (s *ResponderService) Respond(ctx context.Context, text string, intent entities.Intent, img *entities.CapturedImage) (entities.ModelReply, error) {
	var prompt repositories.Prompt

	switch intent {
	case entities.IntentObjectDetection:
		if !img.Usable() {
			s.logger.Warn("No usable image for object detection")
			return entities.ModelReply{Text: ImageApology}, nil
		}
		prompt = repositories.Prompt{
			Text:  ObjectDetectionPrompt(text),
			Image: &repositories.ImagePart{Data: img.Data, MIMEType: img.MIMEType},
		}
	case entities.IntentChatting, entities.IntentUnknown:
		prompt = repositories.Prompt{Text: ChatPrompt(text)}
	default:
		return entities.ModelReply{}, apperrors.NewInternalError(fmt.Sprintf("unhandled intent %d", intent), nil)
	}

	reply, err := s.model.Generate(ctx, prompt)
	if err != nil {
		return entities.ModelReply{}, apperrors.FromCall("model call failed", err, apperrors.KindModel)
	}

	s.logger.Info("Model reply generated",
		zap.String("intent", intent.String()),
		zap.Bool("imageProcessed", prompt.Image != nil),
		zap.Int("replyLength", len(reply)))

	return entities.ModelReply{Text: reply, ImageProcessed: prompt.Image != nil}, nil
}

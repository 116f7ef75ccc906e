package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Intent is the classified purpose of an utterance
type Intent int

const (
	IntentUnknown Intent = iota
	IntentChatting
	IntentObjectDetection
)

// Wire names used by clients and the responder endpoint
const (
	IntentNameChatting        = "Chatting"
	IntentNameObjectDetection = "Object Detection"
	IntentNameUnknown         = "Unknown"
)

func (i Intent) String() string {
	switch i {
	case IntentChatting:
		return IntentNameChatting
	case IntentObjectDetection:
		return IntentNameObjectDetection
	default:
		return IntentNameUnknown
	}
}

// ParseIntent maps a wire name to an Intent. Matching ignores case and
// separators so "object_detection" and "ObjectDetection" are accepted too.
func ParseIntent(name string) (Intent, bool) {
	normalized := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(name)))
	switch normalized {
	case "chatting":
		return IntentChatting, true
	case "objectdetection":
		return IntentObjectDetection, true
	case "unknown", "unknowntask":
		return IntentUnknown, true
	default:
		return IntentUnknown, false
	}
}

func (i Intent) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

func (i *Intent) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseIntent(name)
	if !ok {
		return fmt.Errorf("unknown intent %q", name)
	}
	*i = parsed
	return nil
}

// Provenance tells where a captured image came from
type Provenance string

const (
	ProvenanceNone     Provenance = "none"
	ProvenanceFresh    Provenance = "freshly-captured"
	ProvenanceFallback Provenance = "fallback-cached"
)

// CapturedImage is a verified camera frame owned by a single request
type CapturedImage struct {
	Path       string     `json:"path"`
	Data       []byte     `json:"-"`
	MIMEType   string     `json:"mime_type"`
	Provenance Provenance `json:"provenance"`
	CapturedAt time.Time  `json:"captured_at"`
}

// Usable reports whether the image can be attached to a model call
func (c *CapturedImage) Usable() bool {
	return c != nil && c.Provenance != ProvenanceNone && len(c.Data) > 0
}

// ModelReply is the responder output.
// ImageProcessed is true only if a usable image was attached to the model call.
type ModelReply struct {
	Text           string `json:"response"`
	ImageProcessed bool   `json:"image_processed"`
}

// SpeechArtifact is a synthesized audio file exposed under a public URL
type SpeechArtifact struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// RequestStatus represents the terminal state of a request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusSucceeded RequestStatus = "succeeded"
	RequestStatusFailed    RequestStatus = "failed"
)

// Stage names a pipeline step
type Stage string

const (
	StageDecode     Stage = "decode"
	StageTranscribe Stage = "transcribe"
	StageClassify   Stage = "classify"
	StageCapture    Stage = "capture"
	StageRespond    Stage = "respond"
	StageSynthesize Stage = "synthesize"
)

// StageState represents the state of an individual stage
type StageState string

const (
	StageStateRunning   StageState = "running"
	StageStateCompleted StageState = "completed"
	StageStateDegraded  StageState = "degraded"
	StageStateFailed    StageState = "failed"
)

// StageRecord is the execution record of one stage
type StageRecord struct {
	Stage       Stage      `json:"stage"`
	State       StageState `json:"state"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Duration returns how long the stage ran, zero while it is still running
func (r StageRecord) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Request is one utterance travelling through the pipeline. Stages only add
// to it; it is never reused for another utterance.
type Request struct {
	ID             string          `json:"id"`
	Audio          []byte          `json:"-"`
	Transcript     string          `json:"transcript"`
	Text           string          `json:"text"`
	Intent         Intent          `json:"intent"`
	Image          *CapturedImage  `json:"image,omitempty"`
	Response       string          `json:"response"`
	ImageProcessed bool            `json:"image_processed"`
	Speech         *SpeechArtifact `json:"speech,omitempty"`
	Status         RequestStatus   `json:"status"`
	Stages         []StageRecord   `json:"stages"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewRequest creates a pending request with a fresh id
func NewRequest() *Request {
	return &Request{
		ID:        uuid.NewString(),
		Intent:    IntentUnknown,
		Status:    RequestStatusPending,
		Stages:    make([]StageRecord, 0, 6),
		CreatedAt: time.Now(),
	}
}

// BeginStage appends a running record for the stage
func (r *Request) BeginStage(stage Stage) {
	r.Stages = append(r.Stages, StageRecord{
		Stage:     stage,
		State:     StageStateRunning,
		StartedAt: time.Now(),
	})
}

// EndStage closes the most recent record of the stage
func (r *Request) EndStage(stage Stage, state StageState, err error) {
	for i := len(r.Stages) - 1; i >= 0; i-- {
		if r.Stages[i].Stage != stage || r.Stages[i].CompletedAt != nil {
			continue
		}
		now := time.Now()
		r.Stages[i].State = state
		r.Stages[i].CompletedAt = &now
		if err != nil {
			r.Stages[i].Error = err.Error()
		}
		return
	}
}

// Record returns the most recent record for the stage
func (r *Request) Record(stage Stage) (StageRecord, bool) {
	for i := len(r.Stages) - 1; i >= 0; i-- {
		if r.Stages[i].Stage == stage {
			return r.Stages[i], true
		}
	}
	return StageRecord{}, false
}

// Ran reports whether the stage was started at all
func (r *Request) Ran(stage Stage) bool {
	_, ok := r.Record(stage)
	return ok
}

// Succeed marks the request as delivered
func (r *Request) Succeed() {
	r.Status = RequestStatusSucceeded
}

// Fail marks the request as abandoned
func (r *Request) Fail() {
	r.Status = RequestStatusFailed
}

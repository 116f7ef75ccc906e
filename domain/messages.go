package domain

// Realtime event types exchanged with the client
const (
	EventProcessAudio   = "process_audio"
	EventAudioProcessed = "audio_processed"
	EventError          = "error"
	EventPing           = "ping"
	EventPong           = "pong"
)

// ProcessAudioMessage represents a recorded utterance sent by the client
type ProcessAudioMessage struct {
	Type      string `json:"type"`
	AudioData string `json:"audio_data"` // base64 encoded
	Encoding  string `json:"encoding,omitempty"`
}

// AudioProcessedMessage is the success terminal event of a request
type AudioProcessedMessage struct {
	Type           string `json:"type"`
	RequestID      string `json:"request_id,omitempty"`
	Text           string `json:"text"`
	AudioURL       string `json:"audio_url"`
	Intent         string `json:"intent"`
	ImageProcessed bool   `json:"image_processed"`
}

// ErrorMessage is the failure terminal event of a request
type ErrorMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

// TerminalEvent is exactly one of AudioProcessed or Error
type TerminalEvent struct {
	AudioProcessed *AudioProcessedMessage
	Error          *ErrorMessage
}

// Succeeded reports whether the event is a success event
func (e TerminalEvent) Succeeded() bool {
	return e.AudioProcessed != nil
}

// Payload returns the message to put on the wire
func (e TerminalEvent) Payload() interface{} {
	if e.AudioProcessed != nil {
		return e.AudioProcessed
	}
	return e.Error
}

// ResponderRequest is the body of POST /send_to_openai
type ResponderRequest struct {
	Text   string `json:"text"`
	Intent string `json:"intent"`
}

// ResponderResponse is the success body of POST /send_to_openai
type ResponderResponse struct {
	Response       string `json:"response"`
	ImageProcessed bool   `json:"image_processed"`
}

// ResponderError is the failure body of POST /send_to_openai
type ResponderError struct {
	Error          string `json:"error"`
	ImageProcessed bool   `json:"image_processed"`
}

// StatusResponse is the liveness probe body
type StatusResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
	Message   string  `json:"message,omitempty"`
}

package usecase

import "testing"

func TestTranscriptCleaner(t *testing.T) {
	cleaner := NewTranscriptCleaner([]string{"stop recording", " ", "end."})

	tests := []struct {
		input string
		want  string
	}{
		{"What is this? Stop recording", "What is this?"},
		{"  STOP RECORDING tell me a joke  ", "tell me a joke"},
		{"stop recording", ""},
		{"Is it the end? end.", "Is it the end?"},
		{"hello", "hello"},
		{"what is\tthis  thing Stop Recording", "what is\tthis  thing"},
	}

	for _, tt := range tests {
		if got := cleaner.Clean(tt.input); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"transport", NewTransportError("camera unreachable", nil), KindTransport},
		{"validation", NewValidationError("empty audio", nil), KindValidation},
		{"model", NewModelError("no choices", nil), KindModel},
		{"artifact", NewArtifactError("file missing", nil), KindArtifact},
		{"wrapped", fmt.Errorf("stage: %w", NewModelError("bad", nil)), KindModel},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFromCall(t *testing.T) {
	err := FromCall("transcription failed", context.DeadlineExceeded, KindModel)
	if !IsKind(err, KindTransport) {
		t.Errorf("deadline should classify as transport, got %s", err.Kind)
	}

	err = FromCall("transcription failed", errors.New("400 bad request"), KindModel)
	if !IsKind(err, KindModel) {
		t.Errorf("expected fallback kind model, got %s", err.Kind)
	}

	original := NewArtifactError("missing", nil)
	if got := FromCall("wrap", original, KindModel); got != original {
		t.Error("existing AppError should be returned unchanged")
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError("camera unreachable", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Error() != "transport: camera unreachable (caused by: connection refused)" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

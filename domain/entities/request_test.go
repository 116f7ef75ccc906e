package entities

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Intent
		wantOK bool
	}{
		{"chatting", "Chatting", IntentChatting, true},
		{"object detection wire name", "Object Detection", IntentObjectDetection, true},
		{"snake case", "object_detection", IntentObjectDetection, true},
		{"original unknown label", "Unknown task", IntentUnknown, true},
		{"garbage", "dance", IntentUnknown, false},
		{"empty", "", IntentUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseIntent(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseIntent(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIntentJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Intent Intent `json:"intent"`
	}{IntentObjectDetection})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"intent":"Object Detection"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var decoded struct {
		Intent Intent `json:"intent"`
	}
	if err := json.Unmarshal([]byte(`{"intent":"Chatting"}`), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Intent != IntentChatting {
		t.Errorf("expected Chatting, got %v", decoded.Intent)
	}

	if err := json.Unmarshal([]byte(`{"intent":"Singing"}`), &decoded); err == nil {
		t.Error("expected error for unknown intent name")
	}
}

func TestRequestStageLedger(t *testing.T) {
	req := NewRequest()

	if req.ID == "" {
		t.Fatal("request id should be generated")
	}
	if req.Status != RequestStatusPending {
		t.Errorf("expected pending status, got %s", req.Status)
	}

	req.BeginStage(StageTranscribe)
	req.EndStage(StageTranscribe, StageStateCompleted, nil)
	req.BeginStage(StageCapture)
	req.EndStage(StageCapture, StageStateDegraded, errors.New("camera timeout"))

	record, ok := req.Record(StageCapture)
	if !ok {
		t.Fatal("capture stage should be recorded")
	}
	if record.State != StageStateDegraded {
		t.Errorf("expected degraded, got %s", record.State)
	}
	if record.Error != "camera timeout" {
		t.Errorf("unexpected error text %q", record.Error)
	}
	if record.CompletedAt == nil {
		t.Error("completed stage should have an end time")
	}

	if req.Ran(StageRespond) {
		t.Error("respond stage never started")
	}
}

func TestCapturedImageUsable(t *testing.T) {
	var nilImage *CapturedImage
	if nilImage.Usable() {
		t.Error("nil image must not be usable")
	}

	img := &CapturedImage{Data: []byte{0xff}, Provenance: ProvenanceNone}
	if img.Usable() {
		t.Error("image with provenance none must not be usable")
	}

	img.Provenance = ProvenanceFallback
	if !img.Usable() {
		t.Error("fallback image with data should be usable")
	}
}

func TestNewRequestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRequest().ID
		if seen[id] {
			t.Fatalf("duplicate request id %s", id)
		}
		seen[id] = true
	}
}

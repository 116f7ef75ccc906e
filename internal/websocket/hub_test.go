package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain"
)

// mockProcessor echoes the decoded audio back as the reply text
type mockProcessor struct {
	delay   time.Duration
	current int32
	peak    int32
	mu      sync.Mutex
	calls   int
}

func (m *mockProcessor) ProcessAudio(ctx context.Context, msg *domain.ProcessAudioMessage, baseURL string) domain.TerminalEvent {
	n := atomic.AddInt32(&m.current, 1)
	defer atomic.AddInt32(&m.current, -1)
	for {
		peak := atomic.LoadInt32(&m.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&m.peak, peak, n) {
			break
		}
	}

	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
		return domain.TerminalEvent{Error: &domain.ErrorMessage{Type: domain.EventError, Error: "cancelled"}}
	}

	audio, _ := base64.StdEncoding.DecodeString(msg.AudioData)
	return domain.TerminalEvent{AudioProcessed: &domain.AudioProcessedMessage{
		Type:     domain.EventAudioProcessed,
		Text:     string(audio),
		AudioURL: baseURL + "/static/audio/speech_test.mp3",
		Intent:   "Chatting",
	}}
}

func setupTestServer(t *testing.T, processor AudioProcessor, maxConcurrent int) (*Hub, string) {
	t.Helper()
	logger := zap.NewNop()
	hub := NewHub(processor, maxConcurrent, logger)
	go hub.Run()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(hub, c, "test-device", "http://vox.test", logger)
	})
	server := httptest.NewServer(e)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		hub.Shutdown(ctx)
		server.Close()
	})

	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var event map[string]interface{}
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return event
}

func TestHub_ProcessAudio(t *testing.T) {
	_, url := setupTestServer(t, &mockProcessor{}, 2)
	conn := dial(t, url)

	err := conn.WriteJSON(domain.ProcessAudioMessage{
		Type:      domain.EventProcessAudio,
		AudioData: base64.StdEncoding.EncodeToString([]byte("hello")),
	})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	event := readEvent(t, conn)
	if event["type"] != domain.EventAudioProcessed {
		t.Fatalf("unexpected event %v", event)
	}
	if event["text"] != "hello" || event["audio_url"] != "http://vox.test/static/audio/speech_test.mp3" {
		t.Errorf("unexpected payload %v", event)
	}
	if _, ok := event["image_processed"]; !ok {
		t.Error("image_processed must always be present")
	}
}

func TestHub_BinaryFrameIsAudio(t *testing.T) {
	_, url := setupTestServer(t, &mockProcessor{}, 1)
	conn := dial(t, url)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("raw wav")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if event := readEvent(t, conn); event["text"] != "raw wav" {
		t.Errorf("unexpected event %v", event)
	}
}

func TestHub_PingAndRejections(t *testing.T) {
	processor := &mockProcessor{}
	_, url := setupTestServer(t, processor, 1)
	conn := dial(t, url)

	conn.WriteJSON(map[string]string{"type": "ping", "data": "1"})
	if event := readEvent(t, conn); event["type"] != domain.EventPong || event["data"] != "1" {
		t.Errorf("expected pong, got %v", event)
	}

	conn.WriteJSON(map[string]string{"type": "process_audio"})
	if event := readEvent(t, conn); event["type"] != domain.EventError || event["error"] != "No audio data received" {
		t.Errorf("expected no-audio error, got %v", event)
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`))
	if event := readEvent(t, conn); event["type"] != domain.EventError {
		t.Errorf("expected error event, got %v", event)
	}

	processor.mu.Lock()
	defer processor.mu.Unlock()
	if processor.calls != 0 {
		t.Error("rejected messages must not reach the pipeline")
	}
}

func TestHub_ConcurrencyLimit(t *testing.T) {
	processor := &mockProcessor{delay: 50 * time.Millisecond}
	_, url := setupTestServer(t, processor, 2)
	conn := dial(t, url)

	const requests = 6
	for i := 0; i < requests; i++ {
		conn.WriteJSON(domain.ProcessAudioMessage{
			Type:      domain.EventProcessAudio,
			AudioData: base64.StdEncoding.EncodeToString([]byte("utterance")),
		})
	}

	for i := 0; i < requests; i++ {
		if event := readEvent(t, conn); event["type"] != domain.EventAudioProcessed {
			t.Fatalf("unexpected event %v", event)
		}
	}

	if peak := atomic.LoadInt32(&processor.peak); peak > 2 {
		t.Errorf("at most 2 requests may run at once, saw %d", peak)
	}
}

func TestHub_ClientLifecycle(t *testing.T) {
	hub, url := setupTestServer(t, &mockProcessor{}, 1)
	conn := dial(t, url)

	waitFor := func(want int) {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if hub.ClientCount() == want {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatalf("expected %d clients, have %d", want, hub.ClientCount())
	}

	waitFor(1)
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	waitFor(0)
}

func TestCreateErrorMessageJSON(t *testing.T) {
	data, _ := json.Marshal(CreateErrorMessage("boom"))
	if string(data) != `{"type":"error","error":"boom"}` {
		t.Errorf("unexpected JSON %s", data)
	}
}

func TestHub_NoNewRequestsAfterShutdown(t *testing.T) {
	hub := NewHub(&mockProcessor{}, 1, zap.NewNop())
	go hub.Run()

	if err := hub.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if hub.track() {
		t.Fatal("a stopped hub must not accept in-flight work")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := &Client{hub: hub, send: make(chan WriteData, 1), ctx: ctx, cancel: cancel, logger: zap.NewNop()}
	client.dispatch(&domain.ProcessAudioMessage{Type: domain.EventProcessAudio, AudioData: "AAEC"})

	select {
	case msg := <-client.send:
		if !strings.Contains(string(msg.Payload), errTextBusy) {
			t.Errorf("expected busy error, got %s", msg.Payload)
		}
	default:
		t.Error("expected a busy error for work dispatched during shutdown")
	}
}

func TestClient_DeliverWaitsForBufferSpace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := &Client{send: make(chan WriteData, 1), ctx: ctx, cancel: cancel, logger: zap.NewNop()}
	client.send <- WriteData{Type: websocket.TextMessage, Payload: []byte(`{"type":"pong"}`)}

	done := make(chan struct{})
	go func() {
		client.deliver(domain.TerminalEvent{AudioProcessed: &domain.AudioProcessedMessage{
			Type:      domain.EventAudioProcessed,
			RequestID: "req-1",
		}})
		close(done)
	}()

	<-client.send
	select {
	case msg := <-client.send:
		if !strings.Contains(string(msg.Payload), "req-1") {
			t.Errorf("unexpected payload %s", msg.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("terminal event was dropped while the buffer was full")
	}
	<-done
}

func TestClient_DeliverGivesUpWhenConnectionGoes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{send: make(chan WriteData), ctx: ctx, cancel: cancel, logger: zap.NewNop()}

	done := make(chan struct{})
	go func() {
		client.deliver(domain.TerminalEvent{Error: &domain.ErrorMessage{Type: domain.EventError, RequestID: "req-2"}})
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("deliver must return once the connection is cancelled")
	}
}

package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Whole recordings arrive base64 encoded.
	maxMessageSize = 16 * 1024 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// AudioProcessor runs one recorded utterance to a terminal event
type AudioProcessor interface {
	ProcessAudio(ctx context.Context, msg *domain.ProcessAudioMessage, baseURL string) domain.TerminalEvent
}

// Hub tracks connected clients and runs their requests under a shared concurrency limit
type Hub struct {
	// Registered clients by connection id.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	processor AudioProcessor
	validator *MessageValidator
	slots     chan struct{}

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup

	// Guards inflight.Add against a concurrent Shutdown
	lifecycle sync.Mutex
	stopping  bool

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub allowing maxConcurrent requests at once
func NewHub(processor AudioProcessor, maxConcurrent int, logger *zap.Logger) *Hub {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		processor:  processor,
		validator:  NewMessageValidator(),
		slots:      make(chan struct{}, maxConcurrent),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Run starts the hub's main loop until Shutdown is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("Client registered",
				zap.String("connectionID", client.id),
				zap.String("deviceID", client.deviceID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.close()
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered",
				zap.String("connectionID", client.id),
				zap.String("deviceID", client.deviceID))

		case <-h.ctx.Done():
			return
		}
	}
}

// Shutdown cancels in-flight requests and waits for them until ctx expires
func (h *Hub) Shutdown(ctx context.Context) error {
	h.lifecycle.Lock()
	h.stopping = true
	h.lifecycle.Unlock()
	h.cancel()

	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	h.mu.Lock()
	for id, client := range h.clients {
		delete(h.clients, id)
		client.close()
	}
	h.mu.Unlock()
	return nil
}

// track registers one in-flight request unless the hub is stopping
func (h *Hub) track() bool {
	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()
	if h.stopping {
		return false
	}
	h.inflight.Add(1)
	return true
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WriteData is one outbound websocket frame
type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	id  string
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send   chan WriteData
	mu     sync.Mutex
	closed bool

	// Device ID for this client, "anonymous" when auth is disabled
	deviceID string

	// Public base URL used for audio links sent to this client
	baseURL string

	// Cancelled when the connection goes away
	ctx    context.Context
	cancel context.CancelFunc

	logger *zap.Logger
}

// HandleWebSocket upgrades the request and serves the connection
func HandleWebSocket(hub *Hub, c echo.Context, deviceID, baseURL string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(hub.ctx)
	id := uuid.NewString()
	client := &Client{
		id:       id,
		hub:      hub,
		conn:     conn,
		send:     make(chan WriteData, 64),
		deviceID: deviceID,
		baseURL:  baseURL,
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.With(zap.String("connectionID", id), zap.String("deviceID", deviceID)),
	}

	select {
	case hub.register <- client:
	case <-hub.ctx.Done():
		cancel()
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket closed unexpectedly", zap.Error(err))
			}
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			// A binary frame is a raw recording
			c.dispatch(&domain.ProcessAudioMessage{
				Type:      domain.EventProcessAudio,
				AudioData: base64.StdEncoding.EncodeToString(message),
			})
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage processes incoming text frames from the client
func (c *Client) processMessage(message []byte) {
	parsed, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected message", zap.Error(err))
		c.sendJSON(CreateErrorMessage(rejectionText(err)))
		return
	}

	switch msg := parsed.(type) {
	case *domain.ProcessAudioMessage:
		c.dispatch(msg)
	case *PingMessage:
		c.sendJSON(CreatePongMessage(msg.Data))
	}
}

// dispatch runs the request on its own goroutine once a slot is free
func (c *Client) dispatch(msg *domain.ProcessAudioMessage) {
	if !c.hub.track() {
		c.sendJSON(CreateErrorMessage(errTextBusy))
		return
	}
	go func() {
		defer c.hub.inflight.Done()

		select {
		case c.hub.slots <- struct{}{}:
		case <-c.ctx.Done():
			if c.hub.ctx.Err() != nil {
				c.sendJSON(CreateErrorMessage(errTextBusy))
			}
			return
		}
		defer func() { <-c.hub.slots }()

		c.logger.Info("Processing audio", zap.Int("payloadSize", len(msg.AudioData)))
		event := c.hub.processor.ProcessAudio(c.ctx, msg, c.baseURL)
		c.deliver(event)
	}()
}

// deliver queues a terminal event, waiting for buffer space while the
// connection is alive
func (c *Client) deliver(event domain.TerminalEvent) {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		c.logger.Error("Failed to marshal event", zap.String("requestID", requestID(event)), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.logger.Warn("Dropping event for closed connection",
			zap.String("requestID", requestID(event)),
			zap.Bool("succeeded", event.Succeeded()))
		return
	}

	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	case <-c.ctx.Done():
		c.logger.Warn("Dropping event, connection went away",
			zap.String("requestID", requestID(event)),
			zap.Bool("succeeded", event.Succeeded()))
	}
}

func requestID(event domain.TerminalEvent) string {
	if event.AudioProcessed != nil {
		return event.AudioProcessed.RequestID
	}
	if event.Error != nil {
		return event.Error.RequestID
	}
	return ""
}

// sendJSON queues a message unless the connection is already gone
func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.logger.Debug("Dropping message for closed connection")
		return
	}

	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Send buffer full, dropping message")
	}
}

// close stops further sends and lets writePump finish
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.send)
}

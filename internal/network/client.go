package network

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/LunaTecno/DeddysNightJuego/server/internal/engine"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// PlayerIntent is an incoming command from the frontend.
type PlayerIntent struct {
	Type    string          `json:"type"` // "START", "RESTART", "TOGGLE_DOOR", ...
	Payload json.RawMessage `json:"payload"`
}

// Client represents one active WebSocket connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	// mu serializes queueing against the hub closing send: the read pump
	// may be mid-intent when the hub drops this client as too slow.
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// queue hands a frame to the write pump without blocking. It reports false
// when the buffer is full or the client has already been dropped.
func (c *Client) queue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend marks the client dead and closes its send channel. Idempotent;
// it takes the same lock as queue so a late frame can never hit the closed
// channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump pumps intents from the websocket connection into the director.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("WebSocket read failed", zap.String("client", c.id), zap.Error(err))
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var intent PlayerIntent
		if err := json.Unmarshal(message, &intent); err != nil {
			c.hub.logger.Warn("Unparseable player intent", zap.String("client", c.id), zap.Error(err))
			continue
		}

		c.handleIntent(intent)
	}
}

// handleIntent routes a player intent to the director. Rejections that the
// player can legitimately hit (the broken camera) come back to this client
// as a NOTICE frame; anything else is a frontend bug and only logged.
func (c *Client) handleIntent(intent PlayerIntent) {
	d := c.hub.director

	var err error
	switch intent.Type {
	case "START":
		var p struct {
			Night int `json:"night"`
		}
		_ = json.Unmarshal(intent.Payload, &p)
		err = d.StartNight(p.Night)

	case "RESTART":
		err = d.Restart()

	case "TOGGLE_DOOR":
		var p struct {
			Side engine.DoorSide `json:"side"`
		}
		if err = json.Unmarshal(intent.Payload, &p); err == nil {
			err = d.ToggleDoor(p.Side)
		}

	case "SELECT_CAMERA":
		var p struct {
			Camera int `json:"camera"`
		}
		if err = json.Unmarshal(intent.Payload, &p); err == nil {
			err = d.SelectCamera(p.Camera)
		}

	case "TOGGLE_MONITOR":
		err = d.ToggleMonitor()

	case "TOGGLE_SOUND":
		d.ToggleSound()

	default:
		c.hub.logger.Warn("Unknown player intent", zap.String("client", c.id), zap.String("type", intent.Type))
		return
	}

	if err == nil {
		return
	}
	if errors.Is(err, engine.ErrCameraOffline) {
		c.sendNotice("CAMERA_OFFLINE", "That camera has been out of order for years.")
		return
	}
	c.hub.logger.Warn("Intent rejected",
		zap.String("client", c.id), zap.String("type", intent.Type), zap.Error(err))
}

// sendNotice queues a transient user-visible notice for this client only.
func (c *Client) sendNotice(code, text string) {
	frame, err := json.Marshal(ServerMessage{
		Type:    "NOTICE",
		Payload: map[string]string{"code": code, "text": text},
	})
	if err != nil {
		return
	}
	if c.queue(frame) {
		metrics.Get().RecordWSMessage(false)
	} else {
		metrics.Get().RecordWSError()
	}
}

// sendSnapshot queues a snapshot frame for this client only.
func (c *Client) sendSnapshot(snap SnapshotPayload) {
	frame, err := json.Marshal(ServerMessage{Type: "SNAPSHOT", Payload: snap})
	if err != nil {
		return
	}
	if c.queue(frame) {
		metrics.Get().RecordWSMessage(false)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

// Package network is the presentation adapter boundary: it streams state
// snapshots and game events to every connected browser over WebSocket and
// feeds player intents back into the night director. No game logic lives
// here.
package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LunaTecno/DeddysNightJuego/server/internal/domain/animatronic"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/engine"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/events"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/platform/logger"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/platform/metrics"
)

// ServerMessage is one frame pushed to the frontend.
type ServerMessage struct {
	Type    string      `json:"type"` // "SNAPSHOT", "EVENT" or "NOTICE"
	Payload interface{} `json:"payload"`
}

// SnapshotPayload is the per-tick view of the world the frontend renders.
type SnapshotPayload struct {
	State engine.NightState `json:"state"`

	// HourLabel is the office clock ("12 AM" .. "5 AM").
	HourLabel string `json:"hour_label"`

	// CameraFeed lists whoever stands in front of the selected camera.
	CameraFeed []animatronic.Identity `json:"camera_feed"`

	SoundOn bool `json:"sound_on"`
}

// Hub maintains the set of active clients and broadcasts frames to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
	director   *engine.Director
}

// NewHub initializes a new WebSocket Hub bound to the night director.
func NewHub(log *logger.Logger, director *engine.Director) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
		director:   director,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket hub shutting down")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("WebSocket client connected", zap.String("client", client.id))
			// Late joiners get the current state right away instead of
			// waiting out a tick.
			client.sendSnapshot(h.snapshotFrame())
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected", zap.String("client", client.id))
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.queue(message) {
					metrics.Get().RecordWSMessage(false)
				} else {
					// Too slow: drop the client. closeSend races the
					// client's own notice path safely.
					client.closeSend()
					delete(h.clients, client)
					metrics.Get().RecordWSError()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast serializes a frame and queues it for every client.
func (h *Hub) Broadcast(msg ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to serialize frame for broadcast", zap.Error(err))
		return
	}
	h.broadcast <- payload
}

// StartEventPoller pushes new event log entries to all clients as they land,
// polling on the same cadence as the simulation tick. The hub runs
// independently from the director's tick paths while picking up the same
// events.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog, interval time.Duration) {
	go func() {
		poll := time.NewTicker(interval)
		defer poll.Stop()

		offset := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-poll.C:
				newEvents, next := eventLog.Since(offset)
				offset = next
				for _, event := range newEvents {
					h.Broadcast(ServerMessage{Type: "EVENT", Payload: event})
				}
			}
		}
	}()
}

// StartSnapshotStream broadcasts the current snapshot on the tick cadence so
// the frontend always renders the latest power, clock and camera state.
func (h *Hub) StartSnapshotStream(ctx context.Context, interval time.Duration) {
	go func() {
		stream := time.NewTicker(interval)
		defer stream.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stream.C:
				h.Broadcast(ServerMessage{Type: "SNAPSHOT", Payload: h.snapshotFrame()})
			}
		}
	}()
}

func (h *Hub) snapshotFrame() SnapshotPayload {
	state := h.director.Snapshot()
	return SnapshotPayload{
		State:      state,
		HourLabel:  state.HourLabel(),
		CameraFeed: state.OccupantsAt(animatronic.CameraLocation(state.Camera)),
		SoundOn:    h.director.SoundOn(),
	}
}

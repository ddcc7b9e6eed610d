package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Lucas-Miller/3d-pipes/internal/events"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/logger"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/metrics"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/optimization"
)

// Hub maintains the set of active renderer clients and broadcasts
// geometry events to them. Renderers draw what they receive; the
// simulation core never sees them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
	eventLog   *events.EventLog
	tuning     *optimization.Config
}

// NewHub initializes a new WebSocket Hub. A nil tuning config falls
// back to the production defaults.
func NewHub(eventLog *events.EventLog, log *logger.Logger, tuning *optimization.Config) *Hub {
	if tuning == nil {
		tuning = optimization.DefaultConfig()
	}
	return &Hub{
		broadcast:  make(chan []byte, tuning.BroadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
		eventLog:   eventLog,
		tuning:     tuning,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			if len(h.clients) >= h.tuning.MaxClients {
				h.mu.Unlock()
				close(client.send)
				h.logger.Warn("Renderer client rejected: viewer limit reached")
				continue
			}
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New renderer client connected")
			// Catch the new renderer up on everything emitted so far.
			client.sendBacklog(h.eventLog.Replay())
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("Renderer client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent serializes a GeometryEvent to JSON and sends it to all
// connected renderers.
func (h *Hub) BroadcastEvent(event events.GeometryEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to serialize GeometryEvent for WebSocket broadcast: " + err.Error())
		metrics.Get().RecordWSError()
		return
	}
	h.broadcast <- payload
}

// StartEventPoller spawns a goroutine to poll the EventLog and push new
// events to the Hub. The Hub runs independently from the tick loop while
// picking up the same events.
func (h *Hub) StartEventPoller(ctx context.Context) {
	go func() {
		pollInterval := time.NewTicker(h.tuning.EventPollInterval)
		defer pollInterval.Stop()

		lastProcessedEvent := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				allEvents := h.eventLog.Replay()
				newEventsCount := len(allEvents) - lastProcessedEvent

				if newEventsCount > 0 {
					newEvents := allEvents[lastProcessedEvent:]
					for _, event := range newEvents {
						h.BroadcastEvent(event)
					}
					lastProcessedEvent = len(allEvents)
				}
			}
		}
	}()
}

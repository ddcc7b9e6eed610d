package network

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Lucas-Miller/3d-pipes/internal/events"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/metrics"
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
	// Minimum interval between viewer commands from one client.
	commandCooldown = 1 * time.Second
)

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.tuning.ClientSendBuffer),
	}
}

// ViewerCommand represents an incoming command from a renderer client.
// Renderers are read-mostly; the only supported command re-sends the
// geometry they may have missed.
type ViewerCommand struct {
	Type       string `json:"type"`       // "RESYNC"
	Generation int    `json:"generation"` // 0 = everything
}

// Client holds one renderer connection. Hub ref allows unregister.
type Client struct {
	hub             *Hub
	conn            *websocket.Conn
	send            chan []byte
	lastCommandTime time.Time
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// sendBacklog queues historical events directly to this client, used to
// catch a late-joining renderer up on already-emitted geometry.
func (c *Client) sendBacklog(history []events.GeometryEvent) {
	for _, event := range history {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		select {
		case c.send <- payload:
			metrics.Get().RecordWSMessage(false)
		default:
			// Slow client; the hub will drop it on the next broadcast.
			return
		}
	}
}

// ReadPump pumps messages from the websocket connection to the hub.
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
				log.Printf("error: %v", err)
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var cmd ViewerCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.logger.Error("Failed to parse ViewerCommand from WebSocket. err: " + err.Error())
			continue
		}

		c.handleViewerCommand(cmd)
	}
}

func (c *Client) handleViewerCommand(cmd ViewerCommand) {
	// Rate limiting check.
	if time.Since(c.lastCommandTime) < commandCooldown {
		c.hub.logger.Warn("Rate limit exceeded for viewer command " + cmd.Type)
		return
	}
	c.lastCommandTime = time.Now()

	switch cmd.Type {
	case "RESYNC":
		if cmd.Generation > 0 {
			c.sendBacklog(c.hub.eventLog.ByGeneration(cmd.Generation))
		} else {
			c.sendBacklog(c.hub.eventLog.Replay())
		}
	default:
		c.hub.logger.Warn("Unknown ViewerCommand type: " + cmd.Type)
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

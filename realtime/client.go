package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"main/middleware"
	"main/repository"
	"main/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event is the JSON frame exchanged with clients in both directions.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one live websocket connection. It holds at most one session
// binding, established by the authenticate event.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	socketID string

	sessionID     string
	authenticated bool
}

type authenticatePayload struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
}

// ServeWS upgrades the request and runs the connection's read/write pumps.
func ServeWS(hub *Hub, registry *repository.SessionRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:      hub,
			conn:     conn,
			send:     make(chan []byte, sendBufferSize),
			socketID: uuid.New().String(),
		}

		hub.register(client)

		go client.writePump()
		client.readPump(registry)
	}
}

func (c *Client) readPump(registry *repository.SessionRegistry) {
	defer func() {
		c.hub.unregister(c)
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			c.emit("auth_error", map[string]string{"error": "Malformed event payload"})
			continue
		}

		c.handleEvent(registry, event)
	}
}

func (c *Client) handleEvent(registry *repository.SessionRegistry, event Event) {
	switch event.Event {
	case "authenticate":
		c.handleAuthenticate(registry, event.Data)
	case "ping":
		c.emit("pong", map[string]interface{}{"timestamp": time.Now()})
	case "task_processing":
		if !c.authenticated {
			c.emit("error", map[string]string{"error": "Not authenticated"})
			return
		}
		c.hub.BroadcastExcept(c, "task_update", map[string]interface{}{
			"sessionId": c.sessionID,
			"status":    "processing",
			"data":      event.Data,
		})
	default:
		// Unknown events are ignored; the protocol is forward-compatible.
	}
}

// handleAuthenticate links the socket to a session. The token signature must
// verify and its embedded session id must match the one presented — a client
// cannot attach to another user's session by guessing its id.
func (c *Client) handleAuthenticate(registry *repository.SessionRegistry, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.emit("auth_error", map[string]string{"error": "Malformed authenticate payload"})
		return
	}
	var payload authenticatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emit("auth_error", map[string]string{"error": "Malformed authenticate payload"})
		return
	}

	if payload.Token == "" || payload.SessionID == "" {
		c.emit("auth_error", map[string]string{"error": "Token and sessionId required"})
		return
	}

	claims, err := services.VerifyToken(payload.Token)
	if err != nil {
		middleware.TrackAuthAttempt("failure", "socket")
		c.emit("auth_error", map[string]string{"error": "Token verification failed"})
		return
	}
	if claims.SessionID != payload.SessionID {
		middleware.TrackAuthAttempt("failure", "socket")
		c.emit("auth_error", map[string]string{"error": "Token does not match session"})
		return
	}

	if !registry.LinkSocket(payload.SessionID, c.socketID) {
		middleware.TrackAuthAttempt("failure", "socket")
		c.emit("auth_error", map[string]string{"error": "Session is not active"})
		return
	}

	c.sessionID = payload.SessionID
	c.authenticated = true

	middleware.TrackAuthAttempt("success", "socket")
	c.emit("authenticated", map[string]interface{}{
		"success":   true,
		"sessionId": payload.SessionID,
	})
	c.hub.BroadcastStats()

	log.Printf("Client authenticated: %s (Session: %s)", c.socketID, payload.SessionID)
}

// emit queues an event for this connection only. Drops the frame if the
// client is not keeping up.
func (c *Client) emit(event string, data interface{}) {
	frame, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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

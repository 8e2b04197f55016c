package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// client is one WebSocket connection bound to a player in a session. A reader
// goroutine feeds inbound frames to the gateway; a writer goroutine drains the
// send channel so broadcasts never block on a slow connection.
type client struct {
	sessionID string
	playerID  string

	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(g *Gateway, conn *websocket.Conn, sessionID, playerID string) *client {
	return &client{
		sessionID: sessionID,
		playerID:  playerID,
		gateway:   g,
		conn:      conn,
		send:      make(chan []byte, 64),
	}
}

func (c *client) readPump() {
	defer func() {
		c.gateway.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.gateway.logger.Warn("websocket read failed",
					zap.String("player_id", c.playerID),
					zap.Error(err),
				)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendMessage(errorMessage("INVALID_MESSAGE", "the message is not valid JSON"))
			continue
		}
		c.gateway.handleMessage(c, msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
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

func (c *client) sendMessage(msg serverMessage) {
	raw, err := json.Marshal(msg)
	if err != nil {
		c.gateway.logger.Error("encode server message", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- raw:
	default:
		// The writer cannot keep up; drop the connection rather than block.
		c.closed = true
		close(c.send)
		c.gateway.logger.Warn("send buffer full, dropping client",
			zap.String("player_id", c.playerID),
		)
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/foolgame/durak-server-go/internal/game"
)

// Gateway owns the WebSocket side of the server: connection registry per
// session, frame decoding, engine dispatch and state broadcasts.
type Gateway struct {
	manager *game.Manager
	logger  *zap.Logger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{} // session id -> connections
}

// NewGateway creates a gateway over the session manager.
func NewGateway(manager *game.Manager, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		manager: manager,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser client is served from a different origin in
			// development; game access is gated by session membership.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// HandleWS upgrades one game connection. The player must already be part of
// the session; joining happens over the HTTP API before the socket opens.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	playerID := r.URL.Query().Get("player_id")

	snap, err := g.manager.Snapshot(sessionID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	member := false
	for _, p := range snap.Players {
		if p.ID == playerID {
			member = true
			break
		}
	}
	if !member {
		http.Error(w, "player is not part of this game", http.StatusForbidden)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(g, conn, sessionID, playerID)
	g.register(c)
	g.logger.Info("player connected",
		zap.String("session_id", sessionID),
		zap.String("player_id", playerID),
	)

	go c.writePump()
	g.sendState(c)
	c.readPump()
}

func (g *Gateway) register(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.clients[c.sessionID] == nil {
		g.clients[c.sessionID] = make(map[*client]struct{})
	}
	g.clients[c.sessionID][c] = struct{}{}
}

func (g *Gateway) disconnect(c *client) {
	g.mu.Lock()
	if conns, ok := g.clients[c.sessionID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(g.clients, c.sessionID)
		}
	}
	g.mu.Unlock()
	c.close()

	g.logger.Info("player disconnected",
		zap.String("session_id", c.sessionID),
		zap.String("player_id", c.playerID),
	)
	g.broadcast(c.sessionID, serverMessage{
		Type: typePlayerDisconnected,
		Data: map[string]string{"player_id": c.playerID},
	})
}

// handleMessage runs one inbound frame through the engine and fans the
// outcome out to the session's connections.
func (g *Gateway) handleMessage(c *client, msg clientMessage) {
	if msg.Type == typePlayerConnected {
		g.sendState(c)
		return
	}

	in, ok, err := toPlayerInput(msg, c.playerID)
	if err != nil {
		c.sendMessage(errorMessage("INVALID_MESSAGE", err.Error()))
		return
	}
	if !ok {
		return
	}

	res, err := g.manager.Dispatch(c.sessionID, in)
	if err != nil {
		// A contract violation: report it and resync the sender so their
		// client state cannot drift.
		code := "GAME_LOGIC_ERROR"
		if ec := game.CodeOf(err); ec != "" {
			code = string(ec)
		}
		c.sendMessage(errorMessage(code, err.Error()))
		g.sendState(c)
		return
	}

	if res.Transition != nil {
		// A phase changed; every player gets a fresh full view.
		g.broadcastState(c.sessionID)
		return
	}

	resp := res.Response
	if resp.Result != game.ResultSuccess {
		c.sendMessage(errorMessage(resp.Result.String(), resp.Message))
		return
	}

	switch msg.Type {
	case typeChangeStatus:
		g.broadcast(c.sessionID, serverMessage{
			Type: typeStatusChanged,
			Data: map[string]string{"player_id": c.playerID},
		})
		g.broadcastState(c.sessionID)
	case typePlayCard, typePassTurn, typeQuit:
		g.broadcast(c.sessionID, serverMessage{
			Type: typeCardPlayed,
			Data: map[string]string{"player_id": c.playerID},
		})
		g.broadcastState(c.sessionID)
	}
}

// sendState sends the full per-player game view to one connection.
func (g *Gateway) sendState(c *client) {
	snap, err := g.manager.Snapshot(c.sessionID)
	if err != nil {
		return
	}
	hand, err := g.manager.HandOf(c.sessionID, c.playerID)
	if err != nil {
		return
	}
	c.sendMessage(gameStateMessage(snap, c.playerID, hand))
}

// broadcastState refreshes every connection of a session with its own view.
func (g *Gateway) broadcastState(sessionID string) {
	for _, c := range g.connections(sessionID) {
		g.sendState(c)
	}
}

// broadcast sends the same frame to every connection of a session.
func (g *Gateway) broadcast(sessionID string, msg serverMessage) {
	for _, c := range g.connections(sessionID) {
		c.sendMessage(msg)
	}
}

func (g *Gateway) connections(sessionID string) []*client {
	g.mu.RLock()
	defer g.mu.RUnlock()
	conns := make([]*client, 0, len(g.clients[sessionID]))
	for c := range g.clients[sessionID] {
		conns = append(conns, c)
	}
	return conns
}

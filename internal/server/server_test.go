package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foolgame/durak-server-go/internal/config"
	"github.com/foolgame/durak-server-go/internal/game"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	manager := game.NewManager(zap.NewNop(), 0)
	s := New(config.ServerConfig{Address: ":0"}, manager, nil, nil, 2, zap.NewNop())
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestCreateAndListGames(t *testing.T) {
	_, ts := newTestServer(t)

	var created gameCreatedResponse
	resp := postJSON(t, ts.URL+"/api/v1/games?players_limit=3", &created)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, created.GameID)
	assert.Equal(t, 3, created.PlayersLimit)

	resp = postJSON(t, ts.URL+"/api/v1/games?players_limit=1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	listResp, err := http.Get(ts.URL + "/api/v1/games")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var games []gameInfoResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&games))
	require.Len(t, games, 1)
	assert.Equal(t, created.GameID, games[0].GameID)
	assert.Zero(t, games[0].PlayersInside)
}

func TestJoinGame(t *testing.T) {
	_, ts := newTestServer(t)

	var created gameCreatedResponse
	postJSON(t, ts.URL+"/api/v1/games?players_limit=2", &created)

	var joined gameJoinedResponse
	resp := postJSON(t, fmt.Sprintf("%s/api/v1/games/join?game_id=%s&player_id=alice&name=Alice", ts.URL, created.GameID), &joined)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.GameID, joined.GameID)
	assert.Equal(t, "alice", joined.PlayerID)
	assert.Contains(t, joined.WebsocketPath, created.GameID)

	// Joining twice is rejected.
	resp = postJSON(t, fmt.Sprintf("%s/api/v1/games/join?game_id=%s&player_id=alice", ts.URL, created.GameID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// A full room turns the next player away.
	postJSON(t, fmt.Sprintf("%s/api/v1/games/join?game_id=%s&player_id=bob", ts.URL, created.GameID), nil)
	resp = postJSON(t, fmt.Sprintf("%s/api/v1/games/join?game_id=%s&player_id=carol", ts.URL, created.GameID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// An unknown game id is a 404.
	resp = postJSON(t, ts.URL+"/api/v1/games/join?game_id=nope&player_id=dave", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJoinGameAutoFind(t *testing.T) {
	_, ts := newTestServer(t)

	// No games exist: the join creates one and registers an anonymous player.
	var joined gameJoinedResponse
	resp := postJSON(t, ts.URL+"/api/v1/games/join", &joined)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, joined.GameID)
	assert.NotEmpty(t, joined.PlayerID)

	// The next join lands in the same pending game.
	var second gameJoinedResponse
	postJSON(t, ts.URL+"/api/v1/games/join?player_id=bob", &second)
	assert.Equal(t, joined.GameID, second.GameID)
}

func TestLeaderboardDisabled(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/leaderboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/v1/matches")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStreamGamesFirstEvent(t *testing.T) {
	_, ts := newTestServer(t)

	postJSON(t, ts.URL+"/api/v1/games?players_limit=2", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/games/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			event = strings.TrimPrefix(line, "event: ")
		}
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	require.Equal(t, "games_update", event)

	var games []gameInfoResponse
	require.NoError(t, json.Unmarshal([]byte(data), &games))
	assert.Len(t, games, 1)
}

// wsDial opens a game WebSocket against the test server.
func wsDial(t *testing.T, ts *httptest.Server, gameID, playerID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + fmt.Sprintf("/api/v1/ws/%s?player_id=%s", gameID, playerID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var frame map[string]any
		require.NoError(t, conn.ReadJSON(&frame), "waiting for %s frame", msgType)
		if frame["type"] == msgType {
			return frame
		}
	}
}

func TestWebSocketGameFlow(t *testing.T) {
	_, ts := newTestServer(t)

	var created gameCreatedResponse
	postJSON(t, ts.URL+"/api/v1/games?players_limit=2", &created)
	postJSON(t, fmt.Sprintf("%s/api/v1/games/join?game_id=%s&player_id=alice", ts.URL, created.GameID), nil)
	postJSON(t, fmt.Sprintf("%s/api/v1/games/join?game_id=%s&player_id=bob", ts.URL, created.GameID), nil)

	alice := wsDial(t, ts, created.GameID, "alice")
	bob := wsDial(t, ts, created.GameID, "bob")

	// Both connections receive their initial state.
	frame := readUntil(t, alice, typeGameState)
	state := frame["data"].(map[string]any)
	assert.Equal(t, "LOBBY", state["phase"])
	assert.Equal(t, float64(2), state["room_size"])
	readUntil(t, bob, typeGameState)

	// Readying both players starts the game; everyone gets the fresh view.
	ready, _ := json.Marshal(map[string]any{
		"type": typeChangeStatus,
		"data": map[string]string{"status": "ready"},
	})
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, ready))
	readUntil(t, alice, typeStatusChanged)
	require.NoError(t, bob.WriteMessage(websocket.TextMessage, ready))

	deadline := time.Now().Add(3 * time.Second)
	var phase string
	for time.Now().Before(deadline) {
		frame = readUntil(t, alice, typeGameState)
		phase = frame["data"].(map[string]any)["phase"].(string)
		if phase == "PLAY_ROUND" {
			break
		}
	}
	require.Equal(t, "PLAY_ROUND", phase)

	state = frame["data"].(map[string]any)
	cards := state["cards"].([]any)
	assert.Len(t, cards, 6, "each player sees their own dealt hand")
	assert.NotEmpty(t, state["attacker_id"])
	assert.NotEmpty(t, state["trump_suit"])
}

func TestWebSocketRejectsOutsiders(t *testing.T) {
	_, ts := newTestServer(t)

	var created gameCreatedResponse
	postJSON(t, ts.URL+"/api/v1/games?players_limit=2", &created)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + fmt.Sprintf("/api/v1/ws/%s?player_id=ghost", created.GameID)
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	url = "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws/unknown?player_id=ghost"
	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketErrorFrameOnBadMessage(t *testing.T) {
	_, ts := newTestServer(t)

	var created gameCreatedResponse
	postJSON(t, ts.URL+"/api/v1/games?players_limit=2", &created)
	postJSON(t, fmt.Sprintf("%s/api/v1/games/join?game_id=%s&player_id=alice", ts.URL, created.GameID), nil)

	alice := wsDial(t, ts, created.GameID, "alice")
	readUntil(t, alice, typeGameState)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`)))
	frame := readUntil(t, alice, typeError)
	data := frame["data"].(map[string]any)
	assert.Equal(t, "INVALID_MESSAGE", data["code"])
}

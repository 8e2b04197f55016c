package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foolgame/durak-server-go/internal/config"
	"github.com/foolgame/durak-server-go/internal/game"
	"github.com/foolgame/durak-server-go/internal/repository"
	"github.com/foolgame/durak-server-go/internal/storage"
)

// Server is the HTTP surface of the game: the lobby REST API, the SSE game
// directory stream and the WebSocket gateway. Leaderboard and match history
// handlers are active only when their stores are configured.
type Server struct {
	cfg     config.ServerConfig
	logger  *zap.Logger
	manager *game.Manager
	gateway *Gateway

	leaderboard *storage.Leaderboard
	matches     *repository.MatchRepository

	defaultPlayersLimit int
	httpServer          *http.Server
}

// New assembles the server. leaderboard and matches may be nil.
func New(
	cfg config.ServerConfig,
	manager *game.Manager,
	leaderboard *storage.Leaderboard,
	matches *repository.MatchRepository,
	defaultPlayersLimit int,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:                 cfg,
		logger:              logger,
		manager:             manager,
		gateway:             NewGateway(manager, logger),
		leaderboard:         leaderboard,
		matches:             matches,
		defaultPlayersLimit: defaultPlayersLimit,
	}
	s.httpServer = &http.Server{
		Addr:    cfg.Address,
		Handler: s.routes(),
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/games", s.handleCreateGame)
	mux.HandleFunc("POST /api/v1/games/join", s.handleJoinGame)
	mux.HandleFunc("GET /api/v1/games", s.handleListGames)
	mux.HandleFunc("GET /api/v1/games/stream", s.handleStreamGames)
	mux.HandleFunc("GET /api/v1/ws/{id}", s.gateway.HandleWS)
	mux.HandleFunc("GET /api/v1/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/v1/matches", s.handleMatches)
	return mux
}

// Start serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("address", s.cfg.Address))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type gameCreatedResponse struct {
	GameID       string `json:"game_id"`
	PlayersLimit int    `json:"players_limit"`
}

type gameInfoResponse struct {
	GameID        string `json:"game_id"`
	PlayersLimit  int    `json:"players_limit"`
	PlayersInside int    `json:"players_inside"`
}

type gameJoinedResponse struct {
	GameID        string `json:"game_id"`
	PlayerID      string `json:"player_id"`
	WebsocketPath string `json:"websocket_path"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	limit := s.defaultPlayersLimit
	if raw := r.URL.Query().Get("players_limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "players_limit must be a number")
			return
		}
		limit = n
	}

	id, err := s.manager.CreateSession(limit)
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, gameCreatedResponse{GameID: id, PlayersLimit: limit})
}

// handleJoinGame joins a player into a specific game, or the first joinable
// one when no game_id is given (creating a fresh game as a last resort).
// Anonymous players get a generated id.
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		playerID = uuid.NewString()
	}
	playerName := r.URL.Query().Get("name")

	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		for _, summary := range s.manager.List() {
			if summary.Phase == game.PhaseLobby && summary.PlayersCount < summary.PlayersLimit {
				gameID = summary.ID
				break
			}
		}
	}
	if gameID == "" {
		id, err := s.manager.CreateSession(s.defaultPlayersLimit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, err.Error())
			return
		}
		gameID = id
	}

	res, err := s.manager.Dispatch(gameID, game.PlayerInput{
		PlayerID:   playerID,
		PlayerName: playerName,
		Action:     game.ActionJoin,
	})
	if err != nil {
		httpError(w, http.StatusNotFound, err.Error())
		return
	}
	if res.Response != nil && res.Response.Result != game.ResultSuccess {
		status := http.StatusUnprocessableEntity
		if res.Response.Result == game.ResultRoomFull {
			status = http.StatusConflict
		}
		httpError(w, status, res.Response.Message)
		return
	}

	writeJSON(w, http.StatusOK, gameJoinedResponse{
		GameID:        gameID,
		PlayerID:      playerID,
		WebsocketPath: fmt.Sprintf("/api/v1/ws/%s?player_id=%s", gameID, playerID),
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.pendingGames())
}

// pendingGames lists games still gathering players.
func (s *Server) pendingGames() []gameInfoResponse {
	games := make([]gameInfoResponse, 0)
	for _, summary := range s.manager.List() {
		if summary.Phase != game.PhaseLobby || summary.PlayersCount >= summary.PlayersLimit {
			continue
		}
		games = append(games, gameInfoResponse{
			GameID:        summary.ID,
			PlayersLimit:  summary.PlayersLimit,
			PlayersInside: summary.PlayersCount,
		})
	}
	return games
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard == nil {
		httpError(w, http.StatusNotFound, "the leaderboard is not enabled")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := s.leaderboard.Top(r.Context(), limit)
	if err != nil {
		s.logger.Error("leaderboard query failed", zap.Error(err))
		httpError(w, http.StatusInternalServerError, "failed to read the leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if s.matches == nil {
		httpError(w, http.StatusNotFound, "match history is not enabled")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := s.matches.RecentMatches(r.Context(), limit)
	if err != nil {
		s.logger.Error("match history query failed", zap.Error(err))
		httpError(w, http.StatusInternalServerError, "failed to read match history")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recordTimeout = 5 * time.Second

// MatchResult summarizes a finished hand for recorders.
type MatchResult struct {
	SessionID  string
	WinnerID   string
	LoserIDs   []string
	Draw       bool
	FinishedAt time.Time
}

// MatchRecorder receives finished matches. Implementations live outside the
// engine (database, leaderboard); failures are logged and never affect play.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, result MatchResult) error
}

// managedSession pairs a session with the mutex that serializes its inputs
// and the pending auto-restart timer, if any.
type managedSession struct {
	session *Session
	mu      sync.Mutex
	restart *time.Timer
}

// Manager owns every live session. It is the explicit registry the transport
// layer works against: creation, lookup, serialized dispatch, and the
// GameOver auto-restart timer all live here.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*managedSession
	logger       *zap.Logger
	restartDelay time.Duration
	recorders    []MatchRecorder
}

// NewManager creates an empty session registry. restartDelay is how long a
// finished game lingers on the results screen before returning to the lobby;
// zero disables the automatic return.
func NewManager(logger *zap.Logger, restartDelay time.Duration, recorders ...MatchRecorder) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:     make(map[string]*managedSession),
		logger:       logger,
		restartDelay: restartDelay,
		recorders:    recorders,
	}
}

// CreateSession registers a new session and returns its id.
func (m *Manager) CreateSession(playersLimit int) (string, error) {
	id := uuid.NewString()
	session, err := NewSession(id, playersLimit, m.logger)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.sessions[id] = &managedSession{session: session}
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", id),
		zap.Int("players_limit", playersLimit),
	)
	return id, nil
}

// Remove drops a session and cancels its pending restart, if any.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	ms, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		ms.mu.Lock()
		if ms.restart != nil {
			ms.restart.Stop()
		}
		ms.mu.Unlock()
		m.logger.Info("session removed", zap.String("session_id", id))
	}
}

func (m *Manager) lookup(id string) (*managedSession, error) {
	m.mu.RLock()
	ms, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return ms, nil
}

// Dispatch runs one input against a session. Inputs for the same session are
// serialized by a per-session mutex; distinct sessions proceed in parallel.
func (m *Manager) Dispatch(id string, in PlayerInput) (*Result, error) {
	ms, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	res, err := ms.session.HandleInput(in)
	if err != nil {
		return nil, err
	}

	if res.Transition != nil && res.Transition.New == PhaseGameOver {
		m.finishMatch(ms, res.Transition.EnterInfo)
	}
	return res, nil
}

// finishMatch reports the result to the recorders and schedules the return
// to the lobby. Called with the session mutex held.
func (m *Manager) finishMatch(ms *managedSession, info EnterInfo) {
	result := MatchResult{
		SessionID:  ms.session.ID,
		WinnerID:   info.WinnerID,
		LoserIDs:   append([]string(nil), info.LoserIDs...),
		Draw:       info.Draw,
		FinishedAt: time.Now(),
	}
	for _, rec := range m.recorders {
		go func(rec MatchRecorder) {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			if err := rec.RecordMatch(ctx, result); err != nil {
				m.logger.Error("failed to record match",
					zap.String("session_id", result.SessionID),
					zap.Error(err),
				)
			}
		}(rec)
	}

	if m.restartDelay <= 0 {
		return
	}
	id := ms.session.ID
	if ms.restart != nil {
		ms.restart.Stop()
	}
	ms.restart = time.AfterFunc(m.restartDelay, func() {
		if _, err := m.Dispatch(id, PlayerInput{Action: ActionPass}); err != nil {
			m.logger.Warn("lobby restart dispatch failed",
				zap.String("session_id", id),
				zap.Error(err),
			)
		}
	})
}

// Snapshot returns the broadcast view of one session.
func (m *Manager) Snapshot(id string) (*Snapshot, error) {
	ms, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.session.Snapshot(), nil
}

// HandOf returns one player's cards in a session.
func (m *Manager) HandOf(id, playerID string) ([]Card, error) {
	ms, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.session.HandOf(playerID), nil
}

// SessionSummary is the lobby-directory view of a session.
type SessionSummary struct {
	ID           string
	Phase        PhaseKind
	PlayersCount int
	PlayersLimit int
}

// List summarizes every live session for the lobby directory.
func (m *Manager) List() []SessionSummary {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	summaries := make([]SessionSummary, 0, len(ids))
	for _, id := range ids {
		ms, err := m.lookup(id)
		if err != nil {
			continue
		}
		ms.mu.Lock()
		summaries = append(summaries, SessionSummary{
			ID:           ms.session.ID,
			Phase:        ms.session.Phase(),
			PlayersCount: len(ms.session.Players),
			PlayersLimit: ms.session.PlayersLimit,
		})
		ms.mu.Unlock()
	}
	return summaries
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/foolgame/durak-server-go/internal/game"
)

// NewPool connects a pgx connection pool and verifies it with a ping.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS matches (
    id          BIGSERIAL PRIMARY KEY,
    session_id  TEXT        NOT NULL,
    winner_id   TEXT        NOT NULL DEFAULT '',
    loser_ids   TEXT[]      NOT NULL DEFAULT '{}',
    draw        BOOLEAN     NOT NULL DEFAULT FALSE,
    finished_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS matches_finished_at_idx ON matches (finished_at DESC);
`

// MatchRecord is one finished match as stored in the history table.
type MatchRecord struct {
	ID         int64
	SessionID  string
	WinnerID   string
	LoserIDs   []string
	Draw       bool
	FinishedAt time.Time
}

// MatchRepository persists finished matches. It implements game.MatchRecorder.
type MatchRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewMatchRepository creates a repository over an established pool.
func NewMatchRepository(pool *pgxpool.Pool, logger *zap.Logger) *MatchRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchRepository{pool: pool, logger: logger}
}

// EnsureSchema creates the matches table if it does not exist yet.
func (r *MatchRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure matches schema: %w", err)
	}
	return nil
}

// RecordMatch inserts one finished match.
func (r *MatchRepository) RecordMatch(ctx context.Context, result game.MatchResult) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO matches (session_id, winner_id, loser_ids, draw, finished_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		result.SessionID, result.WinnerID, result.LoserIDs, result.Draw, result.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	r.logger.Debug("match recorded",
		zap.String("session_id", result.SessionID),
		zap.String("winner_id", result.WinnerID),
	)
	return nil
}

// RecentMatches returns the latest finished matches, newest first.
func (r *MatchRepository) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, winner_id, loser_ids, draw, finished_at
		 FROM matches ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.WinnerID, &rec.LoserIDs, &rec.Draw, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match rows: %w", err)
	}
	return records, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/foolgame/durak-server-go/internal/game"
)

const (
	playerStatsKey = "player:stats:"
	leaderboardKey = "leaderboard:wins"
)

// PlayerStats is the per-player win/loss record kept in redis.
type PlayerStats struct {
	PlayerID     string `json:"player_id"`
	TotalGames   int64  `json:"total_games"`
	Wins         int64  `json:"wins"`
	Losses       int64  `json:"losses"`
	LastPlayedAt int64  `json:"last_played_at"`
}

// LeaderboardEntry is one row of the win leaderboard, best first.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Wins     int64  `json:"wins"`
}

// Leaderboard keeps win counters and a wins-ordered ranking in redis. It
// implements game.MatchRecorder so the session manager can feed it directly.
type Leaderboard struct {
	client *redis.Client
	logger *zap.Logger
}

// NewLeaderboard creates a leaderboard over an established redis client.
func NewLeaderboard(client *redis.Client, logger *zap.Logger) *Leaderboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Leaderboard{client: client, logger: logger}
}

// RecordMatch bumps the winner's and losers' counters. A draw counts a played
// game for every loser and crowns nobody.
func (l *Leaderboard) RecordMatch(ctx context.Context, result game.MatchResult) error {
	if result.WinnerID != "" {
		if err := l.recordOutcome(ctx, result.WinnerID, true); err != nil {
			return err
		}
	}
	for _, id := range result.LoserIDs {
		if err := l.recordOutcome(ctx, id, false); err != nil {
			return err
		}
	}
	l.logger.Debug("leaderboard updated",
		zap.String("session_id", result.SessionID),
		zap.String("winner_id", result.WinnerID),
		zap.Int("losers", len(result.LoserIDs)),
	)
	return nil
}

func (l *Leaderboard) recordOutcome(ctx context.Context, playerID string, won bool) error {
	key := playerStatsKey + playerID

	pipe := l.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "total_games", 1)
	if won {
		pipe.HIncrBy(ctx, key, "wins", 1)
		pipe.ZIncrBy(ctx, leaderboardKey, 1, playerID)
	} else {
		pipe.HIncrBy(ctx, key, "losses", 1)
		// Losing still puts the player on the board.
		pipe.ZAddNX(ctx, leaderboardKey, redis.Z{Score: 0, Member: playerID})
	}
	pipe.HSet(ctx, key, "last_played_at", time.Now().Unix())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record outcome for %s: %w", playerID, err)
	}
	return nil
}

// Stats returns one player's record, or nil when the player has never played.
func (l *Leaderboard) Stats(ctx context.Context, playerID string) (*PlayerStats, error) {
	key := playerStatsKey + playerID
	fields, err := l.client.HGetAll(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("fetch stats for %s: %w", playerID, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	stats := &PlayerStats{PlayerID: playerID}
	for field, dst := range map[string]*int64{
		"total_games":    &stats.TotalGames,
		"wins":           &stats.Wins,
		"losses":         &stats.Losses,
		"last_played_at": &stats.LastPlayedAt,
	} {
		if raw, ok := fields[field]; ok {
			fmt.Sscan(raw, dst)
		}
	}
	return stats, nil
}

// Top returns the best players by win count, rank 1 first.
func (l *Leaderboard) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	results, err := l.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, result := range results {
		id, ok := result.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Rank:     i + 1,
			PlayerID: id,
			Wins:     int64(result.Score),
		})
	}
	return entries, nil
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foolgame/durak-server-go/internal/game"
)

func newTestLeaderboard(t *testing.T) *Leaderboard {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLeaderboard(client, nil)
}

func TestLeaderboardRecordMatch(t *testing.T) {
	lb := newTestLeaderboard(t)
	ctx := context.Background()

	err := lb.RecordMatch(ctx, game.MatchResult{
		SessionID:  "s1",
		WinnerID:   "alice",
		LoserIDs:   []string{"bob", "carol"},
		FinishedAt: time.Now(),
	})
	require.NoError(t, err)

	stats, err := lb.Stats(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.TotalGames)
	assert.Equal(t, int64(1), stats.Wins)
	assert.Zero(t, stats.Losses)
	assert.NotZero(t, stats.LastPlayedAt)

	stats, err = lb.Stats(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.Losses)
	assert.Zero(t, stats.Wins)
}

func TestLeaderboardDrawCrownsNobody(t *testing.T) {
	lb := newTestLeaderboard(t)
	ctx := context.Background()

	err := lb.RecordMatch(ctx, game.MatchResult{
		SessionID:  "s1",
		Draw:       true,
		LoserIDs:   []string{"alice", "bob"},
		FinishedAt: time.Now(),
	})
	require.NoError(t, err)

	top, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2, "losers still appear on the board")
	for _, entry := range top {
		assert.Zero(t, entry.Wins)
	}
}

func TestLeaderboardTopOrdering(t *testing.T) {
	lb := newTestLeaderboard(t)
	ctx := context.Background()

	record := func(winner string, losers ...string) {
		require.NoError(t, lb.RecordMatch(ctx, game.MatchResult{
			SessionID:  "s",
			WinnerID:   winner,
			LoserIDs:   losers,
			FinishedAt: time.Now(),
		}))
	}
	record("alice", "bob")
	record("alice", "bob")
	record("bob", "alice")
	record("carol", "bob")
	record("alice", "carol")

	top, err := lb.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, LeaderboardEntry{Rank: 1, PlayerID: "alice", Wins: 3}, top[0])
	assert.Equal(t, 2, top[1].Rank)

	// The full board includes everyone who has played.
	all, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLeaderboardStatsUnknownPlayer(t *testing.T) {
	lb := newTestLeaderboard(t)

	stats, err := lb.Stats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

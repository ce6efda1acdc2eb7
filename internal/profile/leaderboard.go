package profile

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "leaderboard:highscores"

// Entry is one leaderboard row.
type Entry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Leaderboard mirrors profile high scores into a Redis sorted set for cheap
// top-N reads.
type Leaderboard struct {
	client *redis.Client
}

// NewLeaderboard creates a Redis-backed leaderboard.
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

// Record stores a score, keeping the member's highest value.
func (l *Leaderboard) Record(ctx context.Context, username string, score int) error {
	return l.client.ZAddGT(ctx, leaderboardKey, redis.Z{
		Score:  float64(score),
		Member: username,
	}).Err()
}

// Top returns the best n entries in descending score order.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 10
	}
	results, err := l.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}
	entries := make([]Entry, 0, len(results))
	for _, z := range results {
		username, _ := z.Member.(string)
		entries = append(entries, Entry{Username: username, Score: int(z.Score)})
	}
	return entries, nil
}

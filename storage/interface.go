package storage

import "context"

// MatchStore abstracts persistence for finished matches and the
// leaderboard. Implementations can be swapped for testing.
type MatchStore interface {
	RecordMatch(ctx context.Context, matchID, winnerID, winnerName, loserID, loserName string, winnerScore, loserScore int) error
	ListByPlayerID(ctx context.Context, playerID string) ([]MatchRecord, error)
	ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error)
	Close()
}

// Ensure *Store implements MatchStore at compile time.
var _ MatchStore = (*Store)(nil)

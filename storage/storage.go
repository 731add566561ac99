package storage

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	EloK       = 32
	InitialElo = 1000
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS match_history (
	id UUID PRIMARY KEY,
	played_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	winner_id TEXT NOT NULL,
	loser_id TEXT NOT NULL,
	winner_name TEXT NOT NULL,
	loser_name TEXT NOT NULL,
	winner_score INT NOT NULL,
	loser_score INT NOT NULL,
	winner_elo_before INT,
	winner_elo_after INT,
	loser_elo_before INT,
	loser_elo_after INT
);
CREATE INDEX IF NOT EXISTS idx_match_history_winner ON match_history(winner_id);
CREATE INDEX IF NOT EXISTS idx_match_history_loser ON match_history(loser_id);
CREATE TABLE IF NOT EXISTS player_ratings (
	player_id    TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	elo          INT  NOT NULL DEFAULT 1000,
	wins         INT  NOT NULL DEFAULT 0,
	losses       INT  NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_player_ratings_elo ON player_ratings(elo DESC);
`

// Store persists finished-match results and player ratings. No game
// state is stored: a restart loses nothing but history.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the schema exists. If
// databaseURL is empty, NewStore returns (nil, nil) and no persistence
// occurs; all Store methods are nil-safe.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// computeEloUpdates returns both players' new ratings after the winner
// beat the loser.
func computeEloUpdates(winnerElo, loserElo int) (newWinner, newLoser int) {
	expected := 1 / (1 + math.Pow(10, float64(loserElo-winnerElo)/400))
	delta := EloK * (1 - expected)
	newWinner = winnerElo + int(math.Round(delta))
	newLoser = loserElo - int(math.Round(delta))
	if newLoser < 0 {
		newLoser = 0
	}
	return newWinner, newLoser
}

// RecordMatch updates both players' ratings and inserts one
// match_history row, in a single transaction.
func (s *Store) RecordMatch(ctx context.Context, matchID, winnerID, winnerName, loserID, loserName string, winnerScore, loserScore int) error {
	if s == nil || s.pool == nil {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, id := range []string{winnerID, loserID} {
		if _, err := tx.Exec(ctx,
			`INSERT INTO player_ratings (player_id) VALUES ($1) ON CONFLICT (player_id) DO NOTHING`, id); err != nil {
			return err
		}
	}

	var winnerElo, winnerWins, loserElo, loserLosses int
	if err := tx.QueryRow(ctx, `SELECT elo, wins FROM player_ratings WHERE player_id = $1`, winnerID).Scan(&winnerElo, &winnerWins); err != nil {
		return err
	}
	if err := tx.QueryRow(ctx, `SELECT elo, losses FROM player_ratings WHERE player_id = $1`, loserID).Scan(&loserElo, &loserLosses); err != nil {
		return err
	}

	newWinnerElo, newLoserElo := computeEloUpdates(winnerElo, loserElo)

	if _, err := tx.Exec(ctx,
		`UPDATE player_ratings SET display_name = $1, elo = $2, wins = $3, updated_at = now() WHERE player_id = $4`,
		winnerName, newWinnerElo, winnerWins+1, winnerID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE player_ratings SET display_name = $1, elo = $2, losses = $3, updated_at = now() WHERE player_id = $4`,
		loserName, newLoserElo, loserLosses+1, loserID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO match_history (id, winner_id, loser_id, winner_name, loser_name, winner_score, loser_score,
			winner_elo_before, winner_elo_after, loser_elo_before, loser_elo_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		matchID, winnerID, loserID, winnerName, loserName, winnerScore, loserScore,
		winnerElo, newWinnerElo, loserElo, newLoserElo); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// MatchRecord is one row of a player's match history.
type MatchRecord struct {
	ID          string    `json:"id"`
	PlayedAt    time.Time `json:"playedAt"`
	WinnerID    string    `json:"winnerId"`
	LoserID     string    `json:"loserId"`
	WinnerName  string    `json:"winnerName"`
	LoserName   string    `json:"loserName"`
	WinnerScore int       `json:"winnerScore"`
	LoserScore  int       `json:"loserScore"`
}

// ListByPlayerID returns the matches a player took part in, newest first.
func (s *Store) ListByPlayerID(ctx context.Context, playerID string) ([]MatchRecord, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, played_at, winner_id, loser_id, winner_name, loser_name, winner_score, loser_score
		FROM match_history
		WHERE winner_id = $1 OR loser_id = $1
		ORDER BY played_at DESC
		LIMIT 100`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var r MatchRecord
		if err := rows.Scan(&r.ID, &r.PlayedAt, &r.WinnerID, &r.LoserID, &r.WinnerName, &r.LoserName, &r.WinnerScore, &r.LoserScore); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LeaderboardEntry is one row of the Elo leaderboard.
type LeaderboardEntry struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Elo         int    `json:"elo"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}

// ListLeaderboard returns rated players ordered by Elo descending.
func (s *Store) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, display_name, elo, wins, losses
		FROM player_ratings
		ORDER BY elo DESC, updated_at ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.DisplayName, &e.Elo, &e.Wins, &e.Losses); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

package daily

import (
	"context"
	"database/sql"
)

// Result is one user's finished daily run.
type Result struct {
	UserID      string `json:"userId"`
	Date        string `json:"date"`
	PuzzleIndex int    `json:"puzzleIndex"`
	Score       int    `json:"score"`
	Rank        string `json:"rank"`
	Steps       int    `json:"steps"`
	ElapsedMs   int    `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a finished daily run; a second finish on the same
// date is ignored via UNIQUE(user_id, date).
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, puzzle_index, score, rank, steps, elapsed_ms)
		 VALUES(?,?,?,?,?,?,?)`,
		r.UserID, r.Date, r.PuzzleIndex, r.Score, r.Rank, r.Steps, r.ElapsedMs,
	)
	return err
}

type LBRow struct {
	UserID    string `json:"userId"`
	Score     int    `json:"score"`
	Rank      string `json:"rank"`
	Steps     int    `json:"steps"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Leaderboard returns the day's top results: highest score first, fewest
// steps breaking ties, earliest finish breaking those.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, score, rank, steps, elapsed_ms
		 FROM daily_results
		 WHERE date=?
		 ORDER BY score DESC, steps ASC, created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LBRow
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Score, &r.Rank, &r.Steps, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

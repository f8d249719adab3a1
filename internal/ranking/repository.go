package ranking

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sqlc-dev/pqtype"

	"github.com/mcdev12/tileduel/internal/models"
)

// Row is one ranking insertion: the winner of a completed game in a
// (type, size) bucket. Scoreboard carries the full final score map as
// jsonb for later inspection; it may be nil.
type Row struct {
	GameType   models.GameType
	BoardSize  int
	Winner     string
	Score      int
	PlayedAt   time.Time
	Scoreboard json.RawMessage
}

// Entry is one row of a ranking listing.
type Entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Repository persists rankings in the Rankings table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a ranking repository over db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one ranking row inside a transaction.
func (r *Repository) Insert(ctx context.Context, row Row) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ranking transaction: %w", err)
	}

	scoreboard := pqtype.NullRawMessage{
		RawMessage: row.Scoreboard,
		Valid:      row.Scoreboard != nil,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO Rankings (gametype, boardsize, name, score, playedat, scoreboard)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(row.GameType), row.BoardSize, row.Winner, row.Score, row.PlayedAt, scoreboard,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert ranking row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ranking row: %w", err)
	}
	return nil
}

// TopN returns the best limit scores for a bucket, highest first.
func (r *Repository) TopN(ctx context.Context, gameType models.GameType, boardSize, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, score FROM Rankings
		 WHERE gametype = $1 AND boardsize = $2
		 ORDER BY score DESC LIMIT $3`,
		string(gameType), boardSize, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Score); err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ranking rows: %w", err)
	}
	return out, nil
}

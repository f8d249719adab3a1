package questions

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"

	"github.com/mcdev12/tileduel/internal/models"
)

// bankTables maps question-bank game types to their table. Doubling as a
// whitelist keeps the interpolated identifier safe.
var bankTables = map[models.GameType]string{
	models.GameTypeAntonyms:    "Antonyms",
	models.GameTypeSynonyms:    "Synonyms",
	models.GameTypeTranslation: "Translation",
}

// Bank reads word questions from per-category Postgres tables with columns
// (id, question, answer), ids dense from 1.
type Bank struct {
	db *sql.DB
}

// NewBank creates a question bank over db.
func NewBank(db *sql.DB) *Bank {
	return &Bank{db: db}
}

// Count returns the number of questions available for gameType.
func (b *Bank) Count(ctx context.Context, gameType models.GameType) (int, error) {
	table, ok := bankTables[gameType]
	if !ok {
		return 0, fmt.Errorf("no question table for game type %q", gameType)
	}

	var count int
	if err := b.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s questions: %w", gameType, err)
	}
	return count, nil
}

// FetchByIDs returns the question rows for the given ids.
func (b *Bank) FetchByIDs(ctx context.Context, gameType models.GameType, ids []int) ([]models.Question, error) {
	table, ok := bankTables[gameType]
	if !ok {
		return nil, fmt.Errorf("no question table for game type %q", gameType)
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(
		"SELECT question, answer FROM %s WHERE id IN (%s)",
		table, strings.Join(placeholders, ", "),
	)
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s questions: %w", gameType, err)
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.Question, &q.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read question rows: %w", err)
	}
	return out, nil
}

// Questions samples n distinct questions for gameType.
func (b *Bank) Questions(ctx context.Context, gameType models.GameType, n int) ([]models.Question, error) {
	count, err := b.Count(ctx, gameType)
	if err != nil {
		return nil, err
	}
	if count < n {
		return nil, fmt.Errorf("question bank for %s holds %d questions, need %d", gameType, count, n)
	}
	return b.FetchByIDs(ctx, gameType, SampleIDs(n, count))
}

// SampleIDs draws n distinct ids uniformly without replacement from
// [1, count] by rejection, matching the sparse-draw pattern the small n
// values here make cheap.
func SampleIDs(n, count int) []int {
	seen := make(map[int]bool, n)
	out := make([]int, 0, n)
	for len(out) < n {
		id := 1 + rand.Intn(count)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

package questions

import (
	"context"
	"fmt"

	"github.com/mcdev12/tileduel/internal/models"
)

// WordBank is what the source needs from the question bank. Nil is allowed
// when only arithmetic games are served.
type WordBank interface {
	Questions(ctx context.Context, gameType models.GameType, n int) ([]models.Question, error)
}

// Source resolves the question set for a game: arithmetic questions are
// generated locally, word categories come from the bank. One question per
// board cell.
type Source struct {
	bank WordBank
}

// NewSource creates a question source backed by bank.
func NewSource(bank WordBank) *Source {
	return &Source{bank: bank}
}

// QuestionsFor returns side*side questions for a game of the given type and
// board size.
func (s *Source) QuestionsFor(ctx context.Context, gameType models.GameType, boardSize int) ([]models.Question, error) {
	side := models.BoardSide(boardSize)
	n := side * side

	if !gameType.UsesQuestionBank() {
		return GenerateArithmetic(n), nil
	}
	if s.bank == nil {
		return nil, fmt.Errorf("no question bank configured for game type %q", gameType)
	}
	return s.bank.Questions(ctx, gameType, n)
}

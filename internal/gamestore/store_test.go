package gamestore

import (
	"errors"
	"testing"

	"github.com/mcdev12/tileduel/internal/models"
)

func newSession(id int64) *models.GameSession {
	side := models.BoardSide(1)
	return &models.GameSession{
		ID:             id,
		GameType:       models.GameTypeArithmetic,
		BoardSize:      1,
		Players:        [2]models.PlayerIdentity{{Name: "player_one"}, {Name: "player_two"}},
		Board:          models.NewBoard(side),
		RemainingCells: side * side,
		Scores:         map[string]int{"player_one": 0, "player_two": 0},
		Phase:          models.PhaseAwaitingConnections,
	}
}

func TestAllocateIDMonotonic(t *testing.T) {
	s := New()
	first := s.AllocateID()
	if first != 1000 {
		t.Fatalf("first id = %d, want 1000", first)
	}
	for i := int64(1); i <= 3; i++ {
		if got := s.AllocateID(); got != first+i {
			t.Fatalf("id %d = %d, want %d", i, got, first+i)
		}
	}
}

func TestWithUnknownGame(t *testing.T) {
	s := New()
	err := s.With(1234, func(sess *models.GameSession) error { return nil })
	if !errors.Is(err, models.ErrUnknownGame) {
		t.Fatalf("With on missing id = %v, want ErrUnknownGame", err)
	}
}

func TestCreateWithRemove(t *testing.T) {
	s := New()
	id := s.AllocateID()
	s.Create(newSession(id))

	if !s.Has(id) {
		t.Fatal("Has should report the created session")
	}

	err := s.With(id, func(sess *models.GameSession) error {
		sess.Scores["player_one"] = 42
		return nil
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}

	var got int
	if err := s.With(id, func(sess *models.GameSession) error {
		got = sess.Scores["player_one"]
		return nil
	}); err != nil {
		t.Fatalf("With failed: %v", err)
	}
	if got != 42 {
		t.Fatalf("score = %d, want 42", got)
	}

	s.Remove(id)
	if s.Has(id) {
		t.Fatal("Has should report false after Remove")
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}

	// Removing again is a no-op.
	s.Remove(id)
}

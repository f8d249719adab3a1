package models

import (
	"time"
)

// GameType defines the question category a game is played with.
type GameType string

const (
	GameTypeArithmetic  GameType = "arithmetic"
	GameTypeAntonyms    GameType = "antonyms"
	GameTypeSynonyms    GameType = "synonyms"
	GameTypeTranslation GameType = "translation"
)

// IsValid reports whether t is a known game type.
func (t GameType) IsValid() bool {
	switch t {
	case GameTypeArithmetic, GameTypeAntonyms, GameTypeSynonyms, GameTypeTranslation:
		return true
	}
	return false
}

// UsesQuestionBank reports whether questions for t come from the database
// rather than the built-in generator.
func (t GameType) UsesQuestionBank() bool {
	return t != GameTypeArithmetic
}

// Phase defines the lifecycle stage of a game session.
type Phase string

const (
	PhaseAwaitingConnections Phase = "AWAITING_CONNECTIONS"
	PhaseQuestionsAssigned   Phase = "QUESTIONS_ASSIGNED"
	PhaseCountdown           Phase = "COUNTDOWN"
	PhaseActive              Phase = "ACTIVE"
	PhaseFinished            Phase = "FINISHED"
)

// CanTransitionTo reports whether next is a legal successor of p.
// PhaseFinished is reachable from every non-terminal phase so that a game
// aborted mid-countdown can still be torn down; it has no successors.
func (p Phase) CanTransitionTo(next Phase) bool {
	if p == PhaseFinished {
		return false
	}
	if next == PhaseFinished {
		return true
	}
	switch p {
	case PhaseAwaitingConnections:
		return next == PhaseQuestionsAssigned
	case PhaseQuestionsAssigned:
		return next == PhaseCountdown
	case PhaseCountdown:
		return next == PhaseActive
	}
	return false
}

// MinBoardSize and MaxBoardSize bound the size parameter accepted on join.
// The board side is always size+2, so boards range from 3x3 to 5x5.
const (
	MinBoardSize = 1
	MaxBoardSize = 3
)

// BoardSide returns the side length of the grid for a given board size.
func BoardSide(boardSize int) int {
	return boardSize + 2
}

// PlayerIdentity identifies a player within a single game. Key is the
// opaque per-game token minted on join; it is distinct from the account
// password and regenerated on every join.
type PlayerIdentity struct {
	Name string
	Key  string
}

// WaitingGame is a matchmaking queue entry awaiting a second player.
type WaitingGame struct {
	ID          int64
	GameType    GameType
	BoardSize   int
	FirstPlayer PlayerIdentity
	CreatedAt   time.Time
}

// GameSession is a promoted, live or finished game. All mutable fields are
// guarded by the game store's per-session lock; nothing outside the store
// may retain a reference across calls.
type GameSession struct {
	ID        int64
	GameType  GameType
	BoardSize int
	Players   [2]PlayerIdentity
	Board     *Board
	// RemainingCells always equals the number of Active cells on Board.
	RemainingCells  int
	Scores          map[string]int
	LastMoveInstant map[string]time.Time
	Phase           Phase
	Questions       []Question
}

// HasPlayer reports whether name participates in the session.
func (s *GameSession) HasPlayer(name string) bool {
	return s.Players[0].Name == name || s.Players[1].Name == name
}

// PlayerNames returns both participant names in join order.
func (s *GameSession) PlayerNames() []string {
	return []string{s.Players[0].Name, s.Players[1].Name}
}

// ScoresSnapshot returns a copy of the score map safe to use outside the
// session lock.
func (s *GameSession) ScoresSnapshot() map[string]int {
	out := make(map[string]int, len(s.Scores))
	for name, score := range s.Scores {
		out[name] = score
	}
	return out
}

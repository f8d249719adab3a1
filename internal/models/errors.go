package models

import "errors"

// Error taxonomy shared by the coordinator components. Every failure
// surfaced to a caller wraps exactly one of these sentinels.
var (
	// ErrAuthMismatch covers bad credentials and bad per-game keys.
	ErrAuthMismatch = errors.New("authentication error")

	// ErrUnknownGame means the game id denotes neither a waiting nor a
	// running game.
	ErrUnknownGame = errors.New("unknown game")

	// ErrNotInWaitingState means a leave was attempted after the game had
	// already been promoted to a running session.
	ErrNotInWaitingState = errors.New("game is no longer waiting for players")

	// ErrAlreadyCleared is a non-fatal rejection of a move on a cleared
	// cell. It is reported to the requester only and never broadcast.
	ErrAlreadyCleared = errors.New("tile already cleared")

	// ErrOutOfRange means the move coordinates fall outside the board.
	ErrOutOfRange = errors.New("coordinates out of range")

	// ErrSelfMatch means a player tried to join a bucket in which their own
	// waiting entry is still unpromoted.
	ErrSelfMatch = errors.New("already waiting for an opponent in this bucket")

	// ErrPersistenceFailure means the ranking write failed. The finished
	// session is deliberately retained so teardown can be retried.
	ErrPersistenceFailure = errors.New("failed to persist ranking")
)

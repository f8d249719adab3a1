package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/gamestore"
	"github.com/mcdev12/tileduel/internal/models"
)

// Store is what the finalizer needs from the ranking repository.
type Store interface {
	Insert(ctx context.Context, row Row) error
}

// EventPublisher is what the finalizer needs from the completion event
// publisher. A nil publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, event CompletedEvent) error
}

// FinalizeRequest packages everything the finalizer needs from a finished
// game. The broadcast engine has already delivered the terminal payload and
// closed both streams by the time Finalize runs.
type FinalizeRequest struct {
	GameID         int64
	GameType       models.GameType
	BoardSize      int
	Winner         string
	WinnerScore    int
	WinnerLastMove time.Time
	Scores         map[string]int
}

// Finalizer persists the winner of a finished game and then evicts the
// session. On a persistence failure the session is deliberately kept so
// teardown can be retried; losing score data is worse than late cleanup.
type Finalizer struct {
	repo   Store
	events EventPublisher
	store  *gamestore.Store
}

// NewFinalizer creates a finalizer. events may be nil.
func NewFinalizer(repo Store, events EventPublisher, store *gamestore.Store) *Finalizer {
	return &Finalizer{
		repo:   repo,
		events: events,
		store:  store,
	}
}

// Finalize writes the ranking row for req and removes the session from the
// store on success. Returns models.ErrPersistenceFailure (wrapped) when the
// write fails.
func (f *Finalizer) Finalize(ctx context.Context, req FinalizeRequest) error {
	scoreboard, err := json.Marshal(req.Scores)
	if err != nil {
		scoreboard = nil
	}

	row := Row{
		GameType:   req.GameType,
		BoardSize:  req.BoardSize,
		Winner:     req.Winner,
		Score:      req.WinnerScore,
		PlayedAt:   req.WinnerLastMove,
		Scoreboard: scoreboard,
	}
	if err := f.repo.Insert(ctx, row); err != nil {
		log.Error().Err(err).
			Int64("game_id", req.GameID).
			Str("winner", req.Winner).
			Msg("ranking write failed, session retained for retry")
		return fmt.Errorf("%w: %v", models.ErrPersistenceFailure, err)
	}

	f.store.Remove(req.GameID)

	log.Info().
		Int64("game_id", req.GameID).
		Str("winner", req.Winner).
		Int("score", req.WinnerScore).
		Msg("game finalized")

	if f.events != nil {
		event := CompletedEvent{
			EventID:     uuid.New(),
			GameID:      req.GameID,
			GameType:    req.GameType,
			BoardSize:   req.BoardSize,
			Winner:      req.Winner,
			Scores:      req.Scores,
			CompletedAt: req.WinnerLastMove,
		}
		if err := f.events.Publish(ctx, event); err != nil {
			log.Error().Err(err).Int64("game_id", req.GameID).Msg("failed to publish completion event")
		}
	}
	return nil
}

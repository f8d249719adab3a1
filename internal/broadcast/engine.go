package broadcast

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/gamestore"
	"github.com/mcdev12/tileduel/internal/models"
	"github.com/mcdev12/tileduel/internal/session"
)

// ChannelRegistry is what the engine needs from the session registry.
type ChannelRegistry interface {
	Register(name string, ch *session.Channel)
	Channel(name string) (*session.Channel, bool)
	Deregister(name string)
	DropKey(name string)
}

// QuestionSource provides the question set assigned to a session once both
// players are connected.
type QuestionSource interface {
	QuestionsFor(ctx context.Context, gameType models.GameType, boardSize int) ([]models.Question, error)
}

// CountdownStarter starts the pre-game countdown for a session. Implemented
// by the countdown scheduler and wired in after construction.
type CountdownStarter interface {
	Start(gameID int64)
}

// Engine serializes game state into frames and fans them out to each
// participant's push channel. It also owns the readiness check that fires
// after every channel registration.
type Engine struct {
	registry  ChannelRegistry
	store     *gamestore.Store
	questions QuestionSource
	countdown CountdownStarter
}

// NewEngine creates a broadcast engine. The countdown starter is attached
// separately via SetCountdownStarter because the scheduler broadcasts its
// ticks back through the engine.
func NewEngine(registry ChannelRegistry, store *gamestore.Store, questions QuestionSource) *Engine {
	return &Engine{
		registry:  registry,
		store:     store,
		questions: questions,
	}
}

// SetCountdownStarter attaches the countdown scheduler.
func (e *Engine) SetCountdownStarter(starter CountdownStarter) {
	e.countdown = starter
}

// RegisterChannel attaches a push channel for one participant of gameID and
// runs the readiness check: once every scored player has a channel, the
// question set is assigned and the countdown starts. Until then the lone
// connected player just receives the current scores.
func (e *Engine) RegisterChannel(ctx context.Context, gameID int64, name string, ch *session.Channel) error {
	err := e.store.With(gameID, func(sess *models.GameSession) error {
		if !sess.HasPlayer(name) {
			return models.ErrAuthMismatch
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.registry.Register(name, ch)
	e.CheckReadiness(ctx, gameID)
	return nil
}

// CheckReadiness advances a session out of AwaitingConnections when every
// player in its score map has a registered channel, assigning questions and
// starting the countdown. Safe to call repeatedly; only the first complete
// registration triggers the transition.
func (e *Engine) CheckReadiness(ctx context.Context, gameID int64) {
	var (
		scores map[string]int
		ready  bool
	)
	err := e.store.With(gameID, func(sess *models.GameSession) error {
		scores = sess.ScoresSnapshot()
		if sess.Phase != models.PhaseAwaitingConnections {
			return nil
		}
		for name := range sess.Scores {
			if _, ok := e.registry.Channel(name); !ok {
				return nil
			}
		}
		sess.Phase = models.PhaseQuestionsAssigned
		ready = true
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Int64("game_id", gameID).Msg("readiness check on unknown game")
		return
	}

	// Keep whoever is connected informed either way.
	e.Send(gameID, ScoresPayload(scores))

	if !ready {
		return
	}
	e.assignQuestions(ctx, gameID)
}

// assignQuestions fetches the question set, stores it on the session,
// broadcasts it and hands the session to the countdown scheduler.
func (e *Engine) assignQuestions(ctx context.Context, gameID int64) {
	var (
		gameType  models.GameType
		boardSize int
	)
	if err := e.store.With(gameID, func(sess *models.GameSession) error {
		gameType = sess.GameType
		boardSize = sess.BoardSize
		return nil
	}); err != nil {
		return
	}

	// The fetch may hit the question bank; no session lock is held here.
	questions, err := e.questions.QuestionsFor(ctx, gameType, boardSize)
	if err != nil {
		log.Error().Err(err).
			Int64("game_id", gameID).
			Str("game_type", string(gameType)).
			Msg("failed to assign question set")
		return
	}

	if err := e.store.With(gameID, func(sess *models.GameSession) error {
		if sess.Phase != models.PhaseQuestionsAssigned {
			return models.ErrUnknownGame
		}
		sess.Questions = questions
		sess.Phase = models.PhaseCountdown
		return nil
	}); err != nil {
		log.Warn().Err(err).Int64("game_id", gameID).Msg("session changed during question assignment")
		return
	}

	e.Send(gameID, QuestionsPayload(questions))

	log.Info().
		Int64("game_id", gameID).
		Int("questions", len(questions)).
		Msg("question set assigned")

	e.countdown.Start(gameID)
}

// Send serializes payload once and writes it to every participant of
// gameID that currently has a registered channel. A terminal payload closes
// and deregisters each channel after the write and drops the players' keys.
func (e *Engine) Send(gameID int64, payload Payload) {
	var names []string
	if err := e.store.With(gameID, func(sess *models.GameSession) error {
		names = sess.PlayerNames()
		return nil
	}); err != nil {
		return
	}
	e.sendTo(gameID, names, payload)
}

// WaitingCreated implements matchmaking.Notifier: a freshly queued player
// that already has a stream open just sees their zero score.
func (e *Engine) WaitingCreated(g *models.WaitingGame) {
	e.SendWaiting(g)
}

// SessionPromoted implements matchmaking.Notifier: broadcast scores to
// whoever is already connected. The readiness check cannot complete yet
// because the second player receives the game id in the same response that
// lets them connect.
func (e *Engine) SessionPromoted(gameID int64) {
	e.CheckReadiness(context.Background(), gameID)
}

// SendWaiting pushes the solo scoreboard of an unpromoted game to its first
// player, if connected: it tells them they are still waiting.
func (e *Engine) SendWaiting(g *models.WaitingGame) {
	e.sendTo(g.ID, []string{g.FirstPlayer.Name}, ScoresPayload(map[string]int{g.FirstPlayer.Name: 0}))
}

func (e *Engine) sendTo(gameID int64, names []string, payload Payload) {
	frame, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Int64("game_id", gameID).Msg("failed to marshal payload")
		return
	}

	for _, name := range names {
		ch, ok := e.registry.Channel(name)
		if !ok {
			continue
		}
		if !ch.Send(frame) {
			// Bounded outbound queue: a slow client loses frames rather
			// than stalling the opponent.
			log.Warn().
				Int64("game_id", gameID).
				Str("player", name).
				Msg("push channel full, dropping frame")
		}
		if payload.Terminal() {
			e.registry.Deregister(name)
			e.registry.DropKey(name)
			ch.Close()
		}
	}

	log.Debug().
		Int64("game_id", gameID).
		Int("recipients", len(names)).
		Bool("terminal", payload.Terminal()).
		Msg("payload broadcast")
}

package coordinator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/arbiter"
	"github.com/mcdev12/tileduel/internal/broadcast"
	"github.com/mcdev12/tileduel/internal/countdown"
	"github.com/mcdev12/tileduel/internal/gamestore"
	"github.com/mcdev12/tileduel/internal/matchmaking"
	"github.com/mcdev12/tileduel/internal/models"
	"github.com/mcdev12/tileduel/internal/ranking"
	"github.com/mcdev12/tileduel/internal/session"
)

// Accounts is what the coordinator needs from the account collaborator.
type Accounts interface {
	VerifyCredentials(ctx context.Context, name, pass string) error
}

// Coordinator is the inbound API of the match coordinator, called by the
// routing layer: join, leave, notify (a tile clear) and update (opening the
// push stream). It owns the flow between matchmaking, the arbiter, the
// broadcast engine, the countdown and the finalizer; the callers only ever
// see game ids and keys.
type Coordinator struct {
	accounts  Accounts
	queue     *matchmaking.Queue
	store     *gamestore.Store
	registry  *session.Registry
	arbiter   *arbiter.Arbiter
	engine    *broadcast.Engine
	countdown *countdown.Scheduler
	finalizer *ranking.Finalizer
}

// New wires a coordinator from its collaborators.
func New(
	accounts Accounts,
	queue *matchmaking.Queue,
	store *gamestore.Store,
	registry *session.Registry,
	arb *arbiter.Arbiter,
	engine *broadcast.Engine,
	cd *countdown.Scheduler,
	finalizer *ranking.Finalizer,
) *Coordinator {
	return &Coordinator{
		accounts:  accounts,
		queue:     queue,
		store:     store,
		registry:  registry,
		arbiter:   arb,
		engine:    engine,
		countdown: cd,
		finalizer: finalizer,
	}
}

// Join authenticates the player and matches them into a game.
func (c *Coordinator) Join(ctx context.Context, name, pass string, gameType models.GameType, boardSize int) (matchmaking.JoinResult, error) {
	if !gameType.IsValid() {
		return matchmaking.JoinResult{}, fmt.Errorf("invalid game type %q", gameType)
	}
	if boardSize < models.MinBoardSize || boardSize > models.MaxBoardSize {
		return matchmaking.JoinResult{}, fmt.Errorf("invalid board size %d", boardSize)
	}
	if err := c.accounts.VerifyCredentials(ctx, name, pass); err != nil {
		return matchmaking.JoinResult{}, err
	}
	return c.queue.Join(name, gameType, boardSize)
}

// Leave withdraws a waiting game before a match.
func (c *Coordinator) Leave(ctx context.Context, name, key string, gameID int64) error {
	return c.queue.Leave(name, gameID, key)
}

// Notify applies one tile-clear request. Accepted moves (including the
// finishing one) are broadcast to both players; a rejected move is only
// reported back to the requester.
func (c *Coordinator) Notify(ctx context.Context, name, key string, gameID int64, row, col int) error {
	res, err := c.arbiter.ApplyMove(gameID, name, key, row, col)
	if err != nil {
		return err
	}

	payload := broadcast.Payload{
		Move:   &broadcast.Move{Name: res.Player, Row: res.Row, Col: res.Col},
		Scores: res.Scores,
		Winner: res.Winner,
	}
	c.engine.Send(gameID, payload)

	if !res.Finished {
		return nil
	}

	// The terminal broadcast already closed both streams; tear down the
	// countdown (no-op if it already ran out) and persist the winner.
	c.countdown.Cancel(gameID)
	return c.finalizer.Finalize(ctx, ranking.FinalizeRequest{
		GameID:         res.GameID,
		GameType:       res.GameType,
		BoardSize:      res.BoardSize,
		Winner:         res.Winner,
		WinnerScore:    res.WinnerScore,
		WinnerLastMove: res.WinnerLastMove,
		Scores:         res.Scores,
	})
}

// Update opens the push stream for a player: it returns the channel the
// transport must drain until it is closed by game completion. Registration
// triggers the readiness check for running games; a still-waiting first
// player just gets their solo scoreboard.
func (c *Coordinator) Update(ctx context.Context, name, key string, gameID int64) (*session.Channel, error) {
	if !c.registry.MatchKey(name, key) {
		return nil, models.ErrAuthMismatch
	}

	ch := session.NewChannel()

	if c.store.Has(gameID) {
		if err := c.engine.RegisterChannel(ctx, gameID, name, ch); err != nil {
			return nil, err
		}
		return ch, nil
	}

	if g, ok := c.queue.Waiting(gameID); ok {
		if g.FirstPlayer.Name != name {
			return nil, models.ErrAuthMismatch
		}
		c.registry.Register(name, ch)
		c.engine.SendWaiting(g)
		log.Debug().Int64("game_id", gameID).Str("player", name).Msg("stream opened while waiting for opponent")
		return ch, nil
	}

	return nil, models.ErrUnknownGame
}

// Stats reports coordinator occupancy for the health endpoint.
func (c *Coordinator) Stats() map[string]any {
	return map[string]any{
		"running_games": c.store.Len(),
		"waiting_games": c.queue.WaitingCount(),
	}
}

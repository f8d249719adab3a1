package matchmaking

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/gamestore"
	"github.com/mcdev12/tileduel/internal/models"
	"github.com/mcdev12/tileduel/internal/session"
)

// Notifier is notified of queue transitions so connected players can be
// kept up to date. Implemented by the broadcast engine.
type Notifier interface {
	// WaitingCreated fires when a player starts waiting for an opponent.
	WaitingCreated(g *models.WaitingGame)
	// SessionPromoted fires when a waiting game becomes a running session.
	SessionPromoted(gameID int64)
}

// JoinResult carries what a joining player needs to continue: the game id
// to reference and the per-game key authenticating every later action.
type JoinResult struct {
	GameID int64
	Key    string
}

// Queue holds games awaiting a second player, keyed by game type and board
// size. Join and Leave are serialized process-wide so two players joining
// the same bucket simultaneously can never double-match.
type Queue struct {
	store    *gamestore.Store
	registry *session.Registry
	notifier Notifier
	clock    clockwork.Clock

	mu      sync.Mutex
	waiting []*models.WaitingGame
}

// NewQueue creates an empty matchmaking queue.
func NewQueue(store *gamestore.Store, registry *session.Registry, notifier Notifier, clock clockwork.Clock) *Queue {
	return &Queue{
		store:    store,
		registry: registry,
		notifier: notifier,
		clock:    clock,
	}
}

// Join matches name into a game of the given type and size. If a compatible
// waiting game exists it is promoted to a running session with name as the
// second player; otherwise a new waiting entry is created. Either way a
// fresh per-game key is minted for name.
func (q *Queue) Join(name string, gameType models.GameType, boardSize int) (JoinResult, error) {
	q.mu.Lock()

	for i, g := range q.waiting {
		if g.GameType != gameType || g.BoardSize != boardSize {
			continue
		}
		if g.FirstPlayer.Name == name {
			q.mu.Unlock()
			log.Warn().
				Str("player", name).
				Str("game_type", string(gameType)).
				Int("board_size", boardSize).
				Msg("rejected self-match join")
			return JoinResult{}, models.ErrSelfMatch
		}

		// First match by queue order wins.
		q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
		q.mu.Unlock()

		key := q.registry.MintKey(name)
		sess := q.promote(g, models.PlayerIdentity{Name: name, Key: key})
		q.store.Create(sess)
		q.notifier.SessionPromoted(sess.ID)

		log.Info().
			Int64("game_id", g.ID).
			Str("player", name).
			Str("opponent", g.FirstPlayer.Name).
			Msg("matched into waiting game")
		return JoinResult{GameID: g.ID, Key: key}, nil
	}

	// No compatible game: start waiting for an opponent.
	key := q.registry.MintKey(name)
	g := &models.WaitingGame{
		ID:          q.store.AllocateID(),
		GameType:    gameType,
		BoardSize:   boardSize,
		FirstPlayer: models.PlayerIdentity{Name: name, Key: key},
		CreatedAt:   q.clock.Now(),
	}
	q.waiting = append(q.waiting, g)
	q.mu.Unlock()

	q.notifier.WaitingCreated(g)

	log.Info().
		Int64("game_id", g.ID).
		Str("player", name).
		Str("game_type", string(gameType)).
		Int("board_size", boardSize).
		Msg("waiting for an opponent")
	return JoinResult{GameID: g.ID, Key: key}, nil
}

// promote builds the running session for a matched pair. Scores start at
// zero and both decay clocks start at the promotion instant, so each
// player's first clear is scored against time since match start.
func (q *Queue) promote(g *models.WaitingGame, second models.PlayerIdentity) *models.GameSession {
	side := models.BoardSide(g.BoardSize)
	now := q.clock.Now()
	return &models.GameSession{
		ID:             g.ID,
		GameType:       g.GameType,
		BoardSize:      g.BoardSize,
		Players:        [2]models.PlayerIdentity{g.FirstPlayer, second},
		Board:          models.NewBoard(side),
		RemainingCells: side * side,
		Scores: map[string]int{
			g.FirstPlayer.Name: 0,
			second.Name:        0,
		},
		LastMoveInstant: map[string]time.Time{
			g.FirstPlayer.Name: now,
			second.Name:        now,
		},
		Phase: models.PhaseAwaitingConnections,
	}
}

// Leave withdraws a waiting game before a match. Only the queued first
// player may leave, and only while the game has not been promoted.
func (q *Queue) Leave(name string, gameID int64, key string) error {
	q.mu.Lock()
	for i, g := range q.waiting {
		if g.ID != gameID {
			continue
		}
		if g.FirstPlayer.Name != name || g.FirstPlayer.Key != key {
			q.mu.Unlock()
			return models.ErrAuthMismatch
		}
		q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
		q.mu.Unlock()

		q.registry.DropKey(name)
		if ch, ok := q.registry.Channel(name); ok {
			q.registry.Deregister(name)
			ch.Close()
		}

		log.Info().Int64("game_id", gameID).Str("player", name).Msg("left waiting game")
		return nil
	}
	q.mu.Unlock()

	if q.store.Has(gameID) {
		return models.ErrNotInWaitingState
	}
	return models.ErrUnknownGame
}

// Waiting returns the waiting entry for gameID, if any.
func (q *Queue) Waiting(gameID int64) (*models.WaitingGame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, g := range q.waiting {
		if g.ID == gameID {
			return g, true
		}
	}
	return nil, false
}

// WaitingCount returns the number of unmatched entries, for stats.
func (q *Queue) WaitingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

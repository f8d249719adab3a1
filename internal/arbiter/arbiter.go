package arbiter

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/gamestore"
	"github.com/mcdev12/tileduel/internal/models"
)

// DefaultDecayMillis is the time constant of the score decay curve: a clear
// is worth floor(1000 * e^(-elapsedMillis/DefaultDecayMillis)) points.
const DefaultDecayMillis = 10000

// KeyMatcher is what the arbiter needs from the session registry.
type KeyMatcher interface {
	MatchKey(name, key string) bool
}

// Arbiter validates and applies tile-clear requests against running
// sessions, advancing scores and detecting termination.
type Arbiter struct {
	store       *gamestore.Store
	registry    KeyMatcher
	clock       clockwork.Clock
	decayMillis float64
}

// NewArbiter creates an arbiter with the default decay constant.
func NewArbiter(store *gamestore.Store, registry KeyMatcher, clock clockwork.Clock) *Arbiter {
	return NewArbiterDecay(store, registry, clock, DefaultDecayMillis)
}

// NewArbiterDecay creates an arbiter with an explicit decay constant in
// milliseconds.
func NewArbiterDecay(store *gamestore.Store, registry KeyMatcher, clock clockwork.Clock, decayMillis int) *Arbiter {
	return &Arbiter{
		store:       store,
		registry:    registry,
		clock:       clock,
		decayMillis: float64(decayMillis),
	}
}

// MoveResult describes an accepted move. Maps and times are snapshots safe
// to use outside the session lock.
type MoveResult struct {
	GameID     int64
	GameType   models.GameType
	BoardSize  int
	Player     string
	Row        int // 1-based, as reported to clients
	Col        int
	ScoreDelta int
	Scores     map[string]int
	Finished   bool
	// Winner, WinnerScore and WinnerLastMove are set only when Finished.
	Winner         string
	WinnerScore    int
	WinnerLastMove time.Time
}

// ApplyMove validates a clear request for the 1-based cell (row, col) and,
// if the cell is still active, clears it and scores the player. The second
// clear of a cell fails with models.ErrAlreadyCleared, which is non-fatal:
// it must be reported to the requester and never broadcast.
func (a *Arbiter) ApplyMove(gameID int64, player, key string, row, col int) (*MoveResult, error) {
	if !a.registry.MatchKey(player, key) {
		return nil, models.ErrAuthMismatch
	}

	var res *MoveResult
	err := a.store.With(gameID, func(sess *models.GameSession) error {
		if !sess.HasPlayer(player) {
			return models.ErrAuthMismatch
		}
		if !sess.Board.InBounds(row-1, col-1) {
			return models.ErrOutOfRange
		}
		if !sess.Board.Clear(row-1, col-1) {
			return models.ErrAlreadyCleared
		}

		sess.RemainingCells--

		now := a.clock.Now()
		delta := a.scoreDelta(now.Sub(sess.LastMoveInstant[player]))
		sess.Scores[player] += delta
		sess.LastMoveInstant[player] = now

		res = &MoveResult{
			GameID:     gameID,
			GameType:   sess.GameType,
			BoardSize:  sess.BoardSize,
			Player:     player,
			Row:        row,
			Col:        col,
			ScoreDelta: delta,
			Scores:     sess.ScoresSnapshot(),
		}

		if sess.RemainingCells == 0 {
			winner := findWinner(sess, player)
			sess.Phase = models.PhaseFinished
			res.Finished = true
			res.Winner = winner
			res.WinnerScore = sess.Scores[winner]
			res.WinnerLastMove = sess.LastMoveInstant[winner]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	evt := log.Info().
		Int64("game_id", gameID).
		Str("player", player).
		Int("row", row).
		Int("col", col).
		Int("delta", res.ScoreDelta)
	if res.Finished {
		evt = evt.Str("winner", res.Winner)
	}
	evt.Msg("move accepted")

	return res, nil
}

// scoreDelta rewards fast consecutive responses: full value at zero elapsed
// time, decaying exponentially with the configured time constant.
func (a *Arbiter) scoreDelta(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	return int(math.Floor(1000 * math.Exp(-float64(elapsed.Milliseconds())/a.decayMillis)))
}

// findWinner applies the finishing rule: the player who cleared the last
// tile wins unless the opponent's score is greater or equal, in which case
// the opponent wins. Ties favor the non-finishing player.
func findWinner(sess *models.GameSession, finisher string) string {
	finisherScore := sess.Scores[finisher]
	for name, score := range sess.Scores {
		if name != finisher && score >= finisherScore {
			return name
		}
	}
	return finisher
}

package countdown

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/broadcast"
	"github.com/mcdev12/tileduel/internal/gamestore"
	"github.com/mcdev12/tileduel/internal/models"
)

const (
	// DefaultStart is the first tick value. The full sequence is
	// DefaultStart..0 inclusive, one tick per interval.
	DefaultStart = 5

	// DefaultInterval is the spacing between ticks.
	DefaultInterval = time.Second
)

// Broadcaster is what the scheduler needs from the broadcast engine.
type Broadcaster interface {
	Send(gameID int64, payload broadcast.Payload)
}

// Scheduler runs one cancellable countdown task per session. Ticks count
// down from start to zero; after the zero tick is sent the session phase
// flips to Active and the task stops. A session that finishes early (or
// disappears) kills its countdown on the next tick boundary.
type Scheduler struct {
	store    *gamestore.Store
	engine   Broadcaster
	clock    clockwork.Clock
	start    int
	interval time.Duration

	mu     sync.Mutex
	active map[int64]chan struct{}
}

// NewScheduler creates a scheduler with the default tick sequence.
func NewScheduler(store *gamestore.Store, engine Broadcaster, clock clockwork.Clock) *Scheduler {
	return NewSchedulerConfig(store, engine, clock, DefaultStart, DefaultInterval)
}

// NewSchedulerConfig creates a scheduler with explicit start value and tick
// interval.
func NewSchedulerConfig(store *gamestore.Store, engine Broadcaster, clock clockwork.Clock, start int, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:    store,
		engine:   engine,
		clock:    clock,
		start:    start,
		interval: interval,
		active:   make(map[int64]chan struct{}),
	}
}

// Start launches the countdown task for gameID. Starting a session that
// already has a running countdown is a no-op.
func (s *Scheduler) Start(gameID int64) {
	s.mu.Lock()
	if _, exists := s.active[gameID]; exists {
		s.mu.Unlock()
		log.Debug().Int64("game_id", gameID).Msg("countdown already running")
		return
	}
	cancel := make(chan struct{})
	s.active[gameID] = cancel
	s.mu.Unlock()

	log.Info().Int64("game_id", gameID).Int("start", s.start).Msg("countdown started")
	go s.run(gameID, cancel)
}

// Cancel stops the countdown task for gameID, if one is running.
// Idempotent and race-free against a concurrent Finished transition: the
// task re-checks the session phase before every tick regardless.
func (s *Scheduler) Cancel(gameID int64) {
	s.mu.Lock()
	cancel, exists := s.active[gameID]
	if exists {
		delete(s.active, gameID)
	}
	s.mu.Unlock()

	if exists {
		close(cancel)
		log.Info().Int64("game_id", gameID).Msg("countdown cancelled")
	}
}

func (s *Scheduler) run(gameID int64, cancel <-chan struct{}) {
	defer s.forget(gameID)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for remaining := s.start; remaining >= 0; remaining-- {
		select {
		case <-cancel:
			return
		case <-ticker.Chan():
		}

		// A finished or evicted session must not be resurrected.
		alive := false
		if err := s.store.With(gameID, func(sess *models.GameSession) error {
			alive = sess.Phase == models.PhaseCountdown
			return nil
		}); err != nil || !alive {
			log.Debug().Int64("game_id", gameID).Msg("countdown stopped, session gone or finished")
			return
		}

		s.engine.Send(gameID, broadcast.CountdownPayload(remaining))

		if remaining == 0 {
			if err := s.store.With(gameID, func(sess *models.GameSession) error {
				if sess.Phase == models.PhaseCountdown {
					sess.Phase = models.PhaseActive
				}
				return nil
			}); err != nil {
				return
			}
			log.Info().Int64("game_id", gameID).Msg("countdown complete, game active")
		}
	}
}

func (s *Scheduler) forget(gameID int64) {
	s.mu.Lock()
	delete(s.active, gameID)
	s.mu.Unlock()
}

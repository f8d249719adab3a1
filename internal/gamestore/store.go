package gamestore

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/models"
)

// idBase is the first game id ever allocated. Clients rely on ids being at
// least four digits.
const idBase = 1000

// Store owns the lifetime of every running GameSession. Access to a
// session's mutable state goes through With, which serializes all
// operations on one game id while leaving unrelated games independent.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	sess *models.GameSession
}

// New creates an empty store with the id counter at its base value.
func New() *Store {
	return &Store{
		nextID:   idBase,
		sessions: make(map[int64]*entry),
	}
}

// AllocateID returns the next monotonically increasing game id. Ids are
// allocated at matchmaking time, before the session exists.
func (s *Store) AllocateID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id
}

// Create registers a promoted session under its pre-allocated id.
func (s *Store) Create(sess *models.GameSession) {
	s.mu.Lock()
	s.sessions[sess.ID] = &entry{sess: sess}
	s.mu.Unlock()

	log.Info().
		Int64("game_id", sess.ID).
		Str("game_type", string(sess.GameType)).
		Int("board_size", sess.BoardSize).
		Str("player_one", sess.Players[0].Name).
		Str("player_two", sess.Players[1].Name).
		Msg("game session created")
}

// With runs fn under the per-session lock for id. It returns
// models.ErrUnknownGame when id denotes no running session. The session
// reference must not escape fn.
func (s *Store) With(id int64, fn func(sess *models.GameSession) error) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return models.ErrUnknownGame
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}

// Has reports whether id denotes a running session.
func (s *Store) Has(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok
}

// Remove evicts the session for id. Removing an unknown id is a no-op.
func (s *Store) Remove(id int64) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		log.Info().Int64("game_id", id).Msg("game session removed")
	}
}

// Len returns the number of running sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

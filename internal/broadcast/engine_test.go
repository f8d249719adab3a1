package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mcdev12/tileduel/internal/gamestore"
	"github.com/mcdev12/tileduel/internal/models"
	"github.com/mcdev12/tileduel/internal/questions"
	"github.com/mcdev12/tileduel/internal/session"
)

// startRecorder records which sessions had their countdown started.
type startRecorder struct {
	started []int64
}

func (s *startRecorder) Start(gameID int64) { s.started = append(s.started, gameID) }

func newTestEngine(t *testing.T) (*Engine, *gamestore.Store, *session.Registry, *startRecorder) {
	t.Helper()
	store := gamestore.New()
	registry := session.NewRegistry()
	engine := NewEngine(registry, store, questions.NewSource(nil))
	starter := &startRecorder{}
	engine.SetCountdownStarter(starter)
	return engine, store, registry, starter
}

func createSession(t *testing.T, store *gamestore.Store) int64 {
	t.Helper()
	side := models.BoardSide(1)
	id := store.AllocateID()
	store.Create(&models.GameSession{
		ID:             id,
		GameType:       models.GameTypeArithmetic,
		BoardSize:      1,
		Players:        [2]models.PlayerIdentity{{Name: "alpha1", Key: "k-a"}, {Name: "bravo1", Key: "k-b"}},
		Board:          models.NewBoard(side),
		RemainingCells: side * side,
		Scores:         map[string]int{"alpha1": 0, "bravo1": 0},
		LastMoveInstant: map[string]time.Time{
			"alpha1": time.Now(),
			"bravo1": time.Now(),
		},
		Phase: models.PhaseAwaitingConnections,
	})
	return id
}

func nextFrame(t *testing.T, ch *session.Channel) Payload {
	t.Helper()
	select {
	case frame, ok := <-ch.Frames():
		if !ok {
			t.Fatal("channel closed while expecting a frame")
		}
		var p Payload
		if err := json.Unmarshal(frame, &p); err != nil {
			t.Fatalf("bad frame %s: %v", frame, err)
		}
		return p
	default:
		t.Fatal("no frame pending")
	}
	return Payload{}
}

func TestRegisterChannelReadiness(t *testing.T) {
	engine, store, _, starter := newTestEngine(t)
	id := createSession(t, store)
	ctx := context.Background()

	chA := session.NewChannel()
	if err := engine.RegisterChannel(ctx, id, "alpha1", chA); err != nil {
		t.Fatalf("RegisterChannel failed: %v", err)
	}

	// One player connected: just the current scoreboard, no questions yet.
	p := nextFrame(t, chA)
	if len(p.Scores) != 2 || p.Scores["alpha1"] != 0 {
		t.Fatalf("first frame scores = %v", p.Scores)
	}
	if p.Questions != nil {
		t.Fatal("questions must not be assigned before both players connect")
	}
	if len(starter.started) != 0 {
		t.Fatal("countdown must not start before both players connect")
	}

	chB := session.NewChannel()
	if err := engine.RegisterChannel(ctx, id, "bravo1", chB); err != nil {
		t.Fatalf("RegisterChannel failed: %v", err)
	}

	// Second registration completes readiness: scores, then the question
	// set, on both channels.
	for _, ch := range []*session.Channel{chA, chB} {
		p = nextFrame(t, ch)
		if len(p.Scores) != 2 {
			t.Fatalf("scores frame = %+v", p)
		}
		p = nextFrame(t, ch)
		if len(p.Questions) != 9 {
			t.Fatalf("questions frame carries %d questions, want 9", len(p.Questions))
		}
	}

	if len(starter.started) != 1 || starter.started[0] != id {
		t.Fatalf("countdown starts = %v, want [%d]", starter.started, id)
	}

	var phase models.Phase
	if err := store.With(id, func(sess *models.GameSession) error {
		phase = sess.Phase
		if len(sess.Questions) != 9 {
			t.Errorf("session holds %d questions, want 9", len(sess.Questions))
		}
		return nil
	}); err != nil {
		t.Fatalf("With failed: %v", err)
	}
	if phase != models.PhaseCountdown {
		t.Fatalf("phase = %s, want %s", phase, models.PhaseCountdown)
	}
}

func TestRegisterChannelRejectsOutsiders(t *testing.T) {
	engine, store, _, _ := newTestEngine(t)
	id := createSession(t, store)

	err := engine.RegisterChannel(context.Background(), id, "intruder", session.NewChannel())
	if !errors.Is(err, models.ErrAuthMismatch) {
		t.Fatalf("outsider registration: %v, want ErrAuthMismatch", err)
	}

	err = engine.RegisterChannel(context.Background(), id+1, "alpha1", session.NewChannel())
	if !errors.Is(err, models.ErrUnknownGame) {
		t.Fatalf("unknown game registration: %v, want ErrUnknownGame", err)
	}
}

func TestTerminalPayloadClosesStreams(t *testing.T) {
	engine, store, registry, _ := newTestEngine(t)
	id := createSession(t, store)
	ctx := context.Background()

	chA := session.NewChannel()
	chB := session.NewChannel()
	if err := engine.RegisterChannel(ctx, id, "alpha1", chA); err != nil {
		t.Fatalf("RegisterChannel failed: %v", err)
	}
	if err := engine.RegisterChannel(ctx, id, "bravo1", chB); err != nil {
		t.Fatalf("RegisterChannel failed: %v", err)
	}
	keyA := registry.MintKey("alpha1")
	keyB := registry.MintKey("bravo1")

	engine.Send(id, Payload{
		Scores: map[string]int{"alpha1": 1200, "bravo1": 800},
		Winner: "alpha1",
	})

	for _, ch := range []*session.Channel{chA, chB} {
		var terminal Payload
		for frame := range ch.Frames() {
			if err := json.Unmarshal(frame, &terminal); err != nil {
				t.Fatalf("bad frame %s: %v", frame, err)
			}
		}
		if terminal.Winner != "alpha1" {
			t.Fatalf("last frame winner = %q, want alpha1", terminal.Winner)
		}
	}

	keys := map[string]string{"alpha1": keyA, "bravo1": keyB}
	for name, key := range keys {
		if _, ok := registry.Channel(name); ok {
			t.Errorf("%s channel should be deregistered after a terminal frame", name)
		}
		if registry.MatchKey(name, key) {
			t.Errorf("%s key should be dropped", name)
		}
	}
}

func TestSendWaitingReachesFirstPlayerOnly(t *testing.T) {
	engine, store, registry, _ := newTestEngine(t)

	g := &models.WaitingGame{
		ID:          store.AllocateID(),
		GameType:    models.GameTypeArithmetic,
		BoardSize:   1,
		FirstPlayer: models.PlayerIdentity{Name: "alpha1", Key: "k-a"},
	}

	ch := session.NewChannel()
	registry.Register("alpha1", ch)
	engine.SendWaiting(g)

	p := nextFrame(t, ch)
	if len(p.Scores) != 1 || p.Scores["alpha1"] != 0 {
		t.Fatalf("waiting frame scores = %v, want solo zero score", p.Scores)
	}
}

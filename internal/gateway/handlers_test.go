package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/tileduel/internal/arbiter"
	"github.com/mcdev12/tileduel/internal/broadcast"
	"github.com/mcdev12/tileduel/internal/coordinator"
	"github.com/mcdev12/tileduel/internal/countdown"
	"github.com/mcdev12/tileduel/internal/gamestore"
	"github.com/mcdev12/tileduel/internal/matchmaking"
	"github.com/mcdev12/tileduel/internal/models"
	"github.com/mcdev12/tileduel/internal/questions"
	"github.com/mcdev12/tileduel/internal/ranking"
	"github.com/mcdev12/tileduel/internal/session"
)

// memoryAccounts is an in-memory stand-in for the accounts repository.
type memoryAccounts struct {
	users map[string]string
}

func (a *memoryAccounts) Register(ctx context.Context, name, pass string) error {
	if stored, ok := a.users[name]; ok {
		if stored != pass {
			return fmt.Errorf("user %s is already registered with a different password", name)
		}
		return nil
	}
	a.users[name] = pass
	return nil
}

func (a *memoryAccounts) VerifyCredentials(ctx context.Context, name, pass string) error {
	if stored, ok := a.users[name]; !ok || stored != pass {
		return models.ErrAuthMismatch
	}
	return nil
}

// staticRankings serves a fixed leaderboard.
type staticRankings struct {
	entries []ranking.Entry
}

func (r *staticRankings) TopN(ctx context.Context, gameType models.GameType, boardSize, limit int) ([]ranking.Entry, error) {
	return r.entries, nil
}

type failingRankingStore struct{}

func (failingRankingStore) Insert(ctx context.Context, row ranking.Row) error {
	return fmt.Errorf("no database in tests")
}

func newTestServer(t *testing.T) (*httptest.Server, *memoryAccounts) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	store := gamestore.New()
	registry := session.NewRegistry()
	source := questions.NewSource(nil)

	engine := broadcast.NewEngine(registry, store, source)
	scheduler := countdown.NewScheduler(store, engine, clock)
	engine.SetCountdownStarter(scheduler)

	queue := matchmaking.NewQueue(store, registry, engine, clock)
	arb := arbiter.NewArbiter(store, registry, clock)
	finalizer := ranking.NewFinalizer(failingRankingStore{}, nil, store)

	accounts := &memoryAccounts{users: map[string]string{"alpha1": "secret1"}}
	coord := coordinator.New(accounts, queue, store, registry, arb, engine, scheduler, finalizer)

	rankings := &staticRankings{entries: []ranking.Entry{
		{Name: "alpha1", Score: 4200},
	}}

	handler := NewHandler(coord, accounts, rankings, source, DefaultStreamConfig())
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, accounts
}

func getJSON(t *testing.T, url string) map[string]json.RawMessage {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d, want 200", url, resp.StatusCode)
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("GET %s: bad body: %v", url, err)
	}
	return body
}

func errorField(t *testing.T, body map[string]json.RawMessage) string {
	t.Helper()
	raw, ok := body["error"]
	if !ok {
		return ""
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("error field %s: %v", raw, err)
	}
	return msg
}

func TestRegisterEndpoint(t *testing.T) {
	srv, accounts := newTestServer(t)

	body := getJSON(t, srv.URL+"/register?name=bravo12&pass=secret2")
	if msg := errorField(t, body); msg != "" {
		t.Fatalf("register error = %q", msg)
	}
	if accounts.users["bravo12"] != "secret2" {
		t.Fatal("register should create the user")
	}

	// Same password is idempotent; a different one is rejected.
	body = getJSON(t, srv.URL+"/register?name=bravo12&pass=secret2")
	if msg := errorField(t, body); msg != "" {
		t.Fatalf("re-register error = %q", msg)
	}
	body = getJSON(t, srv.URL+"/register?name=bravo12&pass=other77")
	if msg := errorField(t, body); !strings.Contains(msg, "already registered") {
		t.Fatalf("conflicting register error = %q", msg)
	}

	body = getJSON(t, srv.URL+"/register?name=ab&pass=secret2")
	if msg := errorField(t, body); msg != "invalid parameter name" {
		t.Fatalf("short name error = %q", msg)
	}
}

func TestQuestionsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	body := getJSON(t, srv.URL+"/questions?type=arithmetic&size=1")
	var qs []models.Question
	if err := json.Unmarshal(body["questions"], &qs); err != nil {
		t.Fatalf("questions field: %v", err)
	}
	if len(qs) != 9 {
		t.Fatalf("questions = %d, want 9", len(qs))
	}

	body = getJSON(t, srv.URL+"/questions?type=chess&size=1")
	if msg := errorField(t, body); msg != "invalid parameter type" {
		t.Fatalf("bad type error = %q", msg)
	}
}

func TestRankingEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	body := getJSON(t, srv.URL+"/ranking?type=arithmetic&size=1")
	var entries []ranking.Entry
	if err := json.Unmarshal(body["ranking"], &entries); err != nil {
		t.Fatalf("ranking field: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "alpha1" {
		t.Fatalf("ranking = %+v", entries)
	}
}

func TestJoinAndNotifyErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	body := getJSON(t, srv.URL+"/join?name=alpha1&pass=wrongpw&type=arithmetic&size=1")
	if msg := errorField(t, body); msg != models.ErrAuthMismatch.Error() {
		t.Fatalf("bad password error = %q", msg)
	}

	body = getJSON(t, srv.URL+"/notify?name=alpha1&key=nokey1&game=1000&row=1&col=1")
	if msg := errorField(t, body); msg != models.ErrAuthMismatch.Error() {
		t.Fatalf("unauthenticated notify error = %q", msg)
	}

	body = getJSON(t, srv.URL+"/notify?name=alpha1&key=nokey1&game=999&row=1&col=1")
	if msg := errorField(t, body); msg != "invalid parameter game" {
		t.Fatalf("low game id error = %q", msg)
	}
}

func TestUpdateStreamsSSE(t *testing.T) {
	srv, _ := newTestServer(t)

	body := getJSON(t, srv.URL+"/join?name=alpha1&pass=secret1&type=arithmetic&size=1")
	if msg := errorField(t, body); msg != "" {
		t.Fatalf("join error = %q", msg)
	}
	var gameID int64
	var key string
	if err := json.Unmarshal(body["game"], &gameID); err != nil {
		t.Fatalf("game field: %v", err)
	}
	if err := json.Unmarshal(body["key"], &key); err != nil {
		t.Fatalf("key field: %v", err)
	}

	resp, err := http.Get(fmt.Sprintf("%s/update?name=alpha1&key=%s&game=%d", srv.URL, key, gameID))
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	// First event: the solo scoreboard of the waiting player.
	reader := bufio.NewReader(resp.Body)
	var data string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			break
		}
	}
	var payload broadcast.Payload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		t.Fatalf("bad event %q: %v", data, err)
	}
	if len(payload.Scores) != 1 || payload.Scores["alpha1"] != 0 {
		t.Fatalf("waiting event = %+v", payload)
	}

	// Leaving the queue closes the stream server-side.
	body = getJSON(t, fmt.Sprintf("%s/leave?name=alpha1&key=%s&game=%d", srv.URL, key, gameID))
	if msg := errorField(t, body); msg != "" {
		t.Fatalf("leave error = %q", msg)
	}
	for {
		if _, err := reader.ReadString('\n'); err != nil {
			break // EOF: stream completed
		}
	}
}

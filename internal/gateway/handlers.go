package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/coordinator"
	"github.com/mcdev12/tileduel/internal/models"
	"github.com/mcdev12/tileduel/internal/ranking"
)

// AccountRegistrar is what the gateway needs from the accounts repository.
type AccountRegistrar interface {
	Register(ctx context.Context, name, pass string) error
}

// RankingReader is what the gateway needs from the ranking repository.
type RankingReader interface {
	TopN(ctx context.Context, gameType models.GameType, boardSize, limit int) ([]ranking.Entry, error)
}

// QuestionSource serves the single-player questions endpoint.
type QuestionSource interface {
	QuestionsFor(ctx context.Context, gameType models.GameType, boardSize int) ([]models.Question, error)
}

const rankingLimit = 10

// Handler exposes the coordinator's JSON API. Every endpoint answers with
// a flat JSON object; failures carry {"error": "..."} with HTTP 200, which
// is the contract the existing clients expect.
type Handler struct {
	coord     *coordinator.Coordinator
	accounts  AccountRegistrar
	rankings  RankingReader
	questions QuestionSource
	streams   StreamConfig
}

// NewHandler creates the API handler.
func NewHandler(coord *coordinator.Coordinator, accounts AccountRegistrar, rankings RankingReader, questions QuestionSource, streams StreamConfig) *Handler {
	return &Handler{
		coord:     coord,
		accounts:  accounts,
		rankings:  rankings,
		questions: questions,
		streams:   streams,
	}
}

// RegisterRoutes attaches all endpoints to mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/register", h.handleRegister)
	mux.HandleFunc("/ranking", h.handleRanking)
	mux.HandleFunc("/questions", h.handleQuestions)
	mux.HandleFunc("/join", h.handleJoin)
	mux.HandleFunc("/leave", h.handleLeave)
	mux.HandleFunc("/notify", h.handleNotify)
	mux.HandleFunc("/update", h.handleUpdate)
	log.Info().Msg("gateway routes registered")
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := parseRegisterRequest(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.Register(r.Context(), req.Name, req.Pass); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{})
}

func (h *Handler) handleRanking(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuestionsRequest(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.rankings.TopN(r.Context(), req.Type, req.Size, rankingLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ranking": entries})
}

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuestionsRequest(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	questions, err := h.questions.QuestionsFor(r.Context(), req.Type, req.Size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"questions": questions})
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	req, err := parseJoinRequest(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.coord.Join(r.Context(), req.Name, req.Pass, req.Type, req.Size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"game": res.GameID, "key": res.Key})
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	req, err := parseLeaveRequest(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.coord.Leave(r.Context(), req.Name, req.Key, req.GameID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{})
}

func (h *Handler) handleNotify(w http.ResponseWriter, r *http.Request) {
	req, err := parseNotifyRequest(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.coord.Notify(r.Context(), req.Name, req.Key, req.GameID, req.Row, req.Col); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{})
}

// handleUpdate opens the long-lived push stream: Server-Sent Events by
// default, WebSocket when the client asks to upgrade.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	req, err := parseUpdateRequest(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	ch, err := h.coord.Update(r.Context(), req.Name, req.Key, req.GameID)
	if err != nil {
		writeError(w, err)
		return
	}

	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		h.serveWebSocket(w, r, req.Name, ch)
		return
	}
	h.serveSSE(w, r, req.Name, ch)
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

// writeError maps taxonomy errors to their canonical wire messages and
// hides internals behind a generic message for anything unexpected.
func writeError(w http.ResponseWriter, err error) {
	msg := "internal error"
	switch {
	case errors.Is(err, models.ErrAuthMismatch),
		errors.Is(err, models.ErrUnknownGame),
		errors.Is(err, models.ErrNotInWaitingState),
		errors.Is(err, models.ErrAlreadyCleared),
		errors.Is(err, models.ErrOutOfRange),
		errors.Is(err, models.ErrSelfMatch):
		msg = taxonomyMessage(err)
	case errors.Is(err, models.ErrPersistenceFailure):
		msg = models.ErrPersistenceFailure.Error()
	case strings.HasPrefix(err.Error(), "invalid parameter"),
		strings.HasPrefix(err.Error(), "invalid game type"),
		strings.HasPrefix(err.Error(), "invalid board size"),
		strings.Contains(err.Error(), "already registered"):
		msg = err.Error()
	default:
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, map[string]any{"error": msg})
}

func taxonomyMessage(err error) string {
	for _, sentinel := range []error{
		models.ErrAuthMismatch,
		models.ErrUnknownGame,
		models.ErrNotInWaitingState,
		models.ErrAlreadyCleared,
		models.ErrOutOfRange,
		models.ErrSelfMatch,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

package gateway

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/session"
)

// StreamConfig tunes the push stream transports.
type StreamConfig struct {
	// KeepaliveInterval spaces SSE keepalive comments and WebSocket pings.
	KeepaliveInterval time.Duration
	// WriteTimeout bounds each WebSocket write.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns the default stream tuning.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		KeepaliveInterval: 15 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// serveSSE drains the player's push channel as a Server-Sent Events stream,
// one JSON payload per event, until the coordinator closes the channel.
func (h *Handler) serveSSE(w http.ResponseWriter, r *http.Request, name string, ch *session.Channel) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	log.Info().Str("player", name).Msg("SSE stream opened")

	keepalive := time.NewTicker(h.streams.KeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case frame, ok := <-ch.Frames():
			if !ok {
				log.Info().Str("player", name).Msg("SSE stream completed")
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
				log.Warn().Err(err).Str("player", name).Msg("SSE write failed")
				return
			}
			flusher.Flush()

		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			log.Info().Str("player", name).Msg("SSE client disconnected")
			return
		}
	}
}

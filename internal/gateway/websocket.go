package gateway

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The original service answered any origin; the routing layer in
		// front restricts this in production.
		return true
	},
}

// serveWebSocket drains the player's push channel over a WebSocket, one
// JSON payload per text frame. The server pings on the keepalive interval;
// the stream ends with a close frame when the coordinator closes the
// channel.
func (h *Handler) serveWebSocket(w http.ResponseWriter, r *http.Request, name string, ch *session.Channel) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("player", name).Msg("failed to upgrade connection")
		return
	}
	defer conn.Close()

	log.Info().Str("player", name).Msg("WebSocket stream opened")

	// The client never sends application data; the read loop only services
	// pongs and surfaces disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(1024)
		_ = conn.SetReadDeadline(time.Now().Add(3 * h.streams.KeepaliveInterval))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(3 * h.streams.KeepaliveInterval))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(h.streams.KeepaliveInterval)
	defer ping.Stop()

	for {
		select {
		case frame, ok := <-ch.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(h.streams.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
				log.Info().Str("player", name).Msg("WebSocket stream completed")
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Warn().Err(err).Str("player", name).Msg("WebSocket write failed")
				return
			}

		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.streams.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			log.Info().Str("player", name).Msg("WebSocket client disconnected")
			return

		case <-r.Context().Done():
			return
		}
	}
}

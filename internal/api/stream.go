package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nurturefox/trackd/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Companion surfaces connect from the local network only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// StreamHandler pushes ledger changes to companion surfaces over a
// WebSocket. Each connection gets the current snapshot first, then live
// change notices until either side hangs up.
type StreamHandler struct {
	ledger *services.Ledger
	log    zerolog.Logger
}

func NewStreamHandler(ledger *services.Ledger, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{ledger: ledger, log: log.With().Str("component", "stream").Logger()}
}

// Stream GET /api/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	snapshot, changes, err := h.ledger.Stream(ctx)
	if err != nil {
		h.log.Debug().Err(err).Msg("stream snapshot failed")
		return
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(map[string]interface{}{"type": "snapshot", "events": snapshot}); err != nil {
		return
	}

	// Drain reads so close frames and pongs are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(map[string]interface{}{"type": "change", "change": c}); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/auditguard/auditguard/internal/assistant"
	"github.com/auditguard/auditguard/internal/domain"
)

const liveWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 << 10,
	WriteBufferSize: 16 << 10,
}

// liveEvent is what the relay sends to the browser.
type liveEvent struct {
	Type    string             `json:"type"` // connected, message, error
	Message *assistant.Message `json:"message,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// liveCommand is a text frame from the browser. Binary frames carry raw PCM
// audio at the default input rate.
type liveCommand struct {
	Type     string `json:"type"` // audio, stop
	Data     []byte `json:"data,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
}

// LiveRelay bridges a browser websocket and a live model session primed with
// the ledger digest.
func (h *Handlers) LiveRelay(w http.ResponseWriter, r *http.Request) {
	if h.live == nil {
		h.fail(w, r, domain.ErrAssistantUnavailable)
		return
	}
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	log := h.log.With().Str("session_id", s.ID()).Logger()

	var writeMu sync.Mutex
	send := func(ev liveEvent) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		return conn.WriteJSON(ev)
	}

	live, err := h.live.Connect(ctx, assistant.LiveConfig{
		Model:             h.liveModel,
		Voice:             h.liveVoice,
		SystemInstruction: assistant.BuildSystemInstruction(s.Summary(), s.Entries()),
	})
	if err != nil {
		log.Error().Err(err).Msg("live connect failed")
		_ = send(liveEvent{Type: "error", Error: "could not reach the live assistant"})
		return
	}
	defer live.Close()

	if err := send(liveEvent{Type: "connected"}); err != nil {
		return
	}
	log.Info().Msg("live session opened")

	live.OnMessage(func(m assistant.Message) {
		if m.Err != nil {
			log.Warn().Err(m.Err).Msg("live session ended")
			_ = send(liveEvent{Type: "error", Error: m.Err.Error()})
			cancel()
			conn.Close()
			return
		}
		if err := send(liveEvent{Type: "message", Message: &m}); err != nil {
			cancel()
		}
	})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		chunk := assistant.AudioChunk{Data: data, MIMEType: assistant.DefaultInputMIMEType}
		if mt == websocket.TextMessage {
			var cmd liveCommand
			if err := json.Unmarshal(data, &cmd); err != nil {
				_ = send(liveEvent{Type: "error", Error: "invalid command"})
				continue
			}
			if cmd.Type == "stop" {
				break
			}
			if cmd.Type != "audio" {
				_ = send(liveEvent{Type: "error", Error: "unknown command " + cmd.Type})
				continue
			}
			chunk = assistant.AudioChunk{Data: cmd.Data, MIMEType: cmd.MIMEType}
		}

		if err := live.Send(ctx, chunk); err != nil {
			log.Warn().Err(err).Msg("live send failed")
			break
		}
	}

	log.Info().Msg("live session closed")
}

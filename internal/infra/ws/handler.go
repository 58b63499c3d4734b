// File: internal/infra/ws/handler.go
package ws

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler upgrades GET /status/{fileId} and ties the connection
// lifecycle to the registry. The channel itself carries no
// authentication; the file id is an unguessable UUID.
type Handler struct {
	registry *Registry
	upgrader websocket.Upgrader
	log      *zerolog.Logger
}

func NewHandler(registry *Registry, logger *zerolog.Logger) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect cross-origin from the app frontend.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")
	if fileID == "" {
		http.Error(w, "missing file id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.Warn().Err(err).Str("file_id", fileID).Msg("websocket upgrade failed")
		return
	}

	ch := NewChannel(conn)
	h.registry.Register(fileID, ch)
	go h.readPump(fileID, ch, conn)
}

// readPump drains client frames until the transport closes. Inbound
// frames are accepted but ignored beyond a log line; on exit the
// record enters its grace period.
func (h *Handler) readPump(fileID string, ch *Channel, conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("file_id", fileID).Msg("websocket read")
			}
			break
		}
		h.log.Debug().Str("file_id", fileID).Int("bytes", len(msg)).Msg("client frame ignored")
	}
	ch.markClosed()
	h.registry.ScheduleRemoval(fileID, ch)
	h.log.Info().Str("file_id", fileID).Msg("websocket closed")
}

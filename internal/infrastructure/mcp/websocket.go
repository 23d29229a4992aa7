package mcp

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// WSHandler serves the MCP server over a websocket: one JSON-RPC message
// per text frame, responses written back on the same connection.
type WSHandler struct {
	srv      *Server
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler wraps srv for websocket transport.
func NewWSHandler(srv *Server, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		srv:    srv,
		logger: logger,
		upgrader: websocket.Upgrader{
			// The MCP endpoint is token-guarded, not origin-guarded.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close() //nolint:errcheck // connection teardown

	ctx := r.Context()
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		response := h.srv.HandleMessage(ctx, json.RawMessage(data))
		if response == nil {
			// Notification, nothing to send back.
			continue
		}
		payload, err := json.Marshal(response)
		if err != nil {
			h.logger.Error("encode websocket response", slog.Any("error", err))
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("websocket write failed", slog.Any("error", err))
			return
		}
	}
}

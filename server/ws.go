package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mzngu/Red-panda-x/sessions"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request, registers a session and processes frames
// sequentially until the client disconnects.
func HandleWS(cfg *Config, registry *sessions.Registry, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		cfg.Log.Error("WebSocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	token := ""
	if cookie, cerr := r.Cookie("session_token"); cerr == nil {
		token = cookie.Value
	}

	session := sessions.NewChatSession(
		uuid.New().String(),
		token,
		cfg.Model,
		cfg.Invoker,
		cfg.Store,
		&sessions.WSWriter{Conn: conn},
		cfg.Log,
	)
	registry.Add(session)
	defer registry.Remove(session.ID)

	cfg.Log.Info("WebSocket session started", "session", session.ID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cfg.Log.Warn("WebSocket read error", "session", session.ID, "err", err)
			}
			break
		}
		if err := handleFrameSafely(r.Context(), cfg, session, raw); err != nil {
			var chatErr *sessions.ChatError
			if errors.As(err, &chatErr) && chatErr.Fatal {
				cfg.Log.Error("fatal session error", "session", session.ID, "err", err)
				break
			}
			cfg.Log.Warn("handled session error", "session", session.ID, "err", err)
		}
	}

	cfg.Log.Info("WebSocket session ended", "session", session.ID)
}

// handleFrameSafely keeps one bad frame from tearing down the connection.
func handleFrameSafely(ctx context.Context, cfg *Config, session *sessions.ChatSession, raw []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			cfg.Log.Error("panic while handling frame", "session", session.ID, "panic", rec)
			if werr := session.Writer.WriteError("Une erreur est survenue"); werr != nil {
				cfg.Log.Error("failed to write error frame", "session", session.ID, "err", werr)
			}
			err = nil
		}
	}()
	return session.HandleFrame(ctx, raw)
}

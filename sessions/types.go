package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mzngu/Red-panda-x/logger"
	"github.com/mzngu/Red-panda-x/models"
	"github.com/mzngu/Red-panda-x/prompt"
	"github.com/mzngu/Red-panda-x/stores"
)

// ChatError represents errors that can occur while handling a message
type ChatError struct {
	Message string
	Fatal   bool
}

func (e *ChatError) Error() string {
	return e.Message
}

// InboundFrame is one JSON message from the client. Either an action frame
// (load_history) or a chat message with optional image, profile context and
// conversation/user identifiers.
type InboundFrame struct {
	Action  string        `json:"action,omitempty"`
	History []HistoryTurn `json:"history,omitempty"`

	Message        string              `json:"message,omitempty"`
	Image          string              `json:"image,omitempty"` // data URL
	Context        *prompt.UserProfile `json:"context,omitempty"`
	ConversationID *uint               `json:"conversation_id,omitempty"`
	UserID         *uint               `json:"user_id,omitempty"`
	SessionToken   string              `json:"session_token,omitempty"`
}

// HistoryTurn is the client-side shape used to seed history on load_history.
type HistoryTurn struct {
	Role  string   `json:"role"`
	Parts []string `json:"parts"`
}

// OutboundFrame is the single reply sent per processed chat message.
type OutboundFrame struct {
	Response       string `json:"response"`
	ConversationID *uint  `json:"conversation_id,omitempty"`
}

// Turn is one entry of the in-memory conversation history. Appended only,
// never mutated.
type Turn struct {
	Role  string // "user", "model"
	Parts []models.User_Part
}

// Reasoner is the reasoning backend surface the session drives: the
// tool-enabled call and the degraded no-tools call.
type Reasoner interface {
	Generate(ctx context.Context, request models.Model_Request, tools []models.FunctionDeclaration, systemInstruction string) (models.Model_Response, error)
	GenerateSimple(ctx context.Context, history []string, systemInstruction string) (string, error)
}

// ToolInvoker executes one requested tool call and always yields a JSON body.
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, args map[string]interface{}, token string) string
	Declarations() []models.FunctionDeclaration
}

// FrameWriter sends reply frames back to a client. WSWriter is the WebSocket
// implementation; tests substitute their own.
type FrameWriter interface {
	WriteResponse(v interface{}) error
	WriteError(message string) error
}

// WSWriter handles all WebSocket communication for one connection.
type WSWriter struct {
	Conn *websocket.Conn
	mu   sync.Mutex
}

func (w *WSWriter) WriteResponse(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(v)
}

func (w *WSWriter) WriteError(message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(map[string]string{"error": message})
}

// ChatSession holds the per-connection mutable state and runs the
// orchestration loop. One session is owned by exactly one connection handler;
// frames are processed strictly one at a time.
type ChatSession struct {
	ID    string
	Token string // session token captured from the connection, may be empty

	ConversationID *uint
	UserID         *uint
	History        []Turn

	Model   Reasoner
	Invoker ToolInvoker
	Store   stores.MedicalStore
	Writer  FrameWriter
	Log     *logger.Logger

	// Now is the clock used for prompt building; defaults to time.Now.
	Now func() time.Time

	// MaxToolRounds caps backend re-invocations after the initial call;
	// defaults to 3.
	MaxToolRounds int

	// CallTimeout bounds each reasoning-backend call; defaults to 60s.
	CallTimeout time.Duration
}

// NewChatSession creates a session for one connection.
func NewChatSession(id, token string, model Reasoner, invoker ToolInvoker, store stores.MedicalStore, writer FrameWriter, log *logger.Logger) *ChatSession {
	return &ChatSession{
		ID:      id,
		Token:   token,
		Model:   model,
		Invoker: invoker,
		Store:   store,
		Writer:  writer,
		Log:     log,
	}
}

func (s *ChatSession) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ChatSession) maxToolRounds() int {
	if s.MaxToolRounds > 0 {
		return s.MaxToolRounds
	}
	return 3
}

func (s *ChatSession) callTimeout() time.Duration {
	if s.CallTimeout > 0 {
		return s.CallTimeout
	}
	return 60 * time.Second
}

package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/achla24/LeaveEase/internal/shared/request"
	"github.com/achla24/LeaveEase/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxMessageBytes = 4 << 10
	pongWait        = 60 * time.Second
	writeWait       = 10 * time.Second

	testMessage    = "help"
	socketErrorMsg = "Sorry, I encountered an error. Please try again."
)

type ChatRequest struct {
	Message string `json:"message" binding:"required,max=1000"`
}

type ChatResponse struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type TestResponse struct {
	TestMessage string `json:"test_message"`
	AIResponse  string `json:"ai_response"`
	Timestamp   int64  `json:"timestamp"`
}

// SocketMessage is one frame sent to a websocket client.
type SocketMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Username  string `json:"username,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type Handler struct {
	assistant *Assistant
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

func NewHandler(assistant *Assistant, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("chat.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("chat.handler")
	}
	return &Handler{
		assistant: assistant,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: l,
	}
}

func (h *Handler) Ask(c *gin.Context) {
	var req ChatRequest
	if err := request.BindStrictJSON(c, &req); err != nil {
		response.BindError(c, err)
		return
	}

	reply := h.assistant.Reply(c.Request.Context(), c.GetString("username"), req.Message)
	response.Success(c, http.StatusOK, ChatResponse{
		Message:   reply,
		Timestamp: time.Now().UnixMilli(),
	}, nil)
}

// Test runs the help query as the caller.
func (h *Handler) Test(c *gin.Context) {
	reply := h.assistant.Reply(c.Request.Context(), c.GetString("username"), testMessage)
	response.Success(c, http.StatusOK, TestResponse{
		TestMessage: testMessage,
		AIResponse:  reply,
		Timestamp:   time.Now().UnixMilli(),
	}, nil)
}

// Stream upgrades to a websocket and answers each {"message": ...} frame
// until the client goes away.
func (h *Handler) Stream(c *gin.Context) {
	username := c.GetString("username")
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("chat upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	ws.SetReadLimit(maxMessageBytes)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := c.Request.Context()
	for {
		var in ChatRequest
		if err := ws.ReadJSON(&in); err != nil {
			if !isDecodeError(err) {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("chat socket closed", zap.String("username", username), zap.Error(err))
				}
				return
			}
			if h.write(ws, SocketMessage{Type: "error", Message: socketErrorMsg, Timestamp: time.Now().UnixMilli()}) != nil {
				return
			}
			continue
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))

		out := SocketMessage{
			Type:      "ai_response",
			Message:   h.assistant.Reply(ctx, username, in.Message),
			Username:  username,
			Timestamp: time.Now().UnixMilli(),
		}
		if err := h.write(ws, out); err != nil {
			return
		}
	}
}

func (h *Handler) write(ws *websocket.Conn, msg SocketMessage) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteJSON(msg)
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/pairchat/internal/pairing"
	"github.com/nfrund/pairchat/internal/pubsub"
)

// Options tune the chat endpoint's connections.
type Options struct {
	// AllowedOrigins are host patterns accepted in the Origin header. "*" disables
	// origin verification.
	AllowedOrigins []string
	// SendBuffer is the capacity of each client's outbound queue.
	SendBuffer int
	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration
	// ReadLimit is the largest inbound frame in bytes.
	ReadLimit int64
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		AllowedOrigins: []string{"*"},
		SendBuffer:     256,
		WriteTimeout:   10 * time.Second,
		ReadLimit:      4096,
	}
}

// Handler upgrades chat requests and connects each one to the pairing engine.
type Handler struct {
	engine    *pairing.Engine
	publisher pubsub.Publisher
	opts      Options
	logger    *slog.Logger

	// done is canceled by Close and ends every open connection.
	done     context.Context
	shutdown context.CancelFunc
}

// NewHandler creates the chat endpoint handler. publisher may be nil, in which case
// no transport events are published.
func NewHandler(engine *pairing.Engine, publisher pubsub.Publisher, opts Options) *Handler {
	defaults := DefaultOptions()
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = defaults.AllowedOrigins
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaults.SendBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaults.WriteTimeout
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaults.ReadLimit
	}

	done, shutdown := context.WithCancel(context.Background())
	return &Handler{
		engine:    engine,
		publisher: publisher,
		opts:      opts,
		logger:    slog.Default().With("component", "websocket"),
		done:      done,
		shutdown:  shutdown,
	}
}

// Close ends every connection the handler is serving. Each one is disconnected from
// the engine as its read loop unwinds.
func (h *Handler) Close() {
	h.shutdown()
}

func (h *Handler) acceptOptions() *websocket.AcceptOptions {
	if slices.Contains(h.opts.AllowedOrigins, "*") {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: h.opts.AllowedOrigins}
}

// Chat handles GET /ws/chat/:problem_id. It blocks for the lifetime of the
// connection.
func (h *Handler) Chat(c echo.Context) error {
	problemID := c.Param("problem_id")
	if problemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "problem id is required")
	}

	r := c.Request()
	conn, err := websocket.Accept(c.Response(), r, h.acceptOptions())
	if err != nil {
		// Accept has already written the HTTP error response.
		h.logger.Warn("Failed to upgrade connection to WebSocket", "problem_id", problemID, "error", err)
		return nil
	}
	conn.SetReadLimit(h.opts.ReadLimit)

	client := newClient(conn, h.opts.SendBuffer, h.opts.WriteTimeout, h.logger)
	session := h.engine.NewSession(problemID, client)
	client.logger = h.logger.With("session_id", session.ID, "problem_id", problemID)

	go client.writePump(client.queue())

	// Reads stop when the request ends or the handler is closed. Cleanup after the
	// read loop must not inherit that cancellation.
	readCtx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(h.done, cancel)
	defer stop()
	ctx := context.WithoutCancel(readCtx)

	if err := h.engine.Connect(ctx, session); err != nil {
		client.logger.Error("Failed to connect session", "error", err)
		client.Close()
		return nil
	}

	h.publish(ctx, TopicClientReady.Name(), session.ID, ClientReady{
		SessionID:  session.ID,
		ProblemID:  problemID,
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})

	reason, code := h.readPump(readCtx, conn, session, client.logger)

	h.engine.Disconnect(ctx, session)
	client.Close()

	h.publish(ctx, TopicClientDisconnected.Name(), session.ID, ClientDisconnected{
		SessionID: session.ID,
		ProblemID: problemID,
		Reason:    reason,
		CloseCode: code,
	})
	return nil
}

// readPump feeds inbound frames to the engine until the connection fails. It returns
// why the loop ended and the close code, -1 when there was none.
func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, session *pairing.Session, logger *slog.Logger) (string, int) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Info("WebSocket closed normally by client")
				return ReasonClientClosed, int(status)
			}
			if ctx.Err() != nil {
				return ReasonServerShutdown, int(status)
			}
			logger.Debug("WebSocket read ended", "error", err)
			return ReasonReadError, int(status)
		}

		err = h.engine.Relay(context.WithoutCancel(ctx), session, data)
		switch {
		case err == nil:
		case errors.Is(err, pairing.ErrMalformedInput):
			logger.Warn("Dropping malformed frame", "error", err)
		default:
			logger.Error("Relay failed", "error", err)
			return ReasonReadError, -1
		}
	}
}

func (h *Handler) publish(ctx context.Context, topic, sessionID string, payload any) {
	if h.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal transport event", "topic", topic, "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, pubsub.Message{
		Topic:   topic,
		UserID:  sessionID,
		Payload: data,
		Metadata: map[string]string{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}); err != nil {
		h.logger.Warn("Failed to publish transport event", "topic", topic, "error", err)
	}
}

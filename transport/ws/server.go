// Package ws carries app messages over a websocket: every text frame is one
// request and every reply is one JSON text frame.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/viant/qgate/internal/logger"
	"github.com/viant/qgate/model/envelope"
)

const (
	writeTimeout   = 10 * time.Second
	maxMessageSize = 64 << 20
)

// Dispatcher handles inbound messages, each on its own goroutine.
type Dispatcher interface {
	Go(ctx context.Context, raw []byte, replier envelope.Replier)
}

// Server upgrades app connections.
type Server struct {
	dispatcher Dispatcher
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// Option customises the server.
type Option func(s *Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCheckOrigin sets the origin check used by the upgrader.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// New creates a websocket server.
func New(dispatcher Dispatcher, options ...Option) *Server {
	ret := &Server{
		dispatcher: dispatcher,
		upgrader:   websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
	}
	for _, option := range options {
		option(ret)
	}
	if ret.logger == nil {
		ret.logger = logger.Discard()
	}
	ret.logger = ret.logger.With("component", "ws")
	return ret
}

// ServeHTTP upgrades the request and serves the connection until the app
// disconnects. Pending requests of a closed connection are cancelled.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.Serve(r.Context(), conn)
}

// Serve reads messages from conn until it fails. Requests still running
// when the app disconnects see their context cancelled.
func (s *Server) Serve(ctx context.Context, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	peer := &connection{conn: conn}
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	conn.SetReadLimit(maxMessageSize)
	s.logger.Debug("app connected", "remote", conn.RemoteAddr().String())
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		s.dispatcher.Go(ctx, data, peer)
	}
}

// connection serialises writes; gorilla connections allow one writer.
type connection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Reply writes reply as one text frame.
func (c *connection) Reply(ctx context.Context, reply *envelope.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteJSON(reply)
}

package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/fractals/internal/errors"
	"github.com/vango-dev/fractals/pkg/history"
	"github.com/vango-dev/fractals/pkg/nav"
)

// maxPendingOps bounds the client frames queued behind the running one.
const maxPendingOps = 16

// Session is one navigation session: a WebSocket connection driving its
// own engine and history.
type Session struct {
	ID     string
	engine *nav.Engine
	conn   *websocket.Conn
	config *Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex
	ops     sync.WaitGroup

	closeOnce sync.Once
}

func newSession(id string, conn *websocket.Conn, engine *nav.Engine, config *Config, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:     id,
		engine: engine,
		conn:   conn,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Engine returns the session's navigation engine.
func (s *Session) Engine() *nav.Engine {
	return s.engine
}

// run serves the session until the connection closes.
func (s *Session) run() {
	defer s.ops.Wait()
	defer s.Close()

	unsubscribe := s.engine.OnMatched(func(n *nav.Navigation) {
		s.send(matchedFrame(s.ID, n, s.engine.History().SyncsURL()))
	})
	defer unsubscribe()

	stopListen := s.engine.History().Listen(func(ev history.Event) {
		s.logger.Debug("history moved", "from", ev.From, "to", ev.To, "delta", ev.Delta)
	})
	defer stopListen()

	if _, err := s.engine.Start(s.ctx); err != nil {
		s.fail("start", 0, err)
	}

	go s.pingLoop()

	s.conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
	})

	// Operations run one at a time in arrival order. A navigation frame
	// cancels the operation still loading so the latest request wins.
	ops := make(chan ClientFrame, maxPendingOps)
	s.ops.Add(1)
	go s.worker(ops)
	defer close(ops)

	for {
		var frame ClientFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
		s.config.Metrics.frame("in", frame.Op)

		if frame.navigates() {
			s.engine.CancelPending()
		}
		select {
		case ops <- frame:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) worker(ops <-chan ClientFrame) {
	defer s.ops.Done()
	for frame := range ops {
		if s.ctx.Err() != nil {
			continue
		}
		s.handle(frame)
	}
}

// handle performs one client operation. Successful navigations are
// reported by the OnMatched listener.
func (s *Session) handle(frame ClientFrame) {
	var err error
	delta := 0
	switch frame.Op {
	case OpPush, OpReplace:
		var to nav.Target
		to, err = frame.target()
		if err != nil {
			break
		}
		if frame.Op == OpPush {
			_, err = s.engine.Push(s.ctx, to)
		} else {
			_, err = s.engine.Replace(s.ctx, to)
		}
	case OpBack:
		delta = -1
		_, err = s.engine.Back(s.ctx)
	case OpForward:
		delta = 1
		_, err = s.engine.Forward(s.ctx)
	case OpGo:
		delta = frame.Delta
		_, err = s.engine.Go(s.ctx, frame.Delta)
	default:
		err = errors.New("N005").WithDetailf("unknown op %q", frame.Op)
	}

	if err != nil {
		s.fail(frame.Op, delta, err)
	}
}

// fail reports err to the client. Superseded navigations are not errors
// from the client's point of view. A failed history move carries its
// delta so the client can step back to where the server history is.
func (s *Session) fail(op string, delta int, err error) {
	if stderrors.Is(err, nav.ErrCancelled) || stderrors.Is(err, context.Canceled) {
		s.logger.Debug("navigation superseded", "op", op)
		return
	}
	s.logger.Debug("navigation failed", "op", op, "error", err)
	f := errorFrame(s.ID, op, err)
	f.Delta = delta
	s.send(f)
}

// send writes a frame. Write errors close the session.
func (s *Session) send(frame ServerFrame) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(frame); err != nil {
		s.logger.Debug("write error", "error", err)
		s.cancel()
		return
	}
	s.config.Metrics.frame("out", frame.Type)
}

func (s *Session) pingLoop() {
	ticker := time.NewTicker(s.config.IdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.config.WriteTimeout))
			s.writeMu.Unlock()
			if err != nil {
				s.cancel()
				s.conn.Close()
				return
			}
		}
	}
}

// Close cancels pending navigations, closes the engine and the connection.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.engine.Close()

		s.writeMu.Lock()
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		s.conn.Close()
		s.logger.Debug("session closed")
	})
}

// String implements fmt.Stringer.
func (s *Session) String() string {
	return fmt.Sprintf("session %s at %s", s.ID, s.engine.History().Location())
}

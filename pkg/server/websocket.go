package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	dwerrors "github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/widget"
)

const (
	readTimeout    = 60 * time.Second
	maxFrameBytes  = maxEventBytes
	pingInterval   = 25 * time.Second
	closeGracetime = time.Second
)

// handleWebSocket upgrades a session's connection and runs its read loop.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	if sess == nil {
		writeError(w, http.StatusNotFound, dwerrors.New("DW401"))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	sess.attach(conn)
	defer sess.detach(conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.pingLoop(ctx, sess, conn)

	s.readLoop(ctx, sess, conn)
}

// readLoop dispatches events until the connection closes.
func (s *Server) readLoop(ctx context.Context, sess *Session, conn *websocket.Conn) {
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.logger.Error("read error", "error", err)
			}
			return
		}
		sess.touch(s.now())

		var ev widget.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			sess.logger.Warn("event decode error", "error", err)
			continue
		}
		if err := sess.dispatch(ctx, ev); err != nil {
			sess.logger.Debug("action failed", "type", ev.Type, "target", ev.Target, "error", err)
		}
	}
}

// pingLoop keeps the connection alive while ctx is running.
func (s *Server) pingLoop(ctx context.Context, sess *Session, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sess.mu.Lock()
			attached := sess.conn == conn
			var err error
			if attached {
				err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(closeGracetime))
			}
			sess.mu.Unlock()
			if !attached || err != nil {
				return
			}
		}
	}
}

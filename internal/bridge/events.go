package bridge

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/event"
)

// handleEvents streams every bus event to the client as a JSON envelope.
// A client that cannot keep up loses events; the producer never waits on it.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan event.Envelope, clientBuffer)
	var dropped atomic.Int64
	sub := s.bus.Forward(func(e event.Envelope) {
		select {
		case send <- e:
		default:
			dropped.Add(1)
		}
	})
	defer sub.Unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.log.Debug("websocket read failed", zap.Error(err))
				}
				return
			}
		}
	}()

	s.log.Info("event client connected", zap.String("remote", r.RemoteAddr))
	defer func() {
		s.log.Info("event client disconnected",
			zap.String("remote", r.RemoteAddr),
			zap.Int64("dropped", dropped.Load()))
	}()

	for {
		select {
		case <-closed:
			return
		case e := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				s.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mr1hm/station-coverage-map/internal/mapview"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// session is one attached browser.
type session struct {
	id   string
	conn *websocket.Conn
	h    *Handler
}

func (h *Handler) serveWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	s := &session{
		id:   uuid.NewString(),
		conn: conn,
		h:    h,
	}

	// Subscribe before taking the snapshot so no command falls in between.
	cmds := h.deps.Broadcaster.Subscribe(s.id)
	snapshot := h.snapshot()

	slog.Info("map session connected", "session_id", s.id, "remote", c.ClientIP())

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writePump(snapshot, cmds)
	}()

	s.readPump()
	h.deps.Broadcaster.Unsubscribe(s.id)
	<-done

	slog.Info("map session disconnected", "session_id", s.id)
}

// snapshot brings a new browser to the current map state.
func (h *Handler) snapshot() []mapview.Command {
	var cmds []mapview.Command
	if h.deps.Remote != nil {
		cmds = append(cmds, h.deps.Remote.Snapshot())
	}
	for _, l := range h.deps.Layers {
		cmds = append(cmds, l.Snapshot())
	}
	cmds = append(cmds, h.deps.Coverage.ButtonCommand())
	cmds = append(cmds, mapview.Command{Type: mapview.CommandMeasure, Data: h.deps.Measure.Current()})
	return cmds
}

// dispatch routes one browser event to the component that owns it.
func (h *Handler) dispatch(ev mapview.Event) {
	switch ev.Type {
	case mapview.EventMoveEnd:
		if h.deps.Remote != nil {
			h.deps.Remote.HandleMotionEnded(ev.Flight)
		}
	case mapview.EventClick:
		if ev.Point != nil {
			h.deps.Measure.Click(*ev.Point)
		}
	case mapview.EventCoverageActivate:
		h.deps.Coverage.Activate()
	case mapview.EventMeasureToggle:
		h.deps.Measure.Toggle()
	default:
		slog.Debug("ignoring unknown map event", "type", ev.Type)
	}
}

func (s *session) readPump() {
	defer s.conn.Close()

	s.conn.SetReadLimit(maxMessageSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Error("failed to set read deadline", "error", err)
		return
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("unexpected websocket close", "session_id", s.id, "error", err)
			}
			return
		}

		var ev mapview.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			slog.Debug("dropping malformed map event", "session_id", s.id, "error", err)
			continue
		}
		s.h.dispatch(ev)
	}
}

func (s *session) writePump(snapshot []mapview.Command, cmds <-chan mapview.Command) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for _, cmd := range snapshot {
		if err := s.write(cmd); err != nil {
			return
		}
	}

	for {
		select {
		case cmd, ok := <-cmds:
			if !ok {
				_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.write(cmd); err != nil {
				return
			}

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) write(cmd mapview.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		slog.Error("failed to encode map command", "type", cmd.Type, "error", err)
		return nil
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to write map command", "session_id", s.id, "error", err)
		return err
	}
	return nil
}

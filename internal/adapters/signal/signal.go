package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/okrasa/Parley/internal/app"
	"github.com/okrasa/Parley/internal/core"
	"github.com/okrasa/Parley/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// SignalWSController owns the websocket leg of the signaling channel and
// hands decoded events to the orchestrator.
type SignalWSController struct {
	Orch        *app.Orchestrator
	ICEServers  []webrtc.ICEServer
	DefaultRoom domain.RoomID
	ReadLimit   int64
	SendBuffer  int
}

func NewSignalWSController(orch *app.Orchestrator) *SignalWSController {
	return &SignalWSController{
		Orch:        orch,
		DefaultRoom: domain.DefaultRoomID,
		SendBuffer:  32,
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and brings the endpoint online: register
// in its room, push the WebRTC config, announce presence, start the pumps.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := domain.EndpointID(c.GetString("client_token"))
	roomID := domain.RoomID(c.Query("room"))
	if roomID == "" {
		roomID = ctl.DefaultRoom
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(roomID)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(sid, roomID, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)

	ctl.sendWebRTCConfig(conn)
	ctl.sendRoomState(conn, roomID)
}

func (ctl *SignalWSController) sendWebRTCConfig(conn *WsSignalConn) {
	resp := struct {
		Type       string             `json:"type"`
		ICEServers []webrtc.ICEServer `json:"iceServers"`
	}{
		Type:       "webrtc-config",
		ICEServers: ctl.ICEServers,
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *SignalWSController) sendRoomState(conn *WsSignalConn, roomID domain.RoomID) {
	members := ctl.Orch.Registry.Members(roomID)
	resp := struct {
		Type    string            `json:"type"`
		Room    domain.RoomID     `json:"room"`
		Members []domain.Endpoint `json:"members"`
		Count   int               `json:"count"`
	}{
		Type:    "room-state",
		Room:    roomID,
		Members: members,
		Count:   len(members),
	}
	ctl.sendJSON(conn, resp)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"meetmydesigners/middleware"
	"meetmydesigners/services/booking"
	"meetmydesigners/services/realtime"
	"meetmydesigners/services/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var errChannelForbidden = errors.New("not allowed to use this channel")

// RealtimeHandler bridges Redis pub/sub channels to WebSocket clients.
type RealtimeHandler struct {
	Hub      realtime.Hub
	Bookings booking.BookingService
	Sessions session.SessionService
	Upgrader websocket.Upgrader
}

func NewRealtimeHandler(hub realtime.Hub, bs booking.BookingService, ss session.SessionService) *RealtimeHandler {
	return &RealtimeHandler{
		Hub:      hub,
		Bookings: bs,
		Sessions: ss,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// authorize allows user:<self>, and booking or session channels the caller
// takes part in.
func (h *RealtimeHandler) authorize(ctx context.Context, userID, channel string) error {
	if err := realtime.ValidateChannel(channel); err != nil {
		return err
	}
	kind, id, _ := strings.Cut(channel, ":")
	switch kind {
	case "user":
		if id != userID {
			return errChannelForbidden
		}
		return nil
	case "booking":
		_, err := h.Bookings.GetBooking(ctx, userID, id)
		return err
	case "session":
		_, err := h.Sessions.GetSession(ctx, userID, id)
		return err
	}
	return errChannelForbidden
}

// SubscribeHandler handles GET /api/realtime/:channel/ws.
func (h *RealtimeHandler) SubscribeHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	channel := c.Param("channel")
	if err := h.authorize(c.Request.Context(), userID, channel); err != nil {
		h.respond(c, err)
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		getLogger(c).Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, unsubscribe, err := h.Hub.Subscribe(ctx, channel)
	if err != nil {
		getLogger(c).Error("realtime subscribe failed", zap.String("channel", channel), zap.Error(err))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"))
		return
	}
	defer unsubscribe()

	// The read loop only exists to notice the client going away.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastHandler handles POST /api/realtime/:channel for the ephemeral
// events clients may send themselves.
func (h *RealtimeHandler) BroadcastHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	channel := c.Param("channel")
	var req struct {
		Event   string          `json:"event" binding:"required"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !realtime.ClientEvents[req.Event] {
		respondError(c, realtime.ErrEventNotAllowed)
		return
	}
	if err := h.authorize(c.Request.Context(), userID, channel); err != nil {
		h.respond(c, err)
		return
	}
	payload := map[string]any{"from": userID}
	if len(req.Payload) > 0 {
		payload["data"] = req.Payload
	}
	if err := h.Hub.Publish(c.Request.Context(), channel, req.Event, payload); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}

func (h *RealtimeHandler) respond(c *gin.Context, err error) {
	if errors.Is(err, errChannelForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		return
	}
	respondError(c, err)
}

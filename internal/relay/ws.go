package relay

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pendoke/pendo-backend/internal/models"
	"github.com/pendoke/pendo-backend/internal/tokens"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

type WSHandler struct {
	Hub       *Hub
	DB        *gorm.DB
	JWTSecret []byte

	upgrader websocket.Upgrader
}

func NewWSHandler(hub *Hub, db *gorm.DB, jwtSecret []byte) *WSHandler {
	return &WSHandler{
		Hub:       hub,
		DB:        db,
		JWTSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve joins the caller to a session room. Browsers cannot set headers on
// websocket dials, so the bearer token arrives as a query parameter.
func (h *WSHandler) Serve(c echo.Context) error {
	raw := c.QueryParam("token")
	if raw == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided.")
	}
	claims, err := tokens.Parse(raw, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "Invalid or expired token.")
	}

	room := c.Param("session")
	var session models.ChatSession
	if err := h.DB.First(&session, "id = ?", room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Session not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	m := NewMember(claims.Name, claims.Role)
	h.Hub.Join(room, m)

	// one join notice per room when a responder connects
	if claims.Role == models.RoleCounsellor {
		h.announceCounselor(c, room, m, claims.ID)
	}

	go h.writePump(conn, m)
	h.readPump(c, conn, room, m)
	return nil
}

func (h *WSHandler) announceCounselor(c echo.Context, room string, m *Member, counselorID uint) {
	var counselor models.Counselor
	if err := h.DB.First(&counselor, counselorID).Error; err != nil {
		c.Logger().Errorf("counselor profile lookup: %v", err)
		return
	}
	h.Hub.Broadcast(c.Request().Context(), Event{
		Type: EventCounselorJoin,
		Room: room,
		Role: models.RoleCounsellor,
		Profile: map[string]any{
			"id":        counselor.ID,
			"name":      counselor.Name,
			"specialty": counselor.Specialty,
		},
	}, m)
}

func (h *WSHandler) readPump(c echo.Context, conn *websocket.Conn, room string, m *Member) {
	defer func() {
		h.Hub.Leave(room, m)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in struct {
			Text string `json:"text"`
		}
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Text == "" {
			continue
		}
		h.Hub.Broadcast(c.Request().Context(), Event{
			Type:     EventMessage,
			Room:     room,
			SenderID: m.ID,
			Role:     m.Role,
			Text:     in.Text,
		}, m)
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, m *Member) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-m.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

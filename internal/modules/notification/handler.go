package notification

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"innkeeper/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict origins once the front-desk host is fixed.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades front-desk clients onto the notification hub.
type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
	log        zerolog.Logger
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, log *zerolog.Logger) *WSHandler {
	logger := zerolog.Nop()
	if log != nil {
		logger = *log
	}
	return &WSHandler{hub: hub, jwtService: jwtService, log: logger}
}

func (h *WSHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/front-desk", h.HandleWebSocket)
}

// HandleWebSocket authenticates via the token query parameter because
// browser WebSocket clients cannot set an Authorization header.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	staffID := claims.StaffID
	h.hub.Register(staffID, conn)
	h.log.Info().Int64("staff_id", staffID).Msg("front-desk client connected")

	defer func() {
		h.hub.Unregister(staffID)
		h.log.Info().Int64("staff_id", staffID).Msg("front-desk client disconnected")
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	go h.pingLoop(conn)

	// The board is push-only; drain reads until the client hangs up.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHandler) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}
